package campaign

// QuestionType selects how a question collects its answer.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionDropdown QuestionType = "dropdown"
)

// Question is a library entry a QUESTION content item resolves against.
// Dropdown questions carry the option values logic rules can branch on.
type Question struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type"`
	Text    string       `json:"text"`
	Options []string     `json:"options,omitempty"`
}

// Clone returns a copy of the question with its own options slice.
func (q Question) Clone() Question {
	out := q
	out.Options = append([]string(nil), q.Options...)
	return out
}

// TextSnippet is a reusable block of text.
type TextSnippet struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ImageAsset references an uploaded image.
type ImageAsset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Button is a clickable call-to-action.
type Button struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Question returns the library question with the given ID, or nil.
func (c *Campaign) Question(id string) *Question {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return &c.Questions[i]
		}
	}
	return nil
}

// TextSnippet returns the library snippet with the given ID, or nil.
func (c *Campaign) TextSnippet(id string) *TextSnippet {
	for i := range c.TextSnippets {
		if c.TextSnippets[i].ID == id {
			return &c.TextSnippets[i]
		}
	}
	return nil
}

// ImageAsset returns the library image with the given ID, or nil.
func (c *Campaign) ImageAsset(id string) *ImageAsset {
	for i := range c.ImageAssets {
		if c.ImageAssets[i].ID == id {
			return &c.ImageAssets[i]
		}
	}
	return nil
}

// Button returns the library button with the given ID, or nil.
func (c *Campaign) Button(id string) *Button {
	for i := range c.Buttons {
		if c.Buttons[i].ID == id {
			return &c.Buttons[i]
		}
	}
	return nil
}
