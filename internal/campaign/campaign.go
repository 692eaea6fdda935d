// Package campaign defines the campaign flow document model: an ordered
// sequence of steps, each holding positioned content items, a presentation
// style and conditional branching rules.
package campaign

import "time"

// Status is the publication state of a campaign.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// ContentType identifies which asset library a content item's ID resolves
// against.
type ContentType string

const (
	ContentTextSnippet ContentType = "TEXT_SNIPPET"
	ContentQuestion    ContentType = "QUESTION"
	ContentImage       ContentType = "IMAGE"
	ContentButton      ContentType = "BUTTON"
)

// ContentItem is a placed instance of a library asset within a step. The
// same library ID may appear multiple times in one step. Width and Height
// are explicit pixel overrides; nil means auto-sized by the renderer.
type ContentItem struct {
	Type   ContentType `json:"type"`
	ID     string      `json:"id"`
	Width  *int        `json:"width,omitempty"`
	Height *int        `json:"height,omitempty"`
}

// LogicRule is a conditional transition: when the question identified by
// QuestionID is answered with OptionValue, navigation continues at the step
// identified by NextStepID. A step holds at most one rule per
// (QuestionID, OptionValue) pair.
type LogicRule struct {
	QuestionID  string `json:"question_id"`
	OptionValue string `json:"option_value"`
	NextStepID  string `json:"next_step_id"`
}

// ContentContainerStyle is the presentation style of a step's content
// container. Each step owns exactly one style; styles are never shared.
type ContentContainerStyle struct {
	BackgroundColor string `json:"background_color"`
	BorderColor     string `json:"border_color"`
	BorderWidth     int    `json:"border_width"`
	TextColor       string `json:"text_color"`
}

// Step is one screen within a campaign flow.
type Step struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// BackgroundAssetID references an image asset; empty means no background.
	BackgroundAssetID     string                `json:"background_asset_id,omitempty"`
	ContentContainerStyle ContentContainerStyle `json:"content_container_style"`
	ContentItems          []ContentItem         `json:"content_items"`
	Logic                 []LogicRule           `json:"logic"`
}

// Campaign is the top-level document being edited.
type Campaign struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	UserID       string    `json:"user_id"`
	Status       Status    `json:"status"`
	Steps        []Step    `json:"steps"`
	LastModified time.Time `json:"last_modified"`

	// Campaign-scoped asset libraries, persisted alongside the document so
	// each campaign carries its own asset set.
	ImageAssets  []ImageAsset  `json:"image_assets,omitempty"`
	Questions    []Question    `json:"questions,omitempty"`
	TextSnippets []TextSnippet `json:"text_snippets,omitempty"`
	Buttons      []Button      `json:"buttons,omitempty"`
}

// DefaultStyle returns the style applied to the initial step of a new
// campaign.
func DefaultStyle() ContentContainerStyle {
	return ContentContainerStyle{
		BackgroundColor: "rgba(255, 255, 255, 0.8)",
		BorderColor:     "#000000",
		BorderWidth:     2,
		TextColor:       "#000000",
	}
}

// New returns a blank campaign with a single default "Welcome Screen" step.
// The caller supplies the campaign and step IDs so ID generation stays under
// the owning session's control.
func New(id, stepID, userID string, now time.Time) *Campaign {
	return &Campaign{
		ID:           id,
		Name:         "New Campaign",
		UserID:       userID,
		Status:       StatusInactive,
		LastModified: now,
		Steps: []Step{
			{
				ID:                    stepID,
				Name:                  "Welcome Screen",
				ContentContainerStyle: DefaultStyle(),
				ContentItems:          []ContentItem{},
				Logic:                 []LogicRule{},
			},
		},
	}
}

// FindStep returns a pointer into Steps for the step with the given ID, or
// nil if absent.
func (c *Campaign) FindStep(id string) *Step {
	for i := range c.Steps {
		if c.Steps[i].ID == id {
			return &c.Steps[i]
		}
	}
	return nil
}

// StepIndex returns the position of the step with the given ID, or -1.
func (c *Campaign) StepIndex(id string) int {
	for i := range c.Steps {
		if c.Steps[i].ID == id {
			return i
		}
	}
	return -1
}

// NextStepID resolves the transition for answering the given question with
// the given option value on the given step. It returns the ID of the first
// step after stepID in document order when no rule matches or the rule's
// target no longer exists; dangling targets are "no transition", never an
// error. The empty string means traversal has reached the end of the flow.
func (c *Campaign) NextStepID(stepID, questionID, optionValue string) string {
	idx := c.StepIndex(stepID)
	if idx < 0 {
		return ""
	}
	for _, rule := range c.Steps[idx].Logic {
		if rule.QuestionID == questionID && rule.OptionValue == optionValue {
			if c.FindStep(rule.NextStepID) != nil {
				return rule.NextStepID
			}
			break
		}
	}
	if idx+1 < len(c.Steps) {
		return c.Steps[idx+1].ID
	}
	return ""
}

// Rule returns the step's rule for the (questionID, optionValue) pair, or
// nil if none exists.
func (s *Step) Rule(questionID, optionValue string) *LogicRule {
	for i := range s.Logic {
		if s.Logic[i].QuestionID == questionID && s.Logic[i].OptionValue == optionValue {
			return &s.Logic[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the campaign.
func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	out := *c
	out.Steps = make([]Step, len(c.Steps))
	for i := range c.Steps {
		out.Steps[i] = c.Steps[i].Clone()
	}
	out.ImageAssets = append([]ImageAsset(nil), c.ImageAssets...)
	out.TextSnippets = append([]TextSnippet(nil), c.TextSnippets...)
	out.Buttons = append([]Button(nil), c.Buttons...)
	out.Questions = make([]Question, len(c.Questions))
	for i := range c.Questions {
		out.Questions[i] = c.Questions[i].Clone()
	}
	return &out
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	out := s
	out.ContentItems = make([]ContentItem, len(s.ContentItems))
	for i, item := range s.ContentItems {
		out.ContentItems[i] = item.Clone()
	}
	out.Logic = append([]LogicRule(nil), s.Logic...)
	return out
}

// Clone returns a copy of the item with its own size pointers.
func (ci ContentItem) Clone() ContentItem {
	out := ci
	if ci.Width != nil {
		w := *ci.Width
		out.Width = &w
	}
	if ci.Height != nil {
		h := *ci.Height
		out.Height = &h
	}
	return out
}

// Problem describes a referential-integrity issue found in a campaign.
// Dangling references are reported, not rejected: readers treat them as
// absent content or "no transition".
type Problem struct {
	StepID string `json:"step_id"`
	Detail string `json:"detail"`
}

// CheckReferences reports dangling references: logic rules targeting missing
// steps or questions, content items pointing at missing library entries, and
// step backgrounds referencing missing image assets.
func (c *Campaign) CheckReferences() []Problem {
	var problems []Problem
	for i := range c.Steps {
		s := &c.Steps[i]
		if s.BackgroundAssetID != "" && c.ImageAsset(s.BackgroundAssetID) == nil {
			problems = append(problems, Problem{StepID: s.ID, Detail: "background references missing image asset " + s.BackgroundAssetID})
		}
		for _, item := range s.ContentItems {
			if !c.resolves(item) {
				problems = append(problems, Problem{StepID: s.ID, Detail: string(item.Type) + " content references missing asset " + item.ID})
			}
		}
		for _, rule := range s.Logic {
			if c.FindStep(rule.NextStepID) == nil {
				problems = append(problems, Problem{StepID: s.ID, Detail: "logic rule targets missing step " + rule.NextStepID})
			}
			if c.Question(rule.QuestionID) == nil {
				problems = append(problems, Problem{StepID: s.ID, Detail: "logic rule references missing question " + rule.QuestionID})
			}
		}
	}
	return problems
}

func (c *Campaign) resolves(item ContentItem) bool {
	switch item.Type {
	case ContentTextSnippet:
		return c.TextSnippet(item.ID) != nil
	case ContentQuestion:
		return c.Question(item.ID) != nil
	case ContentImage:
		return c.ImageAsset(item.ID) != nil
	case ContentButton:
		return c.Button(item.ID) != nil
	}
	return false
}
