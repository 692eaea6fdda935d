// Package export renders a campaign as a paginated document, one page per
// step.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/flowforge/flowforge/internal/campaign"
)

// Page is one rendered step.
type Page struct {
	Heading string
	Lines   []string
}

// Exporter renders a campaign into a multi-page document on w.
type Exporter interface {
	Export(w io.Writer, c *campaign.Campaign) error
}

// Text renders campaigns as plain text, each step under a
// "Step N: name" heading. Content items are resolved against the
// campaign's own libraries; dangling references render as absent rather
// than failing the export.
type Text struct{}

// Pages builds the per-step pages without writing them.
func (Text) Pages(c *campaign.Campaign) []Page {
	pages := make([]Page, 0, len(c.Steps))
	for i, step := range c.Steps {
		p := Page{Heading: fmt.Sprintf("Step %d: %s", i+1, step.Name)}

		if step.BackgroundAssetID != "" {
			if img := c.ImageAsset(step.BackgroundAssetID); img != nil {
				p.Lines = append(p.Lines, fmt.Sprintf("[background: %s]", img.Name))
			}
		}

		for _, item := range step.ContentItems {
			if line, ok := renderItem(c, item); ok {
				p.Lines = append(p.Lines, line)
			}
		}

		for _, rule := range step.Logic {
			target := c.FindStep(rule.NextStepID)
			if target == nil {
				// Dangling target: no transition, nothing to document.
				continue
			}
			p.Lines = append(p.Lines, fmt.Sprintf("[logic: %q on %s -> %s]", rule.OptionValue, rule.QuestionID, target.Name))
		}

		pages = append(pages, p)
	}
	return pages
}

// Export writes the campaign as a plain-text document.
func (t Text) Export(w io.Writer, c *campaign.Campaign) error {
	for i, page := range t.Pages(c) {
		if i > 0 {
			if _, err := io.WriteString(w, "\f"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n", page.Heading, strings.Repeat("=", len(page.Heading))); err != nil {
			return err
		}
		for _, line := range page.Lines {
			if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderItem(c *campaign.Campaign, item campaign.ContentItem) (string, bool) {
	var body string
	switch item.Type {
	case campaign.ContentTextSnippet:
		ts := c.TextSnippet(item.ID)
		if ts == nil {
			return "", false
		}
		body = ts.Text
	case campaign.ContentQuestion:
		q := c.Question(item.ID)
		if q == nil {
			return "", false
		}
		body = q.Text
		if len(q.Options) > 0 {
			body += " (" + strings.Join(q.Options, " / ") + ")"
		}
	case campaign.ContentImage:
		img := c.ImageAsset(item.ID)
		if img == nil {
			return "", false
		}
		body = "[image: " + img.Name + "]"
	case campaign.ContentButton:
		b := c.Button(item.ID)
		if b == nil {
			return "", false
		}
		body = "[button: " + b.Label + "]"
	default:
		return "", false
	}

	if item.Width != nil && item.Height != nil {
		body += fmt.Sprintf(" [%dx%d]", *item.Width, *item.Height)
	}
	return body, true
}
