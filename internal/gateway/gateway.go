// Package gateway defines the persistence gateway the editor saves
// campaigns through, with in-memory, BoltDB and HTTP client
// implementations.
package gateway

import (
	"context"
	"errors"

	"github.com/flowforge/flowforge/internal/campaign"
)

var (
	// ErrNotFound means no campaign with the requested ID exists.
	ErrNotFound = errors.New("campaign not found")
	// ErrUnavailable means the backing store could not be reached.
	ErrUnavailable = errors.New("campaign store unavailable")
)

// CampaignPatch is a partial update applied by Update. Nil fields retain
// their stored values.
type CampaignPatch struct {
	Name         *string                 `json:"name,omitempty"`
	Status       *campaign.Status        `json:"status,omitempty"`
	Steps        *[]campaign.Step        `json:"steps,omitempty"`
	ImageAssets  *[]campaign.ImageAsset  `json:"image_assets,omitempty"`
	Questions    *[]campaign.Question    `json:"questions,omitempty"`
	TextSnippets *[]campaign.TextSnippet `json:"text_snippets,omitempty"`
	Buttons      *[]campaign.Button      `json:"buttons,omitempty"`
}

// Gateway is the persistence contract for campaigns.
//
// Create assigns the ID and LastModified and forces the owner; the input's
// values for those fields are ignored. Update merges the patch and
// refreshes LastModified. Delete is idempotent. UpdateStatus is sugar over
// Update.
type Gateway interface {
	List(ctx context.Context) ([]campaign.Campaign, error)
	Get(ctx context.Context, id string) (*campaign.Campaign, error)
	Create(ctx context.Context, c *campaign.Campaign) (*campaign.Campaign, error)
	Update(ctx context.Context, id string, patch CampaignPatch) (*campaign.Campaign, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status campaign.Status) (*campaign.Campaign, error)
}

// apply merges the patch into the campaign.
func (p CampaignPatch) apply(c *campaign.Campaign) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Steps != nil {
		c.Steps = *p.Steps
	}
	if p.ImageAssets != nil {
		c.ImageAssets = *p.ImageAssets
	}
	if p.Questions != nil {
		c.Questions = *p.Questions
	}
	if p.TextSnippets != nil {
		c.TextSnippets = *p.TextSnippets
	}
	if p.Buttons != nil {
		c.Buttons = *p.Buttons
	}
}
