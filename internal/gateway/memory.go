package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowforge/flowforge/internal/campaign"
)

// Memory is an in-memory gateway used for development and tests. It can
// simulate network latency so callers exercise the same waiting paths they
// would against a remote store.
type Memory struct {
	mu        sync.Mutex
	owner     string
	latency   time.Duration
	campaigns []campaign.Campaign
	now       func() time.Time
	newID     func() string
}

// MemoryOption configures a Memory gateway.
type MemoryOption func(*Memory)

// WithLatency makes every operation sleep for d before completing, honoring
// context cancellation.
func WithLatency(d time.Duration) MemoryOption {
	return func(m *Memory) { m.latency = d }
}

// WithMemoryClock overrides the gateway clock.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// WithMemoryIDGenerator overrides generated campaign IDs.
func WithMemoryIDGenerator(gen func() string) MemoryOption {
	return func(m *Memory) { m.newID = gen }
}

// NewMemory creates an empty in-memory gateway. Campaigns created through
// it are owned by owner regardless of the owner on the input.
func NewMemory(owner string, opts ...MemoryOption) *Memory {
	m := &Memory{
		owner: owner,
		now:   time.Now,
		newID: func() string { return "campaign-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SeedDemo loads the demo campaigns ("Welcome Journey" and "New User
// Onboarding") into the store.
func (m *Memory) SeedDemo() {
	m.mu.Lock()
	defer m.mu.Unlock()
	width := 280
	m.campaigns = append(m.campaigns,
		campaign.Campaign{
			ID:     "campaign-1",
			Name:   "Welcome Journey",
			UserID: m.owner,
			Status: campaign.StatusActive,
			Steps: []campaign.Step{
				{
					ID:                    "step-1",
					Name:                  "Welcome Screen",
					ContentContainerStyle: campaign.DefaultStyle(),
					ContentItems: []campaign.ContentItem{
						{Type: campaign.ContentTextSnippet, ID: "ts-1", Width: &width},
						{Type: campaign.ContentQuestion, ID: "q-2", Width: &width},
					},
					Logic: []campaign.LogicRule{
						{QuestionID: "q-2", OptionValue: "Technology", NextStepID: "step-2"},
					},
				},
				{
					ID:                "step-2",
					Name:              "Technology Path",
					BackgroundAssetID: "img-1",
					ContentContainerStyle: campaign.ContentContainerStyle{
						BackgroundColor: "rgba(0, 0, 0, 0.5)",
						BorderColor:     "#ffffff",
						BorderWidth:     1,
						TextColor:       "#ffffff",
					},
					ContentItems: []campaign.ContentItem{},
					Logic:        []campaign.LogicRule{},
				},
			},
			LastModified: time.Date(2023, 10, 26, 10, 0, 0, 0, time.UTC),
		},
		campaign.Campaign{
			ID:     "campaign-2",
			Name:   "New User Onboarding",
			UserID: m.owner,
			Status: campaign.StatusInactive,
			Steps: []campaign.Step{
				{
					ID:   "c2-step-1",
					Name: "Get Started",
					ContentContainerStyle: campaign.ContentContainerStyle{
						BackgroundColor: "rgba(255, 255, 255, 0.9)",
						BorderColor:     "#3b82f6",
						BorderWidth:     3,
						TextColor:       "#1f2937",
					},
					ContentItems: []campaign.ContentItem{
						{Type: campaign.ContentTextSnippet, ID: "ts-1", Width: &width},
					},
					Logic: []campaign.LogicRule{},
				},
			},
			LastModified: time.Date(2023, 10, 27, 11, 30, 0, 0, time.UTC),
		},
	)
}

// wait simulates network latency.
func (m *Memory) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(m.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// List returns all campaigns in creation order.
func (m *Memory) List(ctx context.Context) ([]campaign.Campaign, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]campaign.Campaign, len(m.campaigns))
	for i := range m.campaigns {
		out[i] = *m.campaigns[i].Clone()
	}
	return out, nil
}

// Get returns the campaign with the given ID.
func (m *Memory) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			return m.campaigns[i].Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// Create stores a new campaign, assigning its ID and LastModified and
// forcing the owner.
func (m *Memory) Create(ctx context.Context, c *campaign.Campaign) (*campaign.Campaign, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := c.Clone()
	stored.ID = m.newID()
	stored.UserID = m.owner
	stored.LastModified = m.now()
	m.campaigns = append(m.campaigns, *stored)
	return stored.Clone(), nil
}

// Update merges the patch into the stored campaign.
func (m *Memory) Update(ctx context.Context, id string, patch CampaignPatch) (*campaign.Campaign, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			patch.apply(&m.campaigns[i])
			m.campaigns[i].LastModified = m.now()
			return m.campaigns[i].Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes the campaign; deleting an absent ID is not an error.
func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.campaigns {
		if m.campaigns[i].ID == id {
			m.campaigns = append(m.campaigns[:i], m.campaigns[i+1:]...)
			return nil
		}
	}
	return nil
}

// UpdateStatus changes only the campaign's status.
func (m *Memory) UpdateStatus(ctx context.Context, id string, status campaign.Status) (*campaign.Campaign, error) {
	return m.Update(ctx, id, CampaignPatch{Status: &status})
}
