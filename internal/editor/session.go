// Package editor implements the campaign editing session: the sole mutation
// authority over the campaign currently being edited, the autosaved draft
// list, and the draft recovery flow. All mutations are synchronous in-memory
// state transitions; network I/O stays with the persistence gateway.
package editor

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flowforge/flowforge/internal/campaign"
)

// Snapshot is the durable local state written after every effective
// mutation and read once at session start, so a restart restores
// in-progress work.
type Snapshot struct {
	DraftCampaigns  []campaign.Campaign `json:"draft_campaigns"`
	CurrentCampaign *campaign.Campaign  `json:"current_campaign"`
}

// SnapshotStore persists the session snapshot. Load returns a nil snapshot
// when nothing has been persisted yet.
type SnapshotStore interface {
	Load() (*Snapshot, error)
	Save(*Snapshot) error
}

// Size carries explicit pixel dimensions for a content item.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// StylePatch is a partial update to a step's content container style.
// Nil fields retain their prior values.
type StylePatch struct {
	BackgroundColor *string
	BorderColor     *string
	BorderWidth     *int
	TextColor       *string
}

// Session owns the current campaign and the draft list. Every mutation
// reports whether it changed the document; unknown step IDs, out-of-range
// indices and a missing current campaign are no-ops, never errors, so stale
// UI events cannot crash an editing session.
type Session struct {
	mu     sync.Mutex
	store  SnapshotStore
	logger *slog.Logger

	now   func() time.Time
	newID func() string

	current   *campaign.Campaign
	drafts    []campaign.Campaign
	autosaver *Autosaver
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the session clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator overrides generated step/campaign IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// NewSession creates a session backed by the given snapshot store and
// restores any previously persisted snapshot.
func NewSession(store SnapshotStore, opts ...Option) (*Session, error) {
	s := &Session{
		store:  store,
		logger: slog.Default(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load session snapshot: %w", err)
	}
	if snap != nil {
		s.drafts = snap.DraftCampaigns
		s.current = snap.CurrentCampaign
	}
	return s, nil
}

// Close stops the autosaver, if one is running.
func (s *Session) Close() {
	s.mu.Lock()
	a := s.autosaver
	s.autosaver = nil
	s.mu.Unlock()
	if a != nil {
		a.Stop()
	}
}

// Current returns a deep copy of the campaign being edited, or nil.
func (s *Session) Current() *campaign.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// SetCurrentCampaign replaces the working document wholesale. No validation
// is performed; pass nil to clear.
func (s *Session) SetCurrentCampaign(c *campaign.Campaign) {
	s.mu.Lock()
	s.current = c.Clone()
	s.persistLocked()
	s.mu.Unlock()
	s.noteAutosave()
}

// ResetCurrentCampaign clears the current campaign.
func (s *Session) ResetCurrentCampaign() {
	s.SetCurrentCampaign(nil)
}

// NewCampaign installs a blank campaign with one default step as the current
// campaign and returns a copy of it.
func (s *Session) NewCampaign(userID string) *campaign.Campaign {
	s.mu.Lock()
	c := campaign.New("campaign-"+s.newID(), "step-"+s.newID(), userID, s.now())
	s.current = c
	s.persistLocked()
	s.mu.Unlock()
	s.noteAutosave()
	return c.Clone()
}

// UpdateCampaignName renames the current campaign.
func (s *Session) UpdateCampaignName(name string) bool {
	return s.mutate(func(c *campaign.Campaign) bool {
		if c.Name == name {
			return false
		}
		c.Name = name
		return true
	})
}

// UpdateSteps replaces the step list wholesale (step reordering in the
// presentation layer hands back the full list).
func (s *Session) UpdateSteps(steps []campaign.Step) bool {
	return s.mutate(func(c *campaign.Campaign) bool {
		c.Steps = make([]campaign.Step, len(steps))
		for i := range steps {
			c.Steps[i] = steps[i].Clone()
		}
		return true
	})
}

// AddStep appends a new empty step named after its position ("New Step N")
// and returns whether a step was added.
func (s *Session) AddStep() bool {
	return s.mutate(func(c *campaign.Campaign) bool {
		style := campaign.DefaultStyle()
		style.BorderWidth = 1
		c.Steps = append(c.Steps, campaign.Step{
			ID:                    "step-" + s.newID(),
			Name:                  fmt.Sprintf("New Step %d", len(c.Steps)+1),
			ContentContainerStyle: style,
			ContentItems:          []campaign.ContentItem{},
			Logic:                 []campaign.LogicRule{},
		})
		return true
	})
}

// DeleteStep removes the step with the given ID. The last remaining step
// cannot be deleted: a campaign with no steps is not editable, so the
// operation reports no change instead. Dangling logic rules targeting the
// deleted step are left in place; readers treat them as "no transition".
func (s *Session) DeleteStep(stepID string) bool {
	return s.mutate(func(c *campaign.Campaign) bool {
		idx := c.StepIndex(stepID)
		if idx < 0 || len(c.Steps) == 1 {
			return false
		}
		c.Steps = append(c.Steps[:idx], c.Steps[idx+1:]...)
		return true
	})
}

// UpdateStepName renames a step. Names are not required to be unique or
// non-empty.
func (s *Session) UpdateStepName(stepID, name string) bool {
	return s.mutateStep(stepID, func(st *campaign.Step) bool {
		if st.Name == name {
			return false
		}
		st.Name = name
		return true
	})
}

// UpdateStyle merges the patch into the step's content container style.
func (s *Session) UpdateStyle(stepID string, patch StylePatch) bool {
	return s.mutateStep(stepID, func(st *campaign.Step) bool {
		if patch.BackgroundColor != nil {
			st.ContentContainerStyle.BackgroundColor = *patch.BackgroundColor
		}
		if patch.BorderColor != nil {
			st.ContentContainerStyle.BorderColor = *patch.BorderColor
		}
		if patch.BorderWidth != nil {
			st.ContentContainerStyle.BorderWidth = *patch.BorderWidth
		}
		if patch.TextColor != nil {
			st.ContentContainerStyle.TextColor = *patch.TextColor
		}
		return true
	})
}

// SetBackground sets or clears (assetID == "") the step's background image
// reference.
func (s *Session) SetBackground(stepID, assetID string) bool {
	return s.mutateStep(stepID, func(st *campaign.Step) bool {
		if st.BackgroundAssetID == assetID {
			return false
		}
		st.BackgroundAssetID = assetID
		return true
	})
}

// AddContent appends a content item to the step. Placement always starts
// auto-sized: any explicit size on the input is discarded.
func (s *Session) AddContent(stepID string, item campaign.ContentItem) bool {
	return s.mutateStep(stepID, func(st *campaign.Step) bool {
		item.Width = nil
		item.Height = nil
		st.ContentItems = append(st.ContentItems, item)
		return true
	})
}

// RemoveContent removes the content item at the given position. An
// out-of-range index is a no-op; the index is positional, and the UI may
// deliver stale ones.
func (s *Session) RemoveContent(stepID string, index int) bool {
	return s.mutateStep(stepID, func(st *campaign.Step) bool {
		if index < 0 || index >= len(st.ContentItems) {
			return false
		}
		st.ContentItems = append(st.ContentItems[:index], st.ContentItems[index+1:]...)
		return true
	})
}

// ReorderContent moves the item at from to the position to, shifting the
// items in between. This is a splice, not a swap.
func (s *Session) ReorderContent(stepID string, from, to int) bool {
	return s.mutateStep(stepID, func(st *campaign.Step) bool {
		n := len(st.ContentItems)
		if from < 0 || from >= n || to < 0 || to >= n || from == to {
			return false
		}
		item := st.ContentItems[from]
		rest := append(st.ContentItems[:from], st.ContentItems[from+1:]...)
		st.ContentItems = append(rest[:to], append([]campaign.ContentItem{item}, rest[to:]...)...)
		return true
	})
}

// ResizeContent sets explicit size overrides on the item at the given
// position.
func (s *Session) ResizeContent(stepID string, index int, size Size) bool {
	return s.mutateStep(stepID, func(st *campaign.Step) bool {
		if index < 0 || index >= len(st.ContentItems) {
			return false
		}
		w, h := size.Width, size.Height
		st.ContentItems[index].Width = &w
		st.ContentItems[index].Height = &h
		return true
	})
}

// UpdateLogic upserts or deletes the rule for (questionID, optionValue).
// An empty nextStepID deletes the rule if present; otherwise the rule is
// replaced if it exists and inserted if not.
func (s *Session) UpdateLogic(stepID, questionID, optionValue, nextStepID string) bool {
	return s.mutateStep(stepID, func(st *campaign.Step) bool {
		existing := st.Rule(questionID, optionValue)
		if nextStepID == "" {
			if existing == nil {
				return false
			}
			kept := st.Logic[:0]
			for _, r := range st.Logic {
				if !(r.QuestionID == questionID && r.OptionValue == optionValue) {
					kept = append(kept, r)
				}
			}
			st.Logic = kept
			return true
		}
		if existing != nil {
			if existing.NextStepID == nextStepID {
				return false
			}
			existing.NextStepID = nextStepID
			return true
		}
		st.Logic = append(st.Logic, campaign.LogicRule{
			QuestionID:  questionID,
			OptionValue: optionValue,
			NextStepID:  nextStepID,
		})
		return true
	})
}

// AddQuestion adds or replaces a question in the campaign's question
// library.
func (s *Session) AddQuestion(q campaign.Question) bool {
	return s.mutate(func(c *campaign.Campaign) bool {
		for i := range c.Questions {
			if c.Questions[i].ID == q.ID {
				c.Questions[i] = q.Clone()
				return true
			}
		}
		c.Questions = append(c.Questions, q.Clone())
		return true
	})
}

// AddTextSnippet adds a snippet to the campaign's snippet library.
func (s *Session) AddTextSnippet(ts campaign.TextSnippet) bool {
	return s.mutate(func(c *campaign.Campaign) bool {
		c.TextSnippets = append(c.TextSnippets, ts)
		return true
	})
}

// AddImageAsset adds an image to the campaign's image library.
func (s *Session) AddImageAsset(a campaign.ImageAsset) bool {
	return s.mutate(func(c *campaign.Campaign) bool {
		c.ImageAssets = append(c.ImageAssets, a)
		return true
	})
}

// AddButton adds a button to the campaign's button library.
func (s *Session) AddButton(b campaign.Button) bool {
	return s.mutate(func(c *campaign.Campaign) bool {
		c.Buttons = append(c.Buttons, b)
		return true
	})
}

// SaveDraft stores a snapshot of the given campaign in the draft list,
// replacing any existing draft with the same ID. The draft's LastModified
// is refreshed.
func (s *Session) SaveDraft(c *campaign.Campaign) {
	if c == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveDraftLocked(c)
	s.persistLocked()
}

func (s *Session) saveDraftLocked(c *campaign.Campaign) {
	kept := s.drafts[:0]
	for _, d := range s.drafts {
		if d.ID != c.ID {
			kept = append(kept, d)
		}
	}
	snap := c.Clone()
	snap.LastModified = s.now()
	s.drafts = append(kept, *snap)
}

// Draft returns a copy of the draft with the given ID, or nil.
func (s *Session) Draft(id string) *campaign.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.drafts {
		if s.drafts[i].ID == id {
			return s.drafts[i].Clone()
		}
	}
	return nil
}

// Drafts returns copies of all drafts in storage order (oldest first).
func (s *Session) Drafts() []campaign.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]campaign.Campaign, len(s.drafts))
	for i := range s.drafts {
		out[i] = *s.drafts[i].Clone()
	}
	return out
}

// RemoveDraft deletes the draft with the given ID; absent IDs are a no-op.
func (s *Session) RemoveDraft(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.drafts[:0]
	removed := false
	for _, d := range s.drafts {
		if d.ID == id {
			removed = true
			continue
		}
		kept = append(kept, d)
	}
	s.drafts = kept
	if removed {
		s.persistLocked()
	}
	return removed
}

// mutate runs fn against the current campaign. When fn reports a change the
// campaign's LastModified is refreshed and the snapshot persisted. A nil
// current campaign is a no-op.
func (s *Session) mutate(fn func(*campaign.Campaign) bool) bool {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return false
	}
	changed := fn(s.current)
	if changed {
		s.current.LastModified = s.now()
		s.persistLocked()
	}
	s.mu.Unlock()
	if changed {
		s.noteAutosave()
	}
	return changed
}

// mutateStep is mutate scoped to a single step; an unknown step ID is a
// no-op.
func (s *Session) mutateStep(stepID string, fn func(*campaign.Step) bool) bool {
	return s.mutate(func(c *campaign.Campaign) bool {
		st := c.FindStep(stepID)
		if st == nil {
			return false
		}
		return fn(st)
	})
}

// persistLocked writes the full snapshot to the local store. Persistence is
// best-effort: a write failure loses durability, not the in-memory edit, so
// it is logged rather than propagated.
func (s *Session) persistLocked() {
	snap := &Snapshot{
		DraftCampaigns:  s.drafts,
		CurrentCampaign: s.current,
	}
	if err := s.store.Save(snap); err != nil {
		s.logger.Error("failed to persist session snapshot", "error", err)
	}
}

func (s *Session) noteAutosave() {
	s.mu.Lock()
	a := s.autosaver
	s.mu.Unlock()
	if a != nil {
		a.Note()
	}
}
