package editor

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/flowforge/flowforge/internal/campaign"
)

// fakeStore is an in-memory SnapshotStore that records saves.
type fakeStore struct {
	snap  *Snapshot
	saves int
}

func (f *fakeStore) Load() (*Snapshot, error) { return f.snap, nil }

func (f *fakeStore) Save(s *Snapshot) error {
	f.snap = s
	f.saves++
	return nil
}

func newTestSession(t *testing.T) (*Session, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	seq := 0
	s, err := NewSession(store,
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s, store
}

func withCampaign(t *testing.T) (*Session, *fakeStore) {
	t.Helper()
	s, store := newTestSession(t)
	s.NewCampaign("123")
	return s, store
}

func stepID(t *testing.T, s *Session) string {
	t.Helper()
	c := s.Current()
	if c == nil || len(c.Steps) == 0 {
		t.Fatal("no current campaign with steps")
	}
	return c.Steps[0].ID
}

func TestNewCampaignDefaults(t *testing.T) {
	s, _ := newTestSession(t)

	c := s.NewCampaign("123")
	if c.Name != "New Campaign" {
		t.Errorf("Name = %q, want %q", c.Name, "New Campaign")
	}
	if c.UserID != "123" {
		t.Errorf("UserID = %q, want 123", c.UserID)
	}
	if len(c.Steps) != 1 || c.Steps[0].Name != "Welcome Screen" {
		t.Errorf("Steps = %+v, want single Welcome Screen", c.Steps)
	}
}

func TestMutationsWithoutCampaignAreNoOps(t *testing.T) {
	s, store := newTestSession(t)

	if s.AddStep() {
		t.Error("AddStep() without campaign should report no change")
	}
	if s.DeleteStep("step-1") {
		t.Error("DeleteStep() without campaign should report no change")
	}
	if s.UpdateCampaignName("x") {
		t.Error("UpdateCampaignName() without campaign should report no change")
	}
	if s.AddContent("step-1", campaign.ContentItem{Type: campaign.ContentQuestion, ID: "q-1"}) {
		t.Error("AddContent() without campaign should report no change")
	}
	if store.saves != 0 {
		t.Errorf("no-op mutations persisted %d snapshots, want 0", store.saves)
	}
}

func TestAddStepNaming(t *testing.T) {
	s, _ := withCampaign(t)

	if !s.AddStep() {
		t.Fatal("AddStep() reported no change")
	}

	c := s.Current()
	if len(c.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(c.Steps))
	}
	if c.Steps[1].Name != "New Step 2" {
		t.Errorf("Steps[1].Name = %q, want %q", c.Steps[1].Name, "New Step 2")
	}
	if got := c.Steps[1].ContentContainerStyle.BorderWidth; got != 1 {
		t.Errorf("added step BorderWidth = %d, want 1", got)
	}
	if len(c.Steps[1].ContentItems) != 0 || len(c.Steps[1].Logic) != 0 {
		t.Error("added step should have empty content and logic")
	}
}

func TestDeleteStep(t *testing.T) {
	s, _ := withCampaign(t)
	s.AddStep()

	c := s.Current()
	if s.DeleteStep("nonexistent") {
		t.Error("DeleteStep(nonexistent) should report no change")
	}
	if got := s.Current(); !reflect.DeepEqual(got, c) {
		t.Error("DeleteStep(nonexistent) modified the campaign")
	}

	if !s.DeleteStep(c.Steps[1].ID) {
		t.Error("DeleteStep() on existing step reported no change")
	}
	if got := len(s.Current().Steps); got != 1 {
		t.Errorf("len(Steps) = %d, want 1", got)
	}

	// The last remaining step cannot be deleted.
	if s.DeleteStep(s.Current().Steps[0].ID) {
		t.Error("DeleteStep() on last step should report no change")
	}
	if got := len(s.Current().Steps); got != 1 {
		t.Errorf("len(Steps) after last-step delete = %d, want 1", got)
	}
}

func TestDeleteStepKeepsDanglingLogic(t *testing.T) {
	s, _ := withCampaign(t)
	s.AddStep()

	c := s.Current()
	first, second := c.Steps[0].ID, c.Steps[1].ID
	s.UpdateLogic(first, "q-1", "Yes", second)

	s.DeleteStep(second)

	logic := s.Current().Steps[0].Logic
	if len(logic) != 1 || logic[0].NextStepID != second {
		t.Errorf("Logic = %v, want dangling rule preserved", logic)
	}
}

func TestUpdateStepName(t *testing.T) {
	s, _ := withCampaign(t)
	id := stepID(t, s)

	if !s.UpdateStepName(id, "Intro") {
		t.Error("UpdateStepName() reported no change")
	}
	if got := s.Current().Steps[0].Name; got != "Intro" {
		t.Errorf("Name = %q, want Intro", got)
	}
	if s.UpdateStepName("nonexistent", "X") {
		t.Error("UpdateStepName(nonexistent) should report no change")
	}
}

func TestUpdateStyleMergesPartial(t *testing.T) {
	s, _ := withCampaign(t)
	id := stepID(t, s)

	borderWidth := 5
	textColor := "#ff0000"
	if !s.UpdateStyle(id, StylePatch{BorderWidth: &borderWidth, TextColor: &textColor}) {
		t.Fatal("UpdateStyle() reported no change")
	}

	style := s.Current().Steps[0].ContentContainerStyle
	if style.BorderWidth != 5 {
		t.Errorf("BorderWidth = %d, want 5", style.BorderWidth)
	}
	if style.TextColor != "#ff0000" {
		t.Errorf("TextColor = %q, want #ff0000", style.TextColor)
	}
	// Unspecified fields retain prior values.
	if style.BackgroundColor != campaign.DefaultStyle().BackgroundColor {
		t.Errorf("BackgroundColor = %q, want default retained", style.BackgroundColor)
	}
	if style.BorderColor != campaign.DefaultStyle().BorderColor {
		t.Errorf("BorderColor = %q, want default retained", style.BorderColor)
	}
}

func TestSetBackground(t *testing.T) {
	s, _ := withCampaign(t)
	id := stepID(t, s)

	if !s.SetBackground(id, "img-1") {
		t.Error("SetBackground() reported no change")
	}
	if got := s.Current().Steps[0].BackgroundAssetID; got != "img-1" {
		t.Errorf("BackgroundAssetID = %q, want img-1", got)
	}

	if s.SetBackground(id, "img-1") {
		t.Error("SetBackground() with same asset should report no change")
	}

	if !s.SetBackground(id, "") {
		t.Error("SetBackground() clearing should report a change")
	}
	if got := s.Current().Steps[0].BackgroundAssetID; got != "" {
		t.Errorf("BackgroundAssetID = %q, want cleared", got)
	}
}

func TestAddContentResetsSize(t *testing.T) {
	s, _ := withCampaign(t)
	id := stepID(t, s)

	w, h := 300, 120
	if !s.AddContent(id, campaign.ContentItem{Type: campaign.ContentQuestion, ID: "q-2", Width: &w, Height: &h}) {
		t.Fatal("AddContent() reported no change")
	}

	items := s.Current().Steps[0].ContentItems
	if len(items) != 1 {
		t.Fatalf("len(ContentItems) = %d, want 1", len(items))
	}
	if items[0].Type != campaign.ContentQuestion || items[0].ID != "q-2" {
		t.Errorf("ContentItems[0] = %+v, want question q-2", items[0])
	}
	if items[0].Width != nil || items[0].Height != nil {
		t.Errorf("ContentItems[0] size = (%v, %v), want unset", items[0].Width, items[0].Height)
	}
}

func TestAddThenRemoveContentRoundTrip(t *testing.T) {
	s, _ := withCampaign(t)
	id := stepID(t, s)

	s.AddContent(id, campaign.ContentItem{Type: campaign.ContentTextSnippet, ID: "ts-1"})
	before := s.Current().Steps[0].ContentItems

	s.AddContent(id, campaign.ContentItem{Type: campaign.ContentButton, ID: "b-1"})
	if !s.RemoveContent(id, len(before)) {
		t.Fatal("RemoveContent() reported no change")
	}

	after := s.Current().Steps[0].ContentItems
	if !reflect.DeepEqual(after, before) {
		t.Errorf("ContentItems = %v, want restored %v", after, before)
	}
}

func TestRemoveContentOutOfRange(t *testing.T) {
	s, store := withCampaign(t)
	id := stepID(t, s)
	s.AddContent(id, campaign.ContentItem{Type: campaign.ContentTextSnippet, ID: "ts-1"})

	saves := store.saves
	if s.RemoveContent(id, 5) {
		t.Error("RemoveContent(5) should report no change")
	}
	if s.RemoveContent(id, -1) {
		t.Error("RemoveContent(-1) should report no change")
	}
	if store.saves != saves {
		t.Error("out-of-range RemoveContent persisted a snapshot")
	}
}

func TestReorderContent(t *testing.T) {
	s, _ := withCampaign(t)
	id := stepID(t, s)

	for _, cid := range []string{"a", "b", "c", "d"} {
		s.AddContent(id, campaign.ContentItem{Type: campaign.ContentTextSnippet, ID: cid})
	}

	if !s.ReorderContent(id, 0, 2) {
		t.Fatal("ReorderContent() reported no change")
	}
	got := contentIDs(s, 0)
	want := []string{"b", "c", "a", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after reorder(0,2): %v, want %v", got, want)
	}

	// Reordering back restores the original order.
	if !s.ReorderContent(id, 2, 0) {
		t.Fatal("ReorderContent() back reported no change")
	}
	got = contentIDs(s, 0)
	want = []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after reorder back: %v, want %v", got, want)
	}

	if s.ReorderContent(id, 1, 1) {
		t.Error("ReorderContent() with equal indices should report no change")
	}
	if s.ReorderContent(id, 0, 9) {
		t.Error("ReorderContent() with out-of-range target should report no change")
	}
}

func TestResizeContentKeepsOthersUnsized(t *testing.T) {
	s, _ := withCampaign(t)
	id := stepID(t, s)

	s.AddContent(id, campaign.ContentItem{Type: campaign.ContentQuestion, ID: "q-1"})
	if !s.ResizeContent(id, 0, Size{Width: 300, Height: 120}) {
		t.Fatal("ResizeContent() reported no change")
	}
	s.AddContent(id, campaign.ContentItem{Type: campaign.ContentButton, ID: "b-1"})

	items := s.Current().Steps[0].ContentItems
	if items[0].Width == nil || *items[0].Width != 300 || items[0].Height == nil || *items[0].Height != 120 {
		t.Errorf("ContentItems[0] size = (%v, %v), want (300, 120)", items[0].Width, items[0].Height)
	}
	if items[1].Width != nil || items[1].Height != nil {
		t.Errorf("ContentItems[1] size = (%v, %v), want unset", items[1].Width, items[1].Height)
	}

	if s.ResizeContent(id, 7, Size{Width: 1, Height: 1}) {
		t.Error("ResizeContent() out of range should report no change")
	}
}

func TestUpdateLogicUpsert(t *testing.T) {
	s, _ := withCampaign(t)
	s.AddStep()
	s.AddStep()
	c := s.Current()
	id := c.Steps[0].ID
	nextA, nextB := c.Steps[1].ID, c.Steps[2].ID

	if !s.UpdateLogic(id, "q-1", "Yes", nextA) {
		t.Fatal("UpdateLogic() insert reported no change")
	}
	if !s.UpdateLogic(id, "q-1", "Yes", nextB) {
		t.Fatal("UpdateLogic() replace reported no change")
	}

	logic := s.Current().Steps[0].Logic
	if len(logic) != 1 {
		t.Fatalf("len(Logic) = %d, want exactly one rule for (q-1, Yes)", len(logic))
	}
	if logic[0].NextStepID != nextB {
		t.Errorf("NextStepID = %q, want %q", logic[0].NextStepID, nextB)
	}

	// Re-upserting the same target changes nothing.
	if s.UpdateLogic(id, "q-1", "Yes", nextB) {
		t.Error("UpdateLogic() with identical rule should report no change")
	}
}

func TestUpdateLogicDelete(t *testing.T) {
	s, _ := withCampaign(t)
	s.AddStep()
	c := s.Current()
	id := c.Steps[0].ID
	next := c.Steps[1].ID

	s.UpdateLogic(id, "q-1", "Yes", next)
	s.UpdateLogic(id, "q-1", "No", next)

	if !s.UpdateLogic(id, "q-1", "Yes", "") {
		t.Error("UpdateLogic() delete reported no change")
	}
	logic := s.Current().Steps[0].Logic
	if len(logic) != 1 || logic[0].OptionValue != "No" {
		t.Errorf("Logic = %v, want only the (q-1, No) rule", logic)
	}

	// Deleting an absent rule is a no-op.
	if s.UpdateLogic(id, "q-1", "Yes", "") {
		t.Error("UpdateLogic() delete of absent rule should report no change")
	}
}

func TestLastModifiedRefreshedOnChange(t *testing.T) {
	store := &fakeStore{}
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewSession(store, WithClock(func() time.Time { return current }))
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	s.NewCampaign("123")
	id := stepID(t, s)

	current = current.Add(time.Minute)
	s.UpdateStepName(id, "Renamed")
	if got := s.Current().LastModified; !got.Equal(current) {
		t.Errorf("LastModified = %v, want %v", got, current)
	}

	// A no-op must not refresh the timestamp.
	current = current.Add(time.Minute)
	s.DeleteStep("nonexistent")
	if got := s.Current().LastModified; got.Equal(current) {
		t.Error("no-op mutation refreshed LastModified")
	}
}

func TestDraftReplaceSemantics(t *testing.T) {
	s, _ := newTestSession(t)

	c := campaign.New("campaign-x", "step-x", "123", time.Now())
	c.Name = "First"
	s.SaveDraft(c)

	c.Name = "Second"
	s.SaveDraft(c)

	drafts := s.Drafts()
	if len(drafts) != 1 {
		t.Fatalf("len(Drafts()) = %d, want 1 (replace, not append)", len(drafts))
	}
	if drafts[0].Name != "Second" {
		t.Errorf("draft Name = %q, want Second", drafts[0].Name)
	}

	if got := s.Draft("campaign-x"); got == nil || got.Name != "Second" {
		t.Errorf("Draft(campaign-x) = %v, want Second", got)
	}
	if got := s.Draft("nonexistent"); got != nil {
		t.Errorf("Draft(nonexistent) = %v, want nil", got)
	}

	if !s.RemoveDraft("campaign-x") {
		t.Error("RemoveDraft() reported no change")
	}
	if s.RemoveDraft("campaign-x") {
		t.Error("RemoveDraft() of absent draft should report no change")
	}
	if got := len(s.Drafts()); got != 0 {
		t.Errorf("len(Drafts()) = %d, want 0", got)
	}
}

func TestSnapshotPersistedAndRestored(t *testing.T) {
	store := &fakeStore{}
	s, err := NewSession(store)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	s.NewCampaign("123")
	s.UpdateCampaignName("Persisted Campaign")
	s.SaveDraft(s.Current())

	// A second session over the same store restores the state.
	restored, err := NewSession(store)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	c := restored.Current()
	if c == nil || c.Name != "Persisted Campaign" {
		t.Fatalf("restored Current() = %v, want Persisted Campaign", c)
	}
	if got := len(restored.Drafts()); got != 1 {
		t.Errorf("restored len(Drafts()) = %d, want 1", got)
	}
}

func TestResetCurrentCampaign(t *testing.T) {
	s, _ := withCampaign(t)

	s.ResetCurrentCampaign()
	if s.Current() != nil {
		t.Error("Current() after reset should be nil")
	}
}

func TestCurrentReturnsCopy(t *testing.T) {
	s, _ := withCampaign(t)

	c := s.Current()
	c.Name = "mutated outside the session"

	if got := s.Current().Name; got != "New Campaign" {
		t.Errorf("Current().Name = %q; external mutation leaked into session", got)
	}
}

func TestLibraryAdds(t *testing.T) {
	s, _ := withCampaign(t)

	s.AddQuestion(campaign.Question{ID: "q-1", Type: campaign.QuestionDropdown, Text: "Interest?", Options: []string{"Technology", "Sports"}})
	s.AddTextSnippet(campaign.TextSnippet{ID: "ts-1", Text: "Welcome!"})
	s.AddImageAsset(campaign.ImageAsset{ID: "img-1", Name: "hero"})
	s.AddButton(campaign.Button{ID: "b-1", Label: "Start"})

	c := s.Current()
	if len(c.Questions) != 1 || len(c.TextSnippets) != 1 || len(c.ImageAssets) != 1 || len(c.Buttons) != 1 {
		t.Errorf("libraries = %d/%d/%d/%d, want 1 each", len(c.Questions), len(c.TextSnippets), len(c.ImageAssets), len(c.Buttons))
	}

	// Adding a question with an existing ID replaces it.
	s.AddQuestion(campaign.Question{ID: "q-1", Type: campaign.QuestionText, Text: "Updated?"})
	c = s.Current()
	if len(c.Questions) != 1 || c.Questions[0].Text != "Updated?" {
		t.Errorf("Questions = %v, want single updated question", c.Questions)
	}
}

func contentIDs(s *Session, step int) []string {
	items := s.Current().Steps[step].ContentItems
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
