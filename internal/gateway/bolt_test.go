package gateway

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowforge/flowforge/internal/campaign"
)

func newTestBolt(t *testing.T) *Bolt {
	t.Helper()
	seq := 0
	b, err := NewBolt(filepath.Join(t.TempDir(), "campaigns.db"), "123",
		WithBoltIDGenerator(func() string {
			seq++
			return fmt.Sprintf("campaign-%d", seq)
		}),
	)
	if err != nil {
		t.Fatalf("NewBolt() error = %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBoltCreateAndGet(t *testing.T) {
	b := newTestBolt(t)
	ctx := context.Background()

	input := campaign.New("", "step-1", "", time.Time{})
	input.Name = "Stored Campaign"

	created, err := b.Create(ctx, input)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("Create() did not assign an ID")
	}
	if created.UserID != "123" {
		t.Errorf("UserID = %q, want forced owner 123", created.UserID)
	}

	got, err := b.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Stored Campaign" {
		t.Errorf("Name = %q, want Stored Campaign", got.Name)
	}
	if len(got.Steps) != 1 || got.Steps[0].Name != "Welcome Screen" {
		t.Errorf("Steps = %+v, want single Welcome Screen", got.Steps)
	}

	if _, err := b.Get(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(nonexistent) error = %v, want ErrNotFound", err)
	}
}

func TestBoltListOrder(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b, err := NewBolt(filepath.Join(t.TempDir(), "campaigns.db"), "123",
		WithBoltClock(func() time.Time {
			current = current.Add(time.Minute)
			return current
		}),
	)
	if err != nil {
		t.Fatalf("NewBolt() error = %v", err)
	}
	defer b.Close()
	ctx := context.Background()

	first, err := b.Create(ctx, campaign.New("", "s", "", time.Time{}))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := b.Create(ctx, campaign.New("", "s", "", time.Time{}))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	campaigns, err := b.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(campaigns) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(campaigns))
	}
	// Most recently modified first.
	if campaigns[0].ID != second.ID || campaigns[1].ID != first.ID {
		t.Errorf("List() order = [%s, %s], want [%s, %s]", campaigns[0].ID, campaigns[1].ID, second.ID, first.ID)
	}
}

func TestBoltUpdate(t *testing.T) {
	b := newTestBolt(t)
	ctx := context.Background()

	created, err := b.Create(ctx, campaign.New("", "step-1", "", time.Time{}))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	steps := append(created.Steps, campaign.Step{ID: "step-2", Name: "Follow Up"})
	name := "Patched"
	updated, err := b.Update(ctx, created.ID, CampaignPatch{Name: &name, Steps: &steps})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Name != "Patched" {
		t.Errorf("Name = %q, want Patched", updated.Name)
	}
	if len(updated.Steps) != 2 {
		t.Errorf("len(Steps) = %d, want 2", len(updated.Steps))
	}
	// Unpatched fields survive.
	if updated.UserID != "123" {
		t.Errorf("UserID = %q, want 123", updated.UserID)
	}

	if _, err := b.Update(ctx, "nonexistent", CampaignPatch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(nonexistent) error = %v, want ErrNotFound", err)
	}
}

func TestBoltDeleteIdempotent(t *testing.T) {
	b := newTestBolt(t)
	ctx := context.Background()

	created, err := b.Create(ctx, campaign.New("", "step-1", "", time.Time{}))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := b.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := b.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := b.Delete(ctx, created.ID); err != nil {
		t.Errorf("Delete() of absent campaign error = %v, want nil", err)
	}
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "campaigns.db")
	ctx := context.Background()

	b, err := NewBolt(dbPath, "123")
	if err != nil {
		t.Fatalf("NewBolt() error = %v", err)
	}
	created, err := b.Create(ctx, campaign.New("", "step-1", "", time.Time{}))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	b.Close()

	b, err = NewBolt(dbPath, "123")
	if err != nil {
		t.Fatalf("NewBolt() reopen error = %v", err)
	}
	defer b.Close()

	got, err := b.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.Name != created.Name {
		t.Errorf("Name = %q, want %q", got.Name, created.Name)
	}
}
