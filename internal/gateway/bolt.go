package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/flowforge/flowforge/internal/campaign"
)

var bucketCampaigns = []byte("campaigns")

// Bolt is a BoltDB-backed gateway used by the server, so campaigns survive
// restarts. Values are JSON-encoded campaigns keyed by ID.
type Bolt struct {
	db    *bolt.DB
	owner string
	now   func() time.Time
	newID func() string
}

// BoltOption configures a Bolt gateway.
type BoltOption func(*Bolt)

// WithBoltClock overrides the gateway clock.
func WithBoltClock(now func() time.Time) BoltOption {
	return func(b *Bolt) { b.now = now }
}

// WithBoltIDGenerator overrides generated campaign IDs.
func WithBoltIDGenerator(gen func() string) BoltOption {
	return func(b *Bolt) { b.newID = gen }
}

// NewBolt opens (creating if needed) the campaign database at path.
// Campaigns created through it are owned by owner.
func NewBolt(path, owner string, opts ...BoltOption) (*Bolt, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCampaigns)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create campaigns bucket: %w", err)
	}

	b := &Bolt{
		db:    db,
		owner: owner,
		now:   time.Now,
		newID: func() string { return "campaign-" + uuid.NewString() },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Close closes the underlying database.
func (b *Bolt) Close() error {
	return b.db.Close()
}

// List returns all campaigns, most recently modified first.
func (b *Bolt) List(ctx context.Context) ([]campaign.Campaign, error) {
	var out []campaign.Campaign

	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCampaigns).ForEach(func(k, v []byte) error {
			var c campaign.Campaign
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("failed to unmarshal campaign %s: %w", k, err)
			}
			out = append(out, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastModified.After(out[j].LastModified)
	})
	return out, nil
}

// Get returns the campaign with the given ID.
func (b *Bolt) Get(ctx context.Context, id string) (*campaign.Campaign, error) {
	var c *campaign.Campaign

	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCampaigns).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		var v campaign.Campaign
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("failed to unmarshal campaign: %w", err)
		}
		c = &v
		return nil
	})

	return c, err
}

// Create stores a new campaign, assigning its ID and LastModified and
// forcing the owner.
func (b *Bolt) Create(ctx context.Context, c *campaign.Campaign) (*campaign.Campaign, error) {
	stored := c.Clone()
	stored.ID = b.newID()
	stored.UserID = b.owner
	stored.LastModified = b.now()

	err := b.db.Update(func(tx *bolt.Tx) error {
		return b.put(tx, stored)
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Update merges the patch into the stored campaign and refreshes
// LastModified.
func (b *Bolt) Update(ctx context.Context, id string, patch CampaignPatch) (*campaign.Campaign, error) {
	var updated *campaign.Campaign

	err := b.db.Update(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketCampaigns).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		var c campaign.Campaign
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("failed to unmarshal campaign: %w", err)
		}
		patch.apply(&c)
		c.LastModified = b.now()
		updated = &c
		return b.put(tx, &c)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the campaign; deleting an absent ID is not an error.
func (b *Bolt) Delete(ctx context.Context, id string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCampaigns).Delete([]byte(id))
	})
}

// UpdateStatus changes only the campaign's status.
func (b *Bolt) UpdateStatus(ctx context.Context, id string, status campaign.Status) (*campaign.Campaign, error) {
	return b.Update(ctx, id, CampaignPatch{Status: &status})
}

func (b *Bolt) put(tx *bolt.Tx, c *campaign.Campaign) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal campaign: %w", err)
	}
	return tx.Bucket(bucketCampaigns).Put([]byte(c.ID), data)
}
