package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"vigil/internal/domain"
	"vigil/internal/store"
)

const documentKeyPrefix = "vigil:document:"

// documentTTL bounds how long a cached document may drift from Postgres
// after an UpdateDocument write; short enough that a stale baseline hash
// never survives past one integrity-check cycle in practice.
const documentTTL = 5 * time.Minute

// DocumentStore is a cache-aside store.DocumentStore: reads check Redis
// first and fall through to the wrapped store on miss or Redis failure;
// writes go to the backing store and then replace the cache entry with the
// written document (UpdateDocument deletes the old entry first), matching the teacher's evidence/registry cache-aside shape.
type DocumentStore struct {
	backing store.DocumentStore
	client  *redis.Client
}

// NewDocumentStore wraps backing with a Redis cache-aside layer. A nil
// client disables caching transparently — every call falls through.
func NewDocumentStore(backing store.DocumentStore, client *redis.Client) *DocumentStore {
	return &DocumentStore{backing: backing, client: client}
}

func (c *DocumentStore) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	if c.client != nil {
		if raw, err := c.client.Get(ctx, documentKeyPrefix+documentID).Bytes(); err == nil {
			var doc domain.Document
			if jsonErr := json.Unmarshal(raw, &doc); jsonErr == nil {
				return &doc, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			// Redis failure: fall through to the backing store silently.
			_ = err
		}
	}

	doc, err := c.backing.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, doc)
	return doc, nil
}

func (c *DocumentStore) CreateDocument(ctx context.Context, doc *domain.Document) error {
	if err := c.backing.CreateDocument(ctx, doc); err != nil {
		return err
	}
	c.store(ctx, doc)
	return nil
}

func (c *DocumentStore) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	if err := c.backing.UpdateDocument(ctx, doc); err != nil {
		return err
	}
	c.invalidate(ctx, doc.ID)
	c.store(ctx, doc)
	return nil
}

func (c *DocumentStore) store(ctx context.Context, doc *domain.Document) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, documentKeyPrefix+doc.ID, raw, documentTTL).Err()
}

func (c *DocumentStore) invalidate(ctx context.Context, documentID string) {
	if c.client == nil {
		return
	}
	_ = c.client.Del(ctx, documentKeyPrefix+documentID).Err()
}
