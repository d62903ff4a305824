package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"ftareview/internal/model"
	"time"

	"github.com/redis/go-redis/v9"
)

// Assessment is a cached project evaluation. CatalogFingerprint identifies
// the catalog content it was computed against; entries computed against any
// other content are stale.
type Assessment struct {
	ProjectID          string                    `json:"projectId"`
	CatalogFingerprint string                    `json:"catalogFingerprint"`
	Result             model.ApplicabilityResult `json:"result"`
	Summary            model.LOESummary          `json:"summary"`
	CachedAt           time.Time                 `json:"cachedAt"`
}

// AssessmentCache handles Redis operations for per-project assessments
type AssessmentCache interface {
	Get(ctx context.Context, projectID string) (*Assessment, error)
	Set(ctx context.Context, entry *Assessment) error
	Invalidate(ctx context.Context, projectID string) error
}

type assessmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAssessmentCache creates a new assessment cache. A zero ttl uses 24h.
func NewAssessmentCache(client *redis.Client, ttl time.Duration) AssessmentCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &assessmentCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *assessmentCache) key(projectID string) string {
	return fmt.Sprintf("project:%s:assessment", projectID)
}

func (c *assessmentCache) Get(ctx context.Context, projectID string) (*Assessment, error) {
	data, err := c.client.Get(ctx, c.key(projectID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry Assessment
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *assessmentCache) Set(ctx context.Context, entry *Assessment) error {
	entry.CachedAt = time.Now().UTC()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(entry.ProjectID), data, c.ttl).Err()
}

func (c *assessmentCache) Invalidate(ctx context.Context, projectID string) error {
	return c.client.Del(ctx, c.key(projectID)).Err()
}
