package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"OrderFlow/internal/domain/models"
	domrepo "OrderFlow/internal/domain/repository"
	"OrderFlow/pkg/cache"
)

// ReportCache stores finished reports in any cache.Service backend.
type ReportCache struct {
	svc cache.Service
}

var _ domrepo.ReportCache = (*ReportCache)(nil)

func NewReportCache(svc cache.Service) *ReportCache {
	return &ReportCache{svc: svc}
}

func (c *ReportCache) Get(ctx context.Context, key string) (*models.Report, error) {
	var r models.Report
	if err := c.svc.Get(ctx, key, &r); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return &r, nil
}

func (c *ReportCache) Set(ctx context.Context, key string, report *models.Report, ttl time.Duration) error {
	if report == nil {
		return nil
	}
	if err := c.svc.Set(ctx, key, report, ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *ReportCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.svc.TryLock(ctx, "lock:"+key, ttl)
}

func (c *ReportCache) Unlock(ctx context.Context, key string) error {
	return c.svc.Unlock(ctx, "lock:"+key)
}
