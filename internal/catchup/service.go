// Package catchup answers catch-up requests: it validates the selection,
// serves cached summaries and generates missing ones.
package catchup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vector76/catchup/internal/cache"
	"github.com/vector76/catchup/internal/llm"
	"github.com/vector76/catchup/internal/metrics"
	"github.com/vector76/catchup/internal/model"
)

var (
	ErrInvalidIndustry   = errors.New("Invalid industry")
	ErrInvalidTimePeriod = errors.New("Invalid time period")
)

// ValidationError rejects a request before any work is done. Err is one of
// the sentinel errors above; Details lists the accepted values.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// Service produces summaries. It is safe for concurrent use.
type Service struct {
	catalog *model.Catalog
	cache   cache.Cache
	gen     llm.Generator
	log     *slog.Logger
	group   singleflight.Group
	now     func() time.Time
}

// NewService wires a service. A nil catalog selects model.DefaultCatalog and
// a nil logger uses slog.Default.
func NewService(catalog *model.Catalog, c cache.Cache, gen llm.Generator, logger *slog.Logger) *Service {
	if catalog == nil {
		catalog = model.DefaultCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog: catalog,
		cache:   c,
		gen:     gen,
		log:     logger,
		now:     time.Now,
	}
}

// Catalog returns the accepted industries and time periods.
func (s *Service) Catalog() *model.Catalog {
	return s.catalog
}

// Validate checks req against the catalog.
func (s *Service) Validate(req model.CatchUpRequest) error {
	if !s.catalog.ValidIndustry(req.Industry) {
		return &ValidationError{
			Err:     ErrInvalidIndustry,
			Details: "Must be one of: " + s.catalog.IndustrySlugs(),
		}
	}
	if !s.catalog.ValidTimePeriod(req.TimePeriod) {
		return &ValidationError{
			Err:     ErrInvalidTimePeriod,
			Details: "Must be one of: " + s.catalog.TimePeriodSlugs(),
		}
	}
	return nil
}

// CatchUp returns the summary for req, from the cache when possible.
func (s *Service) CatchUp(ctx context.Context, req model.CatchUpRequest) (model.CatchUpResponse, error) {
	if err := s.Validate(req); err != nil {
		metrics.RecordRequest(metrics.ResultInvalid)
		return model.CatchUpResponse{}, err
	}

	resp := model.CatchUpResponse{
		Industry: s.catalog.IndustryLabel(req.Industry),
		Period:   s.catalog.TimePeriodLabel(req.TimePeriod),
	}
	key := cache.Key(req.Industry, req.TimePeriod)

	summary, err := s.cache.Get(ctx, key)
	switch {
	case err == nil && summary != "":
		s.log.Debug("cache hit", "key", key)
		metrics.CacheHits.Inc()
		metrics.RecordRequest(metrics.ResultCached)
		resp.Summary = summary
		resp.Cached = true
		return resp, nil
	case err != nil && !errors.Is(err, cache.ErrMiss):
		// A broken cache degrades to generating every time.
		s.log.Warn("cache read failed", "key", key, "error", err)
		metrics.RecordError("cache_get")
	}
	metrics.CacheMisses.Inc()

	summary, err = s.generate(ctx, key, resp.Industry, resp.Period)
	if err != nil {
		metrics.RecordRequest(metrics.ResultFailed)
		return model.CatchUpResponse{}, err
	}

	metrics.RecordRequest(metrics.ResultOK)
	resp.Summary = summary
	return resp, nil
}

// generate runs one generation per key at a time; concurrent callers for
// the same key wait for and share its result. The generation itself is not
// tied to any single caller's context, so a caller giving up does not fail
// the others.
func (s *Service) generate(ctx context.Context, key, industry, period string) (string, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		genCtx := context.WithoutCancel(ctx)
		start := s.now()
		summary, err := s.gen.GenerateSummary(genCtx, industry, period)
		metrics.RecordGeneration(err == nil, s.now().Sub(start).Seconds())
		if err != nil {
			s.log.Error("summary generation failed", "key", key, "error", err)
			metrics.RecordError("generate")
			return "", fmt.Errorf("generating summary for %s: %w", key, err)
		}

		if err := s.cache.Set(genCtx, key, summary); err != nil {
			s.log.Warn("cache write failed", "key", key, "error", err)
			metrics.RecordError("cache_set")
		}
		s.log.Info("summary generated", "key", key, "duration", s.now().Sub(start))
		return summary, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.log.Debug("shared in-flight generation", "key", key)
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
