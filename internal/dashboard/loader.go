// Package dashboard keeps the last good snapshot of everything the
// dashboard shows and refreshes it with one parallel fetch.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"projecthub/internal/core"
	"projecthub/internal/log"
)

// Source is the part of the backend the dashboard reads.
type Source interface {
	Stats(ctx context.Context) (core.Stats, error)
	ListProjects(ctx context.Context) ([]core.ProjectSummary, error)
	ListEstimates(ctx context.Context) ([]core.EstimateSummary, error)
	ListContractors(ctx context.Context) ([]core.ContractorSummary, error)
	CompaniesWithStats(ctx context.Context) ([]core.CompanyStats, error)
}

// Snapshot is one complete, consistent fetch.
type Snapshot struct {
	Stats       core.Stats
	Projects    []core.ProjectSummary
	Estimates   []core.EstimateSummary
	Contractors []core.ContractorSummary
	Companies   []core.CompanyStats
	FetchedAt   time.Time
}

// Loaded reports whether the snapshot came from a successful fetch.
func (s Snapshot) Loaded() bool {
	return !s.FetchedAt.IsZero()
}

// fetchTimeout bounds one shared refresh, independent of the caller that
// started it.
const fetchTimeout = 10 * time.Second

// Loader owns the current snapshot. Refresh replaces it only when every
// fetch succeeded.
type Loader struct {
	src     Source
	logger  *log.Logger
	now     func() time.Time
	timeout time.Duration

	mu      sync.RWMutex
	current Snapshot
	lastErr error

	group singleflight.Group
}

func NewLoader(src Source, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Loader{
		src:     src,
		logger:  logger.WithComponent(log.ComponentDashboard),
		now:     time.Now,
		timeout: fetchTimeout,
	}
}

// Current returns the last good snapshot and the error of the most recent
// refresh, if it failed.
func (l *Loader) Current() (Snapshot, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current, l.lastErr
}

// Refresh fetches all five documents in parallel. Concurrent callers share
// one fetch, which is not cancelled when the caller that started it goes
// away. On failure the previous snapshot is kept and returned along with
// the error.
func (l *Loader) Refresh(ctx context.Context) (Snapshot, error) {
	ch := l.group.DoChan("refresh", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.store(l.fetch(fctx))
	})

	select {
	case res := <-ch:
		return res.Val.(Snapshot), res.Err
	case <-ctx.Done():
		snap, _ := l.Current()
		return snap, ctx.Err()
	}
}

// store records the outcome of a fetch and returns the current snapshot.
func (l *Loader) store(snap Snapshot, err error) (Snapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.lastErr = err
		return l.current, err
	}
	l.current = snap
	l.lastErr = nil
	return l.current, nil
}

func (l *Loader) fetch(ctx context.Context) (Snapshot, error) {
	start := l.now()
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Stats, err = l.src.Stats(gctx)
		return wrap("stats", err)
	})
	g.Go(func() (err error) {
		snap.Projects, err = l.src.ListProjects(gctx)
		return wrap("projects", err)
	})
	g.Go(func() (err error) {
		snap.Estimates, err = l.src.ListEstimates(gctx)
		return wrap("estimates", err)
	})
	g.Go(func() (err error) {
		snap.Contractors, err = l.src.ListContractors(gctx)
		return wrap("contractors", err)
	})
	g.Go(func() (err error) {
		snap.Companies, err = l.src.CompaniesWithStats(gctx)
		return wrap("companies", err)
	})

	if err := g.Wait(); err != nil {
		l.logger.WarnContext(ctx, "Dashboard refresh failed",
			log.FieldOperation, log.OpRefresh,
			log.FieldError, err)
		return Snapshot{}, err
	}

	snap.FetchedAt = l.now()
	l.logger.DebugContext(ctx, "Dashboard refreshed",
		log.FieldOperation, log.OpRefresh,
		log.FieldDuration, snap.FetchedAt.Sub(start).Milliseconds(),
		"projects", len(snap.Projects),
		"estimates", len(snap.Estimates))
	return snap, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("fetch %s: %w", what, err)
	}
	return nil
}
