package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
	"github.com/Temutjin2k/crowdguard/internal/service/planner"
	"github.com/Temutjin2k/crowdguard/pkg/logger"
	wrap "github.com/Temutjin2k/crowdguard/pkg/logger/wrapper"
	"github.com/Temutjin2k/crowdguard/pkg/metrics"
	"github.com/Temutjin2k/crowdguard/pkg/trm"
)

const (
	DefaultRefreshInterval = 5 * time.Minute
	// refreshTimeout bounds one shared refresh round, detached from its callers.
	refreshTimeout = 30 * time.Second
)

// Service owns the current dashboard snapshot and the dispatch actions taken on it.
type Service struct {
	planner      *planner.Planner
	upstream     Upstream
	snapshots    SnapshotRepo
	deployments  DeploymentRepo
	redirections RedirectionRepo
	dispatch     DispatchPublisher
	trm          trm.TxManager
	l            logger.Logger

	interval time.Duration
	now      func() time.Time

	group      singleflight.Group
	refreshing atomic.Bool

	mu      sync.RWMutex
	current *models.Snapshot
	// dispatch actions taken by this process, applied over every new snapshot
	confirmed map[string]struct{}
	statuses  map[string]types.RedirectionStatus
}

type Deps struct {
	Planner      *planner.Planner
	Upstream     Upstream
	Snapshots    SnapshotRepo
	Deployments  DeploymentRepo
	Redirections RedirectionRepo
	Dispatch     DispatchPublisher
	TxManager    trm.TxManager
	Logger       logger.Logger
}

func New(deps Deps, refreshInterval time.Duration) *Service {
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	if deps.Planner == nil {
		deps.Planner = planner.New(planner.DefaultRules())
	}
	if deps.TxManager == nil {
		deps.TxManager = trm.Nop{}
	}

	return &Service{
		planner:      deps.Planner,
		upstream:     deps.Upstream,
		snapshots:    deps.Snapshots,
		deployments:  deps.Deployments,
		redirections: deps.Redirections,
		dispatch:     deps.Dispatch,
		trm:          deps.TxManager,
		l:            deps.Logger,
		interval:     refreshInterval,
		now:          time.Now,
		confirmed:    make(map[string]struct{}),
		statuses:     make(map[string]types.RedirectionStatus),
	}
}

// Run refreshes immediately and then on every interval until ctx is done.
// A tick is skipped while another refresh is still running.
func (s *Service) Run(ctx context.Context) {
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionDashboardRefresh)

	if s.refreshing.Load() {
		s.l.Debug(ctx, "refresh still in flight, skipping tick")
		return
	}

	if _, err := s.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.l.Error(wrap.ErrorCtx(ctx, err), "dashboard refresh failed", err)
	}
}

// Restore loads the last persisted snapshot so the API has data before the first refresh.
func (s *Service) Restore(ctx context.Context) error {
	const op = "Service.Restore"

	snap, err := s.snapshots.Latest(ctx)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil
		}
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	s.carryState(ctx, snap)

	s.mu.Lock()
	if s.current == nil {
		s.applyActions(snap)
		s.current = snap
	}
	s.mu.Unlock()
	return nil
}

// Refresh rebuilds the snapshot. Concurrent calls share one refresh, which runs
// detached from the callers so one caller going away does not fail the others.
func (s *Service) Refresh(ctx context.Context) (*models.Snapshot, error) {
	ch := s.group.DoChan("refresh", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return s.refresh(ctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		snap, _ := res.Val.(*models.Snapshot)
		return snap.Clone(), res.Err
	}
}

func (s *Service) refresh(ctx context.Context) (*models.Snapshot, error) {
	const op = "Service.Refresh"
	ctx = wrap.WithAction(ctx, types.ActionDashboardRefresh)

	s.refreshing.Store(true)
	defer s.refreshing.Store(false)

	start := time.Now()
	defer func() {
		metrics.DashboardRefreshDuration.Observe(time.Since(start).Seconds())
	}()

	var (
		zones           []models.Zone
		recommendations []models.RecommendedPosition
		redirections    []models.RedirectionPlan
		zonesErr        error
		recsErr         error
		plansErr        error
	)

	if s.upstream != nil && s.upstream.Enabled() {
		// every fetch settles on its own; one failure must not cancel the others
		var g errgroup.Group
		g.Go(func() error {
			zones, zonesErr = s.upstream.HeatmapPredictions(ctx)
			return nil
		})
		g.Go(func() error {
			recommendations, recsErr = s.upstream.PersonnelRecommendations(ctx)
			return nil
		})
		g.Go(func() error {
			redirections, plansErr = s.upstream.RedirectionPlan(ctx)
			return nil
		})
		_ = g.Wait()
	} else {
		zonesErr, recsErr, plansErr = errUpstreamOff, errUpstreamOff, errUpstreamOff
	}

	snap := &models.Snapshot{
		Sources: models.Sources{
			Zones:           types.SourceUpstream,
			Recommendations: types.SourceUpstream,
			Redirections:    types.SourceUpstream,
		},
		PredictionTime: s.now().UTC(),
	}

	if zonesErr != nil {
		s.fallback(ctx, "zones", zonesErr)
		zones = planner.MockZones()
		snap.Sources.Zones = types.SourceMock
	}
	if recsErr != nil {
		s.fallback(ctx, "recommendations", recsErr)
		recommendations = s.planner.RecommendPositions(zones)
		snap.Sources.Recommendations = types.SourceDerived
	}
	if plansErr != nil {
		s.fallback(ctx, "redirections", plansErr)
		redirections = s.planner.PlanRedirections(zones)
		snap.Sources.Redirections = types.SourceDerived
	}

	snap.Zones = nonNil(zones)
	snap.Recommendations = nonNil(recommendations)
	snap.Redirections = nonNil(redirections)

	s.carryState(ctx, snap)

	s.mu.Lock()
	s.applyActions(snap)
	snap.Summary = planner.Summarize(snap.Zones, snap.Recommendations, snap.Redirections)
	s.current = snap
	// dispatch actions keep mutating s.current; everything below works on a copy
	snap = snap.Clone()
	s.mu.Unlock()

	s.recordGauges(snap)

	if _, err := s.snapshots.Save(ctx, snap); err != nil {
		return snap, wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrDatabaseFailed, err))
	}

	s.l.Info(ctx, "dashboard refreshed",
		"zones", len(snap.Zones),
		"recommendations", len(snap.Recommendations),
		"redirections", len(snap.Redirections),
		"zones_source", snap.Sources.Zones,
	)

	return snap, nil
}

var errUpstreamOff = errors.New("upstream disabled")

func (s *Service) fallback(ctx context.Context, dataset string, err error) {
	metrics.FallbacksTotal.WithLabelValues(dataset).Inc()
	if errors.Is(err, errUpstreamOff) {
		return
	}
	s.l.Warn(wrap.WithAction(ctx, types.ActionUpstreamFallback), "upstream fetch failed, using fallback",
		"dataset", dataset,
		"error", err.Error(),
	)
}

// carryState re-applies confirmed deployments and the last recorded plan statuses
// from the database.
func (s *Service) carryState(ctx context.Context, snap *models.Snapshot) {
	confirmed, err := s.deployments.ConfirmedPositions(ctx)
	if err != nil {
		s.l.Warn(ctx, "could not load confirmed deployments", "error", err.Error())
	}
	for i := range snap.Recommendations {
		if _, ok := confirmed[snap.Recommendations[i].ID]; ok {
			snap.Recommendations[i].Status = types.PositionConfirmed
		}
	}

	statuses, err := s.redirections.LatestStatuses(ctx)
	if err != nil {
		s.l.Warn(ctx, "could not load redirection statuses", "error", err.Error())
	}
	for i := range snap.Redirections {
		if st, ok := statuses[snap.Redirections[i].ID]; ok {
			snap.Redirections[i].Status = st
		}
	}
}

// applyActions overlays the dispatch actions taken since start. Callers hold s.mu.
func (s *Service) applyActions(snap *models.Snapshot) {
	for i := range snap.Recommendations {
		if _, ok := s.confirmed[snap.Recommendations[i].ID]; ok {
			snap.Recommendations[i].Status = types.PositionConfirmed
		}
	}
	for i := range snap.Redirections {
		if st, ok := s.statuses[snap.Redirections[i].ID]; ok {
			snap.Redirections[i].Status = st
		}
	}
}

func (s *Service) recordGauges(snap *models.Snapshot) {
	for level, n := range planner.CountByRisk(snap.Zones) {
		metrics.ZonesByRisk.WithLabelValues(level.String()).Set(float64(n))
	}
	metrics.PeopleToRedirect.Set(float64(snap.Summary.PeopleToRedirect))
}

// Snapshot returns a copy of the current snapshot, refreshing once if there is none yet.
func (s *Service) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	if snap := s.Current(); snap != nil {
		return snap, nil
	}

	snap, err := s.Refresh(ctx)
	if snap != nil {
		// a failed save still leaves a usable snapshot
		if err != nil {
			s.l.Warn(ctx, "serving unsaved snapshot", "error", err.Error())
		}
		return snap, nil
	}
	return nil, err
}

// Current returns a copy of the current snapshot or nil. It never triggers a refresh.
func (s *Service) Current() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// History lists persisted snapshot summaries, newest first.
func (s *Service) History(ctx context.Context, filter models.HistoryFilter) ([]models.SnapshotRecord, error) {
	const op = "Service.History"

	records, err := s.snapshots.List(ctx, filter.Limit)
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrDatabaseFailed, err))
	}
	return records, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
