package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PeerBench/internal/domain/models"
	domrepo "PeerBench/internal/domain/repository"
	domsvc "PeerBench/internal/domain/service"
	applogger "PeerBench/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ComparisonOptions carry the query limits and fan-out settings.
type ComparisonOptions struct {
	Limits       models.QueryLimits
	Concurrency  int
	DefaultStart models.Quarter
	Timeout      time.Duration
	Now          func() time.Time
}

// ComparisonUseCase fetches the focal bank and its peers through the cache
// and runs the engine once per metric.
type ComparisonUseCase struct {
	fetcher   domrepo.SeriesFetcher
	lookup    domrepo.InstitutionLookup
	cache     domrepo.SeriesCache
	directory domrepo.InstitutionDirectory
	catalog   domrepo.MetricCatalog
	engine    domsvc.ComparisonEngine
	publisher domrepo.ResultPublisher
	metrics   domrepo.Metrics
	log       *applogger.Logger
	opts      ComparisonOptions
}

func NewComparisonUseCase(
	fetcher domrepo.SeriesFetcher,
	lookup domrepo.InstitutionLookup,
	cache domrepo.SeriesCache,
	directory domrepo.InstitutionDirectory,
	catalog domrepo.MetricCatalog,
	engine domsvc.ComparisonEngine,
	publisher domrepo.ResultPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	opts ComparisonOptions,
) *ComparisonUseCase {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &ComparisonUseCase{
		fetcher:   fetcher,
		lookup:    lookup,
		cache:     cache,
		directory: directory,
		catalog:   catalog,
		engine:    engine,
		publisher: publisher,
		metrics:   metrics,
		log:       l,
		opts:      opts,
	}
}

// ParseRequest resolves names and aliases to certificate numbers and fills
// in the default window. An empty start uses the configured default and an
// empty end uses the last completed quarter.
func (uc *ComparisonUseCase) ParseRequest(req models.CompareRequest) (models.Query, error) {
	req.Normalize()
	q := models.Query{Metrics: req.Metrics}

	focal, err := uc.resolve("focal", req.Focal)
	if err != nil {
		return q, err
	}
	q.Focal = focal
	for _, ref := range req.Peers {
		id, err := uc.resolve("peers", ref)
		if err != nil {
			return q, err
		}
		q.Peers = append(q.Peers, id)
	}

	q.Start = uc.opts.DefaultStart
	if req.Start != "" {
		if q.Start, err = models.ParseQuarter(req.Start); err != nil {
			return q, &models.QueryError{Field: "start", Reason: err.Error()}
		}
	}
	q.End = models.LastCompleted(uc.opts.Now())
	if req.End != "" {
		if q.End, err = models.ParseQuarter(req.End); err != nil {
			return q, &models.QueryError{Field: "end", Reason: err.Error()}
		}
	}
	return q, nil
}

func (uc *ComparisonUseCase) resolve(field, ref string) (string, error) {
	if inst, ok := uc.directory.Resolve(ref); ok {
		return inst.ID, nil
	}
	if models.IsCert(ref) {
		return ref, nil
	}
	return "", &models.QueryError{Field: field, Reason: fmt.Sprintf("unknown institution %q", ref)}
}

type fetched struct {
	inst models.Institution
	data models.InstitutionData
	err  error
}

// Compare validates q and assembles the comparison. Only an invalid query
// or a cancelled context is returned as an error; missing data degrades the
// result instead.
func (uc *ComparisonUseCase) Compare(ctx context.Context, q models.Query) (*models.ComparisonResult, error) {
	if err := q.Validate(uc.opts.Limits); err != nil {
		return nil, err
	}
	infos := make([]models.MetricInfo, 0, len(q.Metrics))
	for _, name := range q.Metrics {
		info, ok := uc.catalog.Lookup(name)
		if !ok {
			return nil, &models.QueryError{Field: "metrics", Reason: fmt.Sprintf("unknown metric %q", name)}
		}
		infos = append(infos, info)
	}

	started := uc.opts.Now()
	ctx, cancel := context.WithTimeout(ctx, uc.opts.Timeout)
	defer cancel()

	res := &models.ComparisonResult{
		ID:      uuid.NewString(),
		Status:  models.StatusOK,
		Metrics: q.Metrics,
		Start:   q.Start,
		End:     q.End,
		Sources: map[string]models.Source{},
	}

	focal := uc.load(ctx, q, q.Focal)
	res.Focal = focal.inst
	if focal.err == nil && focal.data.Empty() {
		focal.err = fmt.Errorf("%w: no values reported between %s and %s", models.ErrInsufficientData, q.Start, q.End)
	}
	if focal.err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		res.Status = models.StatusFocalUnavailable
		res.Message = fmt.Sprintf("no data for %s: %v", focal.inst.Label(), focal.err)
		res.Comparisons = []models.MetricComparison{}
		res.GeneratedAt = uc.opts.Now().UTC()
		uc.log.Warn("focal institution unavailable",
			applogger.String("focal", q.Focal),
			applogger.Error(focal.err),
		)
		uc.finish(ctx, res, started)
		return res, nil
	}
	res.Sources[q.Focal] = focal.data.Source

	peers := make([]fetched, len(q.Peers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Concurrency)
	for i, id := range q.Peers {
		g.Go(func() error {
			peers[i] = uc.load(gctx, q, id)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var included []models.InstitutionData
	sources := []models.Source{focal.data.Source}
	for _, p := range peers {
		switch {
		case p.err != nil:
			res.Excluded = append(res.Excluded, models.ExcludedPeer{ID: p.inst.ID, Reason: p.err.Error()})
		case p.data.Empty():
			res.Excluded = append(res.Excluded, models.ExcludedPeer{ID: p.inst.ID, Reason: "no values reported in range"})
		default:
			res.Peers = append(res.Peers, p.inst)
			res.Sources[p.inst.ID] = p.data.Source
			sources = append(sources, p.data.Source)
			included = append(included, p.data)
		}
	}
	if len(res.Excluded) > 0 {
		uc.log.Info("peers excluded", applogger.Int("count", len(res.Excluded)), applogger.String("focal", q.Focal))
	}
	if len(included) == 0 {
		res.Message = "no peer data available; statistics cover the focal institution only"
	}

	periods := models.QuarterRange(q.Start, q.End)
	res.Comparisons = make([]models.MetricComparison, 0, len(infos))
	for _, info := range infos {
		focalSeries, _ := focal.data.Get(info.Name)
		peerSeries := make([]models.MetricSeries, 0, len(included))
		for _, d := range included {
			s, ok := d.Get(info.Name)
			if !ok {
				s = models.MetricSeries{InstitutionID: d.InstitutionID, Metric: info.Name, Source: d.Source}
			}
			peerSeries = append(peerSeries, s)
		}
		res.Comparisons = append(res.Comparisons, uc.engine.Compare(info, focalSeries, peerSeries, periods))
	}

	res.DataSource = models.CombineSources(sources...)
	res.GeneratedAt = uc.opts.Now().UTC()
	uc.finish(ctx, res, started)
	return res, nil
}

// load fetches one institution through the cache. Errors are kept on the
// returned value so one failing peer does not cancel the rest.
func (uc *ComparisonUseCase) load(ctx context.Context, q models.Query, id string) fetched {
	out := fetched{inst: uc.describe(ctx, id)}
	key := models.SeriesKey{InstitutionID: id, Start: q.Start, End: q.End, Metrics: q.Metrics}
	out.data, out.err = uc.cache.GetOrFetch(ctx, key, func(ctx context.Context) (models.InstitutionData, error) {
		series, err := uc.fetcher.FetchSeries(ctx, id, q.Start, q.End, q.Metrics)
		if err != nil {
			return models.InstitutionData{}, err
		}
		return models.InstitutionData{
			InstitutionID: id,
			Start:         q.Start,
			End:           q.End,
			Series:        series,
			Source:        models.SourceLive,
		}, nil
	})
	if out.err != nil {
		uc.log.Error("fetch institution failed", applogger.String("cert", id), applogger.Error(out.err))
		if errors.Is(out.err, models.ErrDataUnavailable) && uc.metrics != nil {
			uc.metrics.RecordError("data_unavailable")
		}
	}
	return out
}

// describe prefers the roster and falls back to the API for unknown certs.
func (uc *ComparisonUseCase) describe(ctx context.Context, id string) models.Institution {
	if inst, ok := uc.directory.Resolve(id); ok {
		return inst
	}
	if uc.lookup == nil {
		return models.Institution{ID: id}
	}
	inst, err := uc.lookup.LookupInstitution(ctx, id)
	if err != nil {
		uc.log.Debug("institution lookup failed", applogger.String("cert", id), applogger.Error(err))
		return models.Institution{ID: id}
	}
	return inst
}

func (uc *ComparisonUseCase) finish(ctx context.Context, res *models.ComparisonResult, started time.Time) {
	if uc.metrics != nil {
		source := string(res.DataSource)
		if source == "" {
			source = "none"
		}
		uc.metrics.RecordComparison(string(res.Status), source, uc.opts.Now().Sub(started))
	}
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, res); err != nil {
		uc.log.Warn("publish comparison failed", applogger.String("id", res.ID), applogger.Error(err))
	}
}

// Metrics lists the metric catalogue.
func (uc *ComparisonUseCase) Metrics() []models.MetricInfo { return uc.catalog.All() }

// Institutions lists the configured roster.
func (uc *ComparisonUseCase) Institutions() []models.Institution { return uc.directory.All() }
