package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"lintang/cityrouter/pkg/config"
	"lintang/cityrouter/pkg/datastructure"
	"lintang/cityrouter/pkg/engine/environment"
	"lintang/cityrouter/pkg/engine/risk"
	"lintang/cityrouter/pkg/engine/routingalgorithm"
	"lintang/cityrouter/pkg/geo"
	"lintang/cityrouter/pkg/guidance"
	"lintang/cityrouter/pkg/kv"
	"lintang/cityrouter/pkg/util"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/rand"
)

type ConditionStore interface {
	Get(ctx context.Context, fingerprint uint64, seed int64) (*datastructure.ConditionField, error)
	Put(ctx context.Context, fingerprint uint64, seed int64, field *datastructure.ConditionField) error
}

type Generator interface {
	Generate(ctx context.Context, g *datastructure.Graph, seed int64) (*datastructure.ConditionField, environment.Report, error)
}

// SimulationInfo describes the condition field the service currently routes on.
// Report is the zero value when the field came from the cache.
type SimulationInfo struct {
	Seed   int64
	Source string
	Report environment.Report
}

type simulation struct {
	seed      int64
	evaluator *risk.Evaluator
	router    *routingalgorithm.RouteAlgorithm
}

type ComputeRoutesRequest struct {
	Start int
	End   int
	// zero values fall back to the configured defaults
	RiskRate  float64 `validate:"omitempty,gt=0,lte=1"`
	MaxRoutes int     `validate:"gte=0"`
	Threshold float64 `validate:"omitempty,gt=0,lte=1"`
}

type RouteResult struct {
	Route           datastructure.Route
	Ceiling         float64
	TimeMinutes     float64
	FreeFlowMinutes float64
	SafetyRisk      float64
	Directions      string
	Instructions    []string
	Polyline        string
	Hazards         []risk.Hazard
}

type NavigationService struct {
	g       *datastructure.Graph
	gen     Generator
	store   ConditionStore
	layout  *geo.Layout
	anchor  datastructure.Coordinate
	routing config.Routing
	metrics *Metrics
	logger  *slog.Logger
	tracer  trace.Tracer

	mu  sync.RWMutex
	sim *simulation
}

// NewNavigationService wires a road graph to the generator described by cfg. store may be nil,
// in which case every simulation is generated.
func NewNavigationService(g *datastructure.Graph, cfg config.Config, store ConditionStore, metrics *Metrics,
	logger *slog.Logger) (*NavigationService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, WrapErrorf(err, ErrConfig, "invalid config")
	}
	if err := geo.ValidateAnchor(cfg.Anchor()); err != nil {
		return nil, WrapErrorf(err, ErrConfig, "invalid config")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	gen, err := environment.NewGenerator(cfg.EnvironmentConfig(), logger)
	if err != nil {
		return nil, WrapErrorf(err, ErrConfig, "invalid environment config")
	}

	return &NavigationService{
		g:       g,
		gen:     gen,
		store:   store,
		layout:  geo.NewLayout(g),
		anchor:  cfg.Anchor(),
		routing: cfg.Routing,
		metrics: metrics,
		logger:  logger,
		tracer:  otel.Tracer("cityrouter/service"),
	}, nil
}

func (uc *NavigationService) Graph() *datastructure.Graph {
	return uc.g
}

// LoadSimulation makes the condition field of seed the one every later query routes on.
func (uc *NavigationService) LoadSimulation(ctx context.Context, seed int64) (SimulationInfo, error) {
	ctx, span := uc.tracer.Start(ctx, "service.NavigationService.LoadSimulation",
		trace.WithAttributes(attribute.Int64("seed", seed)))
	defer span.End()

	fingerprint := uc.g.Fingerprint()
	info := SimulationInfo{Seed: seed}

	var field *datastructure.ConditionField
	if uc.store != nil {
		cached, err := uc.store.Get(ctx, fingerprint, seed)
		switch {
		case err == nil:
			field = cached
			info.Source = sourceCache
		case errors.Is(err, kv.ErrConditionNotFound):
		default:
			uc.logger.Warn("condition cache lookup failed", slog.Int64("seed", seed), slog.String("error", err.Error()))
		}
	}

	if field == nil {
		generated, report, err := uc.gen.Generate(ctx, uc.g, seed)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "generate environment")
			return SimulationInfo{}, WrapErrorf(err, ErrInternalServerError, "generate environment for seed %d", seed)
		}
		field = generated
		info.Source = sourceGenerated
		info.Report = report

		if uc.store != nil {
			if err := uc.store.Put(ctx, fingerprint, seed, field); err != nil {
				uc.logger.Warn("condition cache store failed", slog.Int64("seed", seed), slog.String("error", err.Error()))
			}
		}
	}

	ev := risk.NewEvaluator(uc.g, field)
	sim := &simulation{
		seed:      seed,
		evaluator: ev,
		router:    routingalgorithm.NewRouteAlgorithm(ev),
	}

	uc.mu.Lock()
	uc.sim = sim
	uc.mu.Unlock()

	uc.metrics.environmentLoaded.WithLabelValues(info.Source).Inc()
	span.SetAttributes(attribute.String("source", info.Source))
	uc.logger.Info("simulation loaded",
		slog.Int64("seed", seed),
		slog.String("source", info.Source),
		slog.Int("intersections", uc.g.NumNodes()),
		slog.Int("roads", uc.g.NumEdges()))
	return info, nil
}

// GenerateRandomSimulation loads a simulation for a seed drawn from the clock.
func (uc *NavigationService) GenerateRandomSimulation(ctx context.Context) (SimulationInfo, error) {
	rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	return uc.LoadSimulation(ctx, rng.Int63())
}

// Seed reports the seed of the loaded simulation.
func (uc *NavigationService) Seed() (int64, bool) {
	sim, err := uc.current()
	if err != nil {
		return 0, false
	}
	return sim.seed, true
}

func (uc *NavigationService) current() (*simulation, error) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	if uc.sim == nil {
		return nil, NewErrorf(ErrBadParamInput, "no simulation loaded")
	}
	return uc.sim, nil
}

// ComputeRoutes sweeps the risk ceiling from zero to the threshold and returns every distinct
// fastest route found, safest first.
func (uc *NavigationService) ComputeRoutes(ctx context.Context, req ComputeRoutesRequest) ([]RouteResult, error) {
	start := time.Now()
	ctx, span := uc.tracer.Start(ctx, "service.NavigationService.ComputeRoutes",
		trace.WithAttributes(
			attribute.Int("start", req.Start),
			attribute.Int("end", req.End),
		))
	defer span.End()

	results, err := uc.computeRoutes(ctx, req)
	uc.metrics.routeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		uc.metrics.routeQueries.WithLabelValues(resultInvalid).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if len(results) == 0 {
		uc.metrics.routeQueries.WithLabelValues(resultNotFound).Inc()
	} else {
		uc.metrics.routeQueries.WithLabelValues(resultFound).Inc()
	}
	uc.metrics.routesReturned.Add(float64(len(results)))
	span.SetAttributes(attribute.Int("routes", len(results)))

	uc.logger.Debug("routes computed",
		slog.Int("start", req.Start),
		slog.Int("end", req.End),
		slog.Int("routes", len(results)),
		slog.Duration("duration", time.Since(start)))
	return results, nil
}

func (uc *NavigationService) computeRoutes(ctx context.Context, req ComputeRoutesRequest) ([]RouteResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	sim, err := uc.current()
	if err != nil {
		return nil, err
	}
	from, to, err := uc.endpoints(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	rate, maxRoutes, bound := req.RiskRate, req.MaxRoutes, req.Threshold
	if rate == 0 {
		rate = uc.routing.RiskRate
	}
	if maxRoutes == 0 {
		maxRoutes = uc.routing.MaxRoutes
	}
	if bound == 0 {
		bound = uc.routing.MaxThreshold
	}

	rs, err := routingalgorithm.NewRouteSet(sim.router, rate, maxRoutes, bound)
	if err != nil {
		return nil, WrapErrorf(err, ErrBadParamInput, "invalid route sweep")
	}

	found := rs.BestRoutes(from, to)
	results := make([]RouteResult, 0, len(found))
	for _, cr := range found {
		select {
		case <-ctx.Done():
			return nil, WrapErrorf(ctx.Err(), ErrInternalServerError, "compute routes cancelled")
		default:
		}

		res, err := uc.describe(sim, cr.Route, cr.Time)
		if err != nil {
			return nil, err
		}
		res.Ceiling = cr.Ceiling
		results = append(results, res)
	}
	return results, nil
}

// ComputeRoute returns the fastest route whose risk never exceeds threshold.
func (uc *NavigationService) ComputeRoute(ctx context.Context, start, end int, threshold float64) (RouteResult, error) {
	begin := time.Now()
	_, span := uc.tracer.Start(ctx, "service.NavigationService.ComputeRoute",
		trace.WithAttributes(
			attribute.Int("start", start),
			attribute.Int("end", end),
			attribute.Float64("threshold", threshold),
		))
	defer span.End()
	defer func() {
		uc.metrics.routeDuration.Observe(time.Since(begin).Seconds())
	}()

	res, err := uc.computeRoute(start, end, threshold)
	switch {
	case err == nil:
		uc.metrics.routeQueries.WithLabelValues(resultFound).Inc()
		uc.metrics.routesReturned.Inc()
	case CodeOf(err) == ErrNotFound:
		uc.metrics.routeQueries.WithLabelValues(resultNotFound).Inc()
	default:
		uc.metrics.routeQueries.WithLabelValues(resultInvalid).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (uc *NavigationService) computeRoute(start, end int, threshold float64) (RouteResult, error) {
	if !(threshold >= 0 && threshold <= 1) {
		return RouteResult{}, NewErrorf(ErrBadParamInput, "threshold must be within [0,1], got %v", threshold)
	}
	sim, err := uc.current()
	if err != nil {
		return RouteResult{}, err
	}
	from, to, err := uc.endpoints(start, end)
	if err != nil {
		return RouteResult{}, err
	}

	route, eta, found := sim.router.ShortestPathUnderCeiling(from, to, threshold)
	if !found {
		return RouteResult{}, NewErrorf(ErrNotFound, "no route from %d to %d under risk %v", start, end, threshold)
	}
	res, err := uc.describe(sim, route, eta)
	if err != nil {
		return RouteResult{}, err
	}
	res.Ceiling = threshold
	return res, nil
}

func (uc *NavigationService) describe(sim *simulation, route datastructure.Route, eta float64) (RouteResult, error) {
	ev := sim.evaluator

	safety, err := ev.RouteRisk(route)
	if err != nil {
		return RouteResult{}, WrapErrorf(err, ErrInternalServerError, "route risk")
	}
	freeFlow, err := ev.FreeFlowTime(route)
	if err != nil {
		return RouteResult{}, WrapErrorf(err, ErrInternalServerError, "free flow time")
	}
	hazards, err := ev.Hazards(route)
	if err != nil {
		return RouteResult{}, WrapErrorf(err, ErrInternalServerError, "route hazards")
	}
	instructions, err := guidance.NewInstructionsFromRoute(uc.g).GetInstructions(route)
	if err != nil {
		return RouteResult{}, WrapErrorf(err, ErrInternalServerError, "route instructions")
	}
	polyline, err := uc.layout.RoutePolyline(uc.anchor, route)
	if err != nil {
		return RouteResult{}, WrapErrorf(err, ErrInternalServerError, "route polyline")
	}

	return RouteResult{
		Route:           route,
		TimeMinutes:     eta,
		FreeFlowMinutes: freeFlow,
		SafetyRisk:      safety,
		Directions:      guidance.Directions(uc.g, route),
		Instructions:    guidance.GetTurnDescriptions(instructions),
		Polyline:        polyline,
		Hazards:         hazards,
	}, nil
}

func (uc *NavigationService) endpoints(start, end int) (int32, int32, error) {
	if start == end {
		return 0, 0, WrapErrorf(datastructure.ErrInvalidArgument, ErrBadParamInput, "start and end must differ, both are %d", start)
	}
	from, err := uc.location(start)
	if err != nil {
		return 0, 0, err
	}
	to, err := uc.location(end)
	if err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

func (uc *NavigationService) location(id int) (int32, error) {
	idx, ok := uc.g.NodeIndex(id)
	if !ok {
		return 0, WrapErrorf(datastructure.ErrInvalidArgument, ErrBadParamInput, "intersection %d does not exist", id)
	}
	if !uc.g.GetNode(idx).IsLocation {
		return 0, WrapErrorf(datastructure.ErrInvalidArgument, ErrBadParamInput, "intersection %d is not a location", id)
	}
	return idx, nil
}

// RouteSafety is the highest risk of any intersection or road along route.
func (uc *NavigationService) RouteSafety(route datastructure.Route) (float64, error) {
	sim, err := uc.current()
	if err != nil {
		return 0, err
	}
	r, err := sim.evaluator.RouteRisk(route)
	if err != nil {
		return 0, WrapErrorf(err, ErrBadParamInput, "invalid route %s", route)
	}
	return r, nil
}

// RouteTime is the travel time of route in minutes under the loaded conditions.
func (uc *NavigationService) RouteTime(route datastructure.Route) (float64, error) {
	sim, err := uc.current()
	if err != nil {
		return 0, err
	}
	t, err := sim.evaluator.RouteTime(route)
	if err != nil {
		return 0, WrapErrorf(err, ErrBadParamInput, "invalid route %s", route)
	}
	return t, nil
}

func (uc *NavigationService) Directions(route datastructure.Route) string {
	return guidance.Directions(uc.g, route)
}

// MapSafety lists the risk of every intersection, rounded to three decimals.
func (uc *NavigationService) MapSafety() ([]risk.NodeSafety, error) {
	sim, err := uc.current()
	if err != nil {
		return nil, err
	}
	return sim.evaluator.MapSafety(), nil
}

func validateRequest(req ComputeRoutesRequest) error {
	validate := validator.New()
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	msgs := make([]string, 0)
	for _, e := range translateError(err, trans) {
		msgs = append(msgs, e.Error())
	}
	return WrapErrorf(fmt.Errorf("%w: %v", datastructure.ErrInvalidArgument, err), ErrBadParamInput,
		"invalid request: %s", strings.Join(msgs, "; "))
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

// FormatRoute renders a result the way the CLI prints it.
func FormatRoute(res RouteResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Time: %s minutes (free flow %s)\n", util.FormatFixed(res.TimeMinutes, 2), util.FormatFixed(res.FreeFlowMinutes, 2))
	fmt.Fprintf(&sb, "Safety: %s (ceiling %s)\n", util.FormatFixed(res.SafetyRisk, 4), util.FormatFixed(res.Ceiling, 2))
	fmt.Fprintf(&sb, "Route: %s\n", res.Route)
	fmt.Fprintf(&sb, "Directions: %s\n", res.Directions)
	for _, h := range res.Hazards {
		fmt.Fprintf(&sb, "  %s %s between %d and %d (%s)\n", h.Severity, h.Dimension, h.FromID, h.ToID, util.FormatFixed(h.Risk, 3))
	}
	fmt.Fprintf(&sb, "Polyline: %s\n", res.Polyline)
	return sb.String()
}
