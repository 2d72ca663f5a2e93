package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/adapter/store/obs"
	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/observability"
)

// BlendRequest describes one blend run.
type BlendRequest struct {
	Source       string // Hourly ERA5 file.
	Observations string // Wind observation table.
	Output       string

	StepCount int
	Policy    domain.WindPolicy

	// Optional post-processing; zero leaves the axis as blended.
	LatitudeOrder  domain.LatitudeOrder
	LongitudeRange domain.LongitudeRange

	Encoding  era5.Encoding
	FillValue *float64 // Nil uses the store default.
}

// Validate checks the request before any file is touched.
func (r *BlendRequest) Validate() error {
	if r.Source == "" || r.Observations == "" || r.Output == "" {
		return fmt.Errorf("%w: source, observations and output are required", domain.ErrInvalidInput)
	}
	if r.StepCount < 0 {
		return fmt.Errorf("%w: step count must be non-negative, got %d", domain.ErrInvalidInput, r.StepCount)
	}
	if r.Policy != domain.WindNearest && r.Policy != domain.WindPairwiseAveraged {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedPolicy, r.Policy)
	}
	return nil
}

// BlendResult summarizes a completed run.
type BlendResult struct {
	RunID        string    `json:"run_id"`
	Output       string    `json:"output"`
	Policy       string    `json:"policy"`
	SourceSteps  int       `json:"source_steps"`
	OutputSteps  int       `json:"output_steps"`
	Observations int       `json:"observations"`
	Dropped      int       `json:"dropped"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	DurationMS   int64     `json:"duration_ms"`
}

// BlendUseCase loads a source and an observation series, blends them and
// writes the result.
type BlendUseCase struct {
	deps        Deps
	concurrency int
}

// NewBlendUseCase creates a blend use case. concurrency bounds ExecuteBatch;
// values below 1 mean 1.
func NewBlendUseCase(deps Deps, concurrency int) *BlendUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BlendUseCase{deps: deps.withDefaults(), concurrency: concurrency}
}

// Execute performs one blend run.
func (uc *BlendUseCase) Execute(ctx context.Context, req BlendRequest) (*BlendResult, error) {
	runID := uuid.NewString()
	logger := uc.deps.Logger.With(zap.String("run_id", runID))
	started := uc.deps.Clock.Now()

	logger.Info("blend started",
		zap.String("source", req.Source),
		zap.String("observations", req.Observations),
		zap.String("policy", req.Policy.String()),
		zap.Int("step_count", req.StepCount),
	)

	res, err := uc.run(ctx, req, logger)
	elapsed := uc.deps.Clock.Since(started)
	uc.deps.Metrics.BlendDuration.Observe(elapsed.Seconds())

	if err != nil {
		outcome := observability.OutcomeError
		if isInvalid(err) {
			outcome = observability.OutcomeInvalid
		}
		uc.deps.Metrics.BlendRuns.WithLabelValues(outcome).Inc()
		logger.Error("blend failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return nil, err
	}

	uc.deps.Metrics.BlendRuns.WithLabelValues(observability.OutcomeSuccess).Inc()
	res.RunID = runID
	res.DurationMS = elapsed.Milliseconds()
	logger.Info("blend finished",
		zap.String("output", res.Output),
		zap.Int("source_steps", res.SourceSteps),
		zap.Int("output_steps", res.OutputSteps),
		zap.Int("dropped", res.Dropped),
		zap.Duration("elapsed", elapsed),
	)
	return res, nil
}

func (uc *BlendUseCase) run(ctx context.Context, req BlendRequest, logger *zap.Logger) (*BlendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	sourcePath, err := uc.deps.resolve(req.Source)
	if err != nil {
		return nil, err
	}
	obsPath, err := uc.deps.resolve(req.Observations)
	if err != nil {
		return nil, err
	}
	outPath, err := uc.deps.resolve(req.Output)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	source, err := uc.deps.Store.Load(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load source: %w", err)
	}
	uc.deps.Metrics.DatasetsLoaded.Inc()

	series, err := obs.Load(obsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load observations: %w", err)
	}
	valid, invalid := domain.FilterValidObservations(series.Observations)
	dropped := series.Malformed + invalid
	if dropped > 0 {
		uc.deps.Metrics.ObservationsDropped.Add(float64(dropped))
		logger.Warn("dropped wind observations",
			zap.Int("malformed", series.Malformed),
			zap.Int("out_of_range", invalid),
		)
	}

	blended, err := domain.Blend(source, valid, domain.BlendOptions{
		StepCount: req.StepCount,
		Policy:    req.Policy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to blend %s: %w", req.Source, err)
	}
	blended = applyHooks(blended, req.LatitudeOrder, req.LongitudeRange)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts := era5.WriteOptions{
		Encoding:  req.Encoding,
		FillValue: req.FillValue,
		History:   fmt.Sprintf("%s: blended %s with %s (%s)", uc.deps.Clock.Now().UTC().Format(time.RFC3339), req.Source, req.Observations, req.Policy),
	}
	if err := uc.deps.Store.Write(outPath, blended, opts); err != nil {
		return nil, err
	}
	uc.deps.Metrics.OutputTimesteps.Observe(float64(blended.NumTimes()))

	return &BlendResult{
		Output:       req.Output,
		Policy:       req.Policy.String(),
		SourceSteps:  source.NumTimes(),
		OutputSteps:  blended.NumTimes(),
		Observations: len(valid),
		Dropped:      dropped,
		Start:        blended.Time(0),
		End:          blended.Time(blended.NumTimes() - 1),
	}, nil
}

// BatchItem is the outcome of one request in a batch.
type BatchItem struct {
	Request BlendRequest
	Result  *BlendResult
	Err     error
}

// ExecuteBatch runs the requests concurrently, at most concurrency at a
// time. A failed request does not stop the others; the returned error joins
// every failure. Cancelling ctx stops requests that have not started.
func (uc *BlendUseCase) ExecuteBatch(ctx context.Context, reqs []BlendRequest) ([]BatchItem, error) {
	items := make([]BatchItem, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, req := range reqs {
		items[i].Request = req
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Result, items[i].Err = uc.Execute(gctx, req)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, it := range items {
		if it.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", it.Request.Output, it.Err))
		}
	}
	return items, errors.Join(errs...)
}
