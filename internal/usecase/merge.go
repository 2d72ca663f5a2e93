package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/domain"
)

// MergeRequest lists the files to concatenate along time.
type MergeRequest struct {
	Sources  []string
	Output   string
	Encoding era5.Encoding
}

// MergeResult summarizes a merge.
type MergeResult struct {
	Output  string `json:"output"`
	Sources int    `json:"sources"`
	Times   int    `json:"times"`
}

// MergeUseCase concatenates datasets that share a grid.
type MergeUseCase struct {
	deps Deps
}

// NewMergeUseCase creates a merge use case.
func NewMergeUseCase(deps Deps) *MergeUseCase {
	return &MergeUseCase{deps: deps.withDefaults()}
}

// Execute loads every source, concatenates them and writes the result.
func (uc *MergeUseCase) Execute(ctx context.Context, req MergeRequest) (*MergeResult, error) {
	if len(req.Sources) == 0 {
		return nil, fmt.Errorf("%w: no sources to merge", domain.ErrInvalidInput)
	}
	outPath, err := uc.deps.resolve(req.Output)
	if err != nil {
		return nil, err
	}

	parts := make([]*domain.GriddedTimeSeries, 0, len(req.Sources))
	for _, src := range req.Sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, err := uc.deps.resolve(src)
		if err != nil {
			return nil, err
		}
		g, err := uc.deps.Store.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", src, err)
		}
		uc.deps.Metrics.DatasetsLoaded.Inc()
		parts = append(parts, g)
	}

	merged, err := domain.ConcatTime(parts...)
	if err != nil {
		return nil, err
	}
	opts := era5.WriteOptions{Encoding: req.Encoding}
	if err := uc.deps.Store.Write(outPath, merged, opts); err != nil {
		return nil, err
	}

	uc.deps.Logger.Info("merged datasets",
		zap.Strings("sources", req.Sources),
		zap.String("output", req.Output),
		zap.Int("times", merged.NumTimes()),
	)
	return &MergeResult{Output: req.Output, Sources: len(parts), Times: merged.NumTimes()}, nil
}
