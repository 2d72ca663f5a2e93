// Package usecase orchestrates loading, transforming and writing datasets.
package usecase

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go.ngs.io/surge-forcing/internal/adapter/store"
	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/observability"
)

// Deps are the collaborators shared by all use cases.
type Deps struct {
	Store   store.DatasetStore
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Clock   clockwork.Clock

	// Root confines request paths when set: paths are resolved relative to
	// Root and may not escape it. When empty, paths are used as given.
	Root string
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	return d
}

// resolve maps a request path onto the filesystem.
func (d Deps) resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	if d.Root == "" {
		return p, nil
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("%w: path %q must be relative to the data directory", domain.ErrInvalidInput, p)
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %q escapes the data directory", domain.ErrInvalidInput, p)
	}
	return filepath.Join(d.Root, clean), nil
}

// isInvalid reports whether err was caused by bad input rather than I/O.
func isInvalid(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrShapeMismatch) ||
		errors.Is(err, domain.ErrUnsupportedPolicy)
}

// applyHooks applies the optional latitude and longitude normalization.
// Zero values leave the axis unchanged.
func applyHooks(g *domain.GriddedTimeSeries, order domain.LatitudeOrder, lonRange domain.LongitudeRange) *domain.GriddedTimeSeries {
	if order != 0 {
		g = domain.SetLatitudeOrder(g, order)
	}
	if lonRange != 0 {
		g = domain.NormalizeLongitude(g, lonRange)
	}
	return g
}
