package usecase

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/domain"
)

// esmfFieldAttrs are the attributes ESMF mesh tooling expects on each field.
var esmfFieldAttrs = map[string]domain.Attributes{
	domain.VarUWind: {
		domain.TextAttr("long_name", "10 metre U wind component"),
		domain.TextAttr("units", "m s**-1"),
	},
	domain.VarVWind: {
		domain.TextAttr("long_name", "10 metre V wind component"),
		domain.TextAttr("units", "m s**-1"),
	},
	domain.VarPressure: {
		domain.TextAttr("long_name", "Mean sea level pressure"),
		domain.TextAttr("units", "Pa"),
		domain.TextAttr("standard_name", "air_pressure_at_mean_sea_level"),
	},
}

// ConvertRequest describes an ESMF conversion.
type ConvertRequest struct {
	Source   string
	Output   string
	Encoding era5.Encoding

	LatitudeOrder  domain.LatitudeOrder
	LongitudeRange domain.LongitudeRange
}

// ConvertUseCase rewrites an ERA5 file in the layout ESMF mesh tools read:
// integer hours since 1900, float coordinates and only the forcing fields.
type ConvertUseCase struct {
	deps Deps
}

// NewConvertUseCase creates a conversion use case.
func NewConvertUseCase(deps Deps) *ConvertUseCase {
	return &ConvertUseCase{deps: deps.withDefaults()}
}

// Execute performs the conversion.
func (uc *ConvertUseCase) Execute(ctx context.Context, req ConvertRequest) error {
	sourcePath, err := uc.deps.resolve(req.Source)
	if err != nil {
		return err
	}
	outPath, err := uc.deps.resolve(req.Output)
	if err != nil {
		return err
	}

	src, err := uc.deps.Store.Load(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to load source: %w", err)
	}
	uc.deps.Metrics.DatasetsLoaded.Inc()

	out, err := ForESMF(src)
	if err != nil {
		return err
	}
	out = applyHooks(out, req.LatitudeOrder, req.LongitudeRange)

	if err := ctx.Err(); err != nil {
		return err
	}
	encoding := req.Encoding
	if encoding == 0 {
		encoding = era5.EncodingFloat32
	}
	now := uc.deps.Clock.Now()
	opts := era5.WriteOptions{
		Encoding:  encoding,
		FillValue: era5.Fill(math.NaN()),
		Layout:    era5.LayoutESMF,
		History:   now.Format("Mon Jan 02 15:04:05 2006") + ": ERA5 data processed for ESMF mesh",
	}
	if err := uc.deps.Store.Write(outPath, out, opts); err != nil {
		return err
	}

	uc.deps.Logger.Info("converted for ESMF",
		zap.String("source", req.Source),
		zap.String("output", req.Output),
		zap.Int("times", out.NumTimes()),
		zap.String("encoding", opts.Encoding.String()),
	)
	return nil
}

// ForESMF keeps only the forcing fields of g, with ESMF field attributes
// and no auxiliary variables or global attributes.
func ForESMF(g *domain.GriddedTimeSeries) (*domain.GriddedTimeSeries, error) {
	out := &domain.GriddedTimeSeries{
		Times:      g.Times,
		Latitudes:  g.Latitudes,
		Longitudes: g.Longitudes,
		LatOrder:   g.LatOrder,
		LonRange:   g.LonRange,
		Fields:     make(map[string]*domain.Field, len(domain.RequiredFields)),
	}
	for _, name := range domain.RequiredFields {
		f, ok := g.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: missing variable %s", domain.ErrInvalidInput, name)
		}
		out.Fields[name] = &domain.Field{
			Name:   name,
			Attrs:  esmfFieldAttrs[name].Clone(),
			Values: f.Values,
		}
	}
	return out, nil
}
