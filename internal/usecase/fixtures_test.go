package usecase

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/observability"
)

// sandyStart is 2012-10-29 00:00 UTC.
const sandyStart = int64(1351468800)

// memStore is an in-memory DatasetStore.
type memStore struct {
	mu       sync.Mutex
	datasets map[string]*domain.GriddedTimeSeries
	opts     map[string]era5.WriteOptions
}

func newMemStore() *memStore {
	return &memStore{
		datasets: map[string]*domain.GriddedTimeSeries{},
		opts:     map[string]era5.WriteOptions{},
	}
}

func (m *memStore) put(path string, g *domain.GriddedTimeSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[path] = g
}

func (m *memStore) get(path string) (*domain.GriddedTimeSeries, era5.WriteOptions, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.datasets[path]
	return g, m.opts[path], ok
}

func (m *memStore) Load(path string) (*domain.GriddedTimeSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.datasets[path]
	if !ok {
		return nil, fmt.Errorf("failed to stat %s: %w", path, fs.ErrNotExist)
	}
	return g, nil
}

func (m *memStore) Write(path string, g *domain.GriddedTimeSeries, opts era5.WriteOptions) error {
	if err := g.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[path] = g
	m.opts[path] = opts
	return nil
}

func (m *memStore) List(dir string) ([]era5.DatasetInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []era5.DatasetInfo
	for path := range m.datasets {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil, err
		}
		out = append(out, era5.DatasetInfo{Name: filepath.ToSlash(rel)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// hourlySeries builds an ERA5-like dataset with n hourly steps on a 2x2
// descending-latitude, 0-360 grid. Pressure is 100000 + 10*step + cell;
// both wind components are 1.
func hourlySeries(start int64, n int) *domain.GriddedTimeSeries {
	times := make([]int64, n)
	for i := range times {
		times[i] = start + int64(i)*3600
	}
	g := &domain.GriddedTimeSeries{
		Times:      times,
		Latitudes:  []float64{41, 40},
		Longitudes: []float64{285, 286},
		LatOrder:   domain.LatitudeDescending,
		LonRange:   domain.Longitude360,
		Fields:     map[string]*domain.Field{},
		Aux: []domain.AuxVariable{
			{Name: "number", Type: domain.TypeInt64, Data: []float64{0}},
		},
		Attrs: domain.Attributes{domain.TextAttr("Conventions", "CF-1.7")},
	}
	cells := g.NumCells()
	for _, name := range domain.RequiredFields {
		values := make([]float64, n*cells)
		for i := range values {
			if name == domain.VarPressure {
				values[i] = 100000 + 10*float64(i/cells) + float64(i%cells)
			} else {
				values[i] = 1
			}
		}
		g.Fields[name] = &domain.Field{
			Name:   name,
			Attrs:  domain.Attributes{domain.TextAttr("units", "Pa")},
			Values: values,
		}
	}
	return g
}

// writeObs writes an observation table into dir and returns its name.
func writeObs(t *testing.T, dir, name, body string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	return name
}

const sandyObs = `# The Battery
2012-10-29 00:00 10.0 90
2012-10-29 00:30 12.0 180
2012-10-29 01:00 150.0 180
2012-10-29 01:30 14.0
2012-10-29 02:00 8.0 270
`

// testDeps returns Deps over a memStore rooted at a temp directory, with a
// frozen clock and private metrics.
func testDeps(t *testing.T) (Deps, *memStore, *clockwork.FakeClock) {
	t.Helper()
	ms := newMemStore()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	return Deps{
		Store:   ms,
		Metrics: observability.NewMetricsForTesting(),
		Clock:   clock,
		Root:    t.TempDir(),
	}, ms, clock
}
