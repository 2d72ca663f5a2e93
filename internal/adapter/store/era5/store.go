// Package era5 reads and writes ERA5-style gridded NetCDF files.
package era5

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"go.ngs.io/surge-forcing/internal/domain"
)

// Names maps the canonical field names onto on-disk variable names.
type Names struct {
	Pressure string
	UWind    string
	VWind    string
}

// DefaultNames returns the ERA5 short names.
func DefaultNames() Names {
	return Names{
		Pressure: "msl",
		UWind:    "u10",
		VWind:    "v10",
	}
}

func (n Names) canonical(fileName string) string {
	switch fileName {
	case n.Pressure:
		return domain.VarPressure
	case n.UWind:
		return domain.VarUWind
	case n.VWind:
		return domain.VarVWind
	default:
		return fileName
	}
}

func (n Names) fileName(canonical string) string {
	switch canonical {
	case domain.VarPressure:
		return n.Pressure
	case domain.VarUWind:
		return n.UWind
	case domain.VarVWind:
		return n.VWind
	default:
		return canonical
	}
}

// Store reads and writes gridded NetCDF datasets.
type Store struct {
	names  Names
	logger *zap.Logger

	cache map[string]cachedDataset // Keyed by path.
	mu    sync.RWMutex             // Protect cache.
}

type cachedDataset struct {
	modTime time.Time
	size    int64
	data    *domain.GriddedTimeSeries
}

// DatasetInfo describes a NetCDF file found by List.
type DatasetInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// NewStore creates a store using the given variable names. A nil logger
// disables logging.
func NewStore(names Names, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		names:  names,
		logger: logger,
		cache:  make(map[string]cachedDataset),
	}
}

// Load returns the dataset at path, reusing a previous read while the file
// is unchanged. Callers must not modify the returned value.
func (s *Store) Load(path string) (*domain.GriddedTimeSeries, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	s.mu.RLock()
	c, ok := s.cache[path]
	s.mu.RUnlock()
	if ok && c.modTime.Equal(info.ModTime()) && c.size == info.Size() {
		return c.data, nil
	}

	g, err := s.Read(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[path] = cachedDataset{modTime: info.ModTime(), size: info.Size(), data: g}
	s.mu.Unlock()
	return g, nil
}

func (s *Store) invalidate(path string) {
	s.mu.Lock()
	delete(s.cache, path)
	s.mu.Unlock()
}

// List returns the NetCDF files below dir, relative to dir and sorted.
func (s *Store) List(dir string) ([]DatasetInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("data directory %s: %w", dir, err)
	}

	var out []DatasetInfo
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".nc") || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, DatasetInfo{
			Name:    filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk data directory: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
