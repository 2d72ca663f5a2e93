// Package store defines the storage interfaces used by the use cases.
package store

import (
	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/domain"
)

// DatasetStore is the interface for reading and writing gridded datasets.
type DatasetStore interface {
	// Load returns the dataset at path, possibly from a cache. The result
	// must be treated as read-only.
	Load(path string) (*domain.GriddedTimeSeries, error)

	// Write stores g at path without leaving partial output on failure.
	Write(path string, g *domain.GriddedTimeSeries, opts era5.WriteOptions) error

	// List returns the datasets found below dir.
	List(dir string) ([]era5.DatasetInfo, error)
}

var _ DatasetStore = (*era5.Store)(nil)
