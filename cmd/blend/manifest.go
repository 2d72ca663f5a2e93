package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/usecase"
)

// Manifest lists blend jobs. Relative paths are resolved against the
// manifest's directory.
type Manifest struct {
	Jobs []Job `yaml:"jobs"`

	dir string
}

// Job is one manifest entry. Empty fields take the command-line defaults.
type Job struct {
	Source       string `yaml:"source"`
	Observations string `yaml:"observations"`
	Output       string `yaml:"output"`
	StepCount    *int   `yaml:"step_count"`
	Policy       string `yaml:"policy"`
	Encoding     string `yaml:"encoding"`
}

// LoadManifest reads a YAML manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Jobs) == 0 {
		return nil, fmt.Errorf("%w: manifest %s has no jobs", domain.ErrInvalidInput, path)
	}
	m.dir = filepath.Dir(path)
	return &m, nil
}

// Requests expands the jobs over base.
func (m *Manifest) Requests(base usecase.BlendRequest) ([]usecase.BlendRequest, error) {
	reqs := make([]usecase.BlendRequest, 0, len(m.Jobs))
	for i, job := range m.Jobs {
		req := base
		req.Source = m.resolve(job.Source)
		req.Observations = m.resolve(job.Observations)
		req.Output = m.resolve(job.Output)
		if job.StepCount != nil {
			req.StepCount = *job.StepCount
		}
		var err error
		if job.Policy != "" {
			if req.Policy, err = domain.ParseWindPolicy(job.Policy); err != nil {
				return nil, fmt.Errorf("job %d: %w", i, err)
			}
		}
		if job.Encoding != "" {
			if req.Encoding, err = era5.ParseEncoding(job.Encoding); err != nil {
				return nil, fmt.Errorf("job %d: %w", i, err)
			}
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.dir, p)
}
