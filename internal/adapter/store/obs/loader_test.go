package obs

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/surge-forcing/internal/domain"
)

const sandyObs = `# Station 8518750 The Battery, NY
2012-10-29 00:00 12.4 95
2012-10-29 00:30 13.1 98

2012-10-29 01:00 fast 100
2012-10-29 01:30 14.0
20121029 0200 15.2 104.5
`

// TestParse checks comments, blank lines and malformed records.
func TestParse(t *testing.T) {
	s, err := Parse(strings.NewReader(sandyObs))
	require.NoError(t, err)

	assert.Equal(t, 2, s.Malformed)
	require.Len(t, s.Observations, 3)

	first := s.Observations[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, 12.4, first.SpeedMS)
	assert.Equal(t, 95.0, first.DirectionDeg)
	assert.Equal(t, time.Date(2012, 10, 29, 0, 0, 0, 0, time.UTC), first.Time)

	last := s.Observations[2]
	assert.Equal(t, 2, last.Index)
	assert.Equal(t, 104.5, last.DirectionDeg)
	assert.Equal(t, time.Date(2012, 10, 29, 2, 0, 0, 0, time.UTC), last.Time)
}

// TestParse_UnknownTimestamp keeps the record with a zero time.
func TestParse_UnknownTimestamp(t *testing.T) {
	s, err := Parse(strings.NewReader("day1 noon 5 180\n"))
	require.NoError(t, err)
	require.Len(t, s.Observations, 1)
	assert.True(t, s.Observations[0].Time.IsZero())
}

// TestParseCSV covers a header with separate date and time columns.
func TestParseCSV(t *testing.T) {
	in := "date,time,speed,direction\n2012-10-29,00:00,12.4,95\n2012-10-29,00:30,n/a,98\n2012-10-29,01:00,9,270\n"
	s, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Malformed)
	require.Len(t, s.Observations, 2)
	assert.Equal(t, 1, s.Observations[1].Index)
	assert.Equal(t, 270.0, s.Observations[1].DirectionDeg)

	_, err = ParseCSV(strings.NewReader("when,how\n"))
	require.Error(t, err)
}

// TestWriteLoad checks Write output is read back by Load.
func TestWriteLoad(t *testing.T) {
	obs := []domain.WindObservation{
		{Index: 0, Time: time.Date(2012, 10, 29, 12, 0, 0, 0, time.UTC), SpeedMS: 21.5, DirectionDeg: 120},
		{Index: 1, Time: time.Date(2012, 10, 29, 12, 30, 0, 0, time.UTC), SpeedMS: 22.25, DirectionDeg: 122.5},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, obs))

	path := filepath.Join(t.TempDir(), "obs.txt")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, obs, s.Observations)
	assert.Zero(t, s.Malformed)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
