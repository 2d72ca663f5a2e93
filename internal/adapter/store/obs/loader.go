// Package obs loads point wind observation series.
package obs

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.ngs.io/surge-forcing/internal/domain"
)

// Series is a parsed observation file.
type Series struct {
	Observations []domain.WindObservation
	Malformed    int // Lines that could not be parsed.
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"20060102 150405",
	"20060102 1504",
	"01/02/2006 15:04",
}

// Load reads an observation file. Files ending in .csv are read as CSV
// with a header row; anything else as a whitespace-delimited table.
func Load(path string) (Series, error) {
	//nolint:gosec // G304: path comes from the CLI or a data-dir confined request.
	file, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("failed to open observation file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ParseCSV(file)
	}
	return Parse(file)
}

// Parse reads "date time speed direction" records. Blank lines and lines
// starting with # are skipped; short or non-numeric lines are counted as
// malformed and dropped.
func Parse(r io.Reader) (Series, error) {
	var s Series
	scanner := bufio.NewScanner(r)
	index := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			s.Malformed++
			continue
		}
		o, ok := record(index, fields[0]+" "+fields[1], fields[2], fields[3])
		if !ok {
			s.Malformed++
			continue
		}
		s.Observations = append(s.Observations, o)
		index++
	}
	if err := scanner.Err(); err != nil {
		return Series{}, fmt.Errorf("failed to read observations: %w", err)
	}
	return s, nil
}

// ParseCSV reads a CSV table with a header naming speed and direction
// columns, plus either a single time column or separate date and time
// columns.
func ParseCSV(r io.Reader) (Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return Series{}, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	speedCol, okS := cols["speed"]
	dirCol, okD := cols["direction"]
	if !okS || !okD {
		return Series{}, fmt.Errorf("invalid CSV header: expected speed and direction columns, got %v", header)
	}
	dateCol, hasDate := cols["date"]
	timeCol, hasTime := cols["time"]

	var s Series
	index := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("failed to read CSV record: %w", err)
		}
		if len(rec) <= speedCol || len(rec) <= dirCol {
			s.Malformed++
			continue
		}
		var stamp string
		switch {
		case hasDate && hasTime && len(rec) > dateCol && len(rec) > timeCol:
			stamp = rec[dateCol] + " " + rec[timeCol]
		case hasTime && len(rec) > timeCol:
			stamp = rec[timeCol]
		}
		o, ok := record(index, stamp, rec[speedCol], rec[dirCol])
		if !ok {
			s.Malformed++
			continue
		}
		s.Observations = append(s.Observations, o)
		index++
	}
	return s, nil
}

func record(index int, stamp, speed, direction string) (domain.WindObservation, bool) {
	sp, err := strconv.ParseFloat(strings.TrimSpace(speed), 64)
	if err != nil {
		return domain.WindObservation{}, false
	}
	dir, err := strconv.ParseFloat(strings.TrimSpace(direction), 64)
	if err != nil {
		return domain.WindObservation{}, false
	}
	return domain.WindObservation{
		Index:        index,
		Time:         parseTime(strings.TrimSpace(stamp)),
		SpeedMS:      sp,
		DirectionDeg: dir,
	}, true
}

// parseTime is best effort; unknown formats yield the zero time.
func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Write emits observations in the whitespace-delimited format read by Parse.
func Write(w io.Writer, observations []domain.WindObservation) error {
	bw := bufio.NewWriter(w)
	for _, o := range observations {
		stamp := "0000-00-00 00:00:00"
		if !o.Time.IsZero() {
			stamp = o.Time.UTC().Format("2006-01-02 15:04:05")
		}
		if _, err := fmt.Fprintf(bw, "%s %.2f %.1f\n", stamp, o.SpeedMS, o.DirectionDeg); err != nil {
			return fmt.Errorf("failed to write observation %d: %w", o.Index, err)
		}
	}
	return bw.Flush()
}
