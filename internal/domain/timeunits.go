package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TimeUnits is a CF "<unit> since <epoch>" time encoding.
type TimeUnits struct {
	Step  time.Duration
	Epoch time.Time
}

var (
	// UnixSeconds is "seconds since 1970-01-01".
	UnixSeconds = TimeUnits{Step: time.Second, Epoch: time.Unix(0, 0).UTC()}
	// HoursSince1900 is the encoding expected by ESMF mesh tooling.
	HoursSince1900 = TimeUnits{Step: time.Hour, Epoch: time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)}
)

var unitSteps = map[string]time.Duration{
	"second": time.Second, "seconds": time.Second, "s": time.Second,
	"minute": time.Minute, "minutes": time.Minute, "min": time.Minute,
	"hour": time.Hour, "hours": time.Hour, "h": time.Hour,
	"day": 24 * time.Hour, "days": 24 * time.Hour, "d": 24 * time.Hour,
}

var epochLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-1-2 15:4:5",
	"2006-01-02",
	"2006-1-2",
}

// ParseTimeUnits parses a CF units string such as
// "hours since 1900-01-01 00:00:00.0".
func ParseTimeUnits(s string) (TimeUnits, error) {
	parts := strings.SplitN(strings.TrimSpace(s), " since ", 2)
	if len(parts) != 2 {
		return TimeUnits{}, fmt.Errorf("%w: time units %q", ErrInvalidInput, s)
	}
	step, ok := unitSteps[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return TimeUnits{}, fmt.Errorf("%w: time unit %q", ErrInvalidInput, parts[0])
	}

	ref := strings.TrimSpace(parts[1])
	ref = strings.TrimSuffix(ref, " UTC")
	ref = strings.TrimSuffix(ref, "Z")
	if i := strings.LastIndex(ref, "."); i > strings.LastIndex(ref, ":") && strings.Contains(ref, ":") {
		ref = ref[:i]
	}
	for _, layout := range epochLayouts {
		if epoch, err := time.ParseInLocation(layout, ref, time.UTC); err == nil {
			return TimeUnits{Step: step, Epoch: epoch}, nil
		}
	}
	return TimeUnits{}, fmt.Errorf("%w: time reference %q", ErrInvalidInput, parts[1])
}

// ToUnix converts a stored value to seconds since 1970-01-01.
func (u TimeUnits) ToUnix(v float64) int64 {
	return u.Epoch.Unix() + int64(math.Round(v*u.Step.Seconds()))
}

// FromUnix converts seconds since 1970-01-01 to a stored value.
func (u TimeUnits) FromUnix(sec int64) float64 {
	return float64(sec-u.Epoch.Unix()) / u.Step.Seconds()
}

// String renders the units attribute.
func (u TimeUnits) String() string {
	if u.Step == time.Second && u.Epoch.Equal(UnixSeconds.Epoch) {
		return "seconds since 1970-01-01"
	}
	name := "seconds"
	switch u.Step {
	case time.Minute:
		name = "minutes"
	case time.Hour:
		name = "hours"
	case 24 * time.Hour:
		name = "days"
	}
	return name + " since " + u.Epoch.Format("2006-01-02 15:04:05") + ".0"
}
