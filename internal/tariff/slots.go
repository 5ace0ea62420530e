package tariff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Placeholder tokens for dual-rate contracts. A downstream service replaces
// them with the deployment's own schedule, matching on the exact string.
const (
	PeakToken    = "TO_REPLACE_PEAK"
	OffPeakToken = "TO_REPLACE_OFF_PEAK"
)

const slotMinutes = 30

var (
	peakStart = 6 * 60
	peakEnd   = 22 * 60
)

// PeakSlots and OffPeakSlots are the half-hour markers used by calendar-tiered
// contracts. Each marker is the start of a 30-minute slot.
var (
	PeakSlots    = strings.Join(halfHourMarkers(peakStart, peakEnd), ",")
	OffPeakSlots = strings.Join(append(halfHourMarkers(0, peakStart), halfHourMarkers(peakEnd, 24*60)...), ",")
)

func halfHourMarkers(from, to int) []string {
	var out []string
	for m := from; m < to; m += slotMinutes {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}

// ParseSlots splits a comma-joined marker list and checks that each marker is a
// valid HH:MM on the half-hour grid.
func ParseSlots(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, eris.New("tariff: empty hour slots")
	}
	markers := strings.Split(s, ",")
	for _, m := range markers {
		if len(m) != 5 || m[2] != ':' {
			return nil, eris.Errorf("tariff: malformed hour marker %q", m)
		}
		hour, herr := strconv.Atoi(m[:2])
		minute, merr := strconv.Atoi(m[3:])
		if herr != nil || merr != nil {
			return nil, eris.Errorf("tariff: malformed hour marker %q", m)
		}
		if hour < 0 || hour > 23 || minute < 0 || minute%slotMinutes != 0 || minute >= 60 {
			return nil, eris.Errorf("tariff: hour marker %q is off the half-hour grid", m)
		}
	}
	return markers, nil
}
