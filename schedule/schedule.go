package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/jaymaart/mummblebotv2/internal/config"
)

// Occurrence is the next real-time window of one weekly stream slot.
type Occurrence struct {
	Weekday time.Weekday
	Start   time.Time
	End     time.Time
}

// Schedule computes upcoming occurrences of weekly stream slots in a fixed
// timezone.
type Schedule struct {
	slots    []*config.Slot
	location *time.Location
}

func New(cfg *config.Schedule) (*Schedule, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}

	location, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load schedule timezone %q: %w", tz, err)
	}

	return &Schedule{slots: cfg.Slots, location: location}, nil
}

// NextOccurrences returns the next occurrence of every slot, sorted by start
// time. A slot whose weekday is today but whose start already passed rolls
// over to next week.
func (s *Schedule) NextOccurrences(now time.Time) []Occurrence {
	local := now.In(s.location)

	occurrences := make([]Occurrence, 0, len(s.slots))
	for _, slot := range s.slots {
		startHour, startMinute := mustClock(slot.Start)
		endHour, endMinute := mustClock(slot.End)

		daysAhead := int(slot.Weekday-local.Weekday()+7) % 7

		day := local.AddDate(0, 0, daysAhead)
		start := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMinute, 0, 0, s.location)

		if !start.After(local) {
			start = start.AddDate(0, 0, 7)
		}

		end := time.Date(start.Year(), start.Month(), start.Day(), endHour, endMinute, 0, 0, s.location)
		if end.Before(start) {
			// Stream crosses midnight.
			end = end.AddDate(0, 0, 1)
		}

		occurrences = append(occurrences, Occurrence{
			Weekday: slot.Weekday,
			Start:   start.UTC(),
			End:     end.UTC(),
		})
	}

	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].Start.Before(occurrences[j].Start)
	})

	return occurrences
}

// NextAnchor returns the next weekly posting time: the given weekday and hour
// in the schedule's timezone, strictly after now.
func (s *Schedule) NextAnchor(now time.Time, weekday time.Weekday, hour int) time.Time {
	local := now.In(s.location)

	daysAhead := int(weekday-local.Weekday()+7) % 7
	day := local.AddDate(0, 0, daysAhead)
	anchor := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, s.location)

	if !anchor.After(local) {
		anchor = anchor.AddDate(0, 0, 7)
	}

	return anchor.UTC()
}

// mustClock parses "HH:MM". Formats are validated when config is loaded.
func mustClock(s string) (hour, minute int) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0
	}

	return t.Hour(), t.Minute()
}
