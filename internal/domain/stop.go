package domain

import (
	"errors"
	"fmt"
)

var ErrMultipleFirstStops = errors.New("more than one stop is flagged as first")

// Stop is the planning-time view of a task: where it is and whether the
// circuit must start there. Stops only live for one planning run.
type Stop struct {
	TaskIndex   int
	TaskID      int64
	SiteID      int64
	Coordinates Coordinates
	IsFirst     bool
}

// Build one stop per task, preserving task order.
func StopsFromTasks(tasks []*Task) ([]Stop, error) {
	stops := make([]Stop, 0, len(tasks))
	for i, t := range tasks {
		if t == nil {
			return nil, fmt.Errorf("build stops: task at index %d is nil", i)
		}
		if t.Site == nil {
			return nil, fmt.Errorf("build stops: task %d has no site", t.TaskID)
		}
		if err := t.Site.Coordinates.Validate(); err != nil {
			return nil, fmt.Errorf("build stops: task %d site %d: %w", t.TaskID, t.Site.SiteID, err)
		}

		stops = append(stops, Stop{
			TaskIndex:   i,
			TaskID:      t.TaskID,
			SiteID:      t.Site.SiteID,
			Coordinates: t.Site.Coordinates,
			IsFirst:     t.IsFirst,
		})
	}

	return stops, nil
}

// FirstStopIndex returns the index of the stop flagged as first.
// When no stop is flagged, the first stop is designated and designated is true.
func FirstStopIndex(stops []Stop) (index int, designated bool, err error) {
	if len(stops) == 0 {
		return 0, false, errors.New("first stop: no stops")
	}

	index = -1
	for i, s := range stops {
		if !s.IsFirst {
			continue
		}
		if index >= 0 {
			return 0, false, fmt.Errorf(
				"first stop: tasks %d and %d: %w",
				stops[index].TaskID, s.TaskID, ErrMultipleFirstStops,
			)
		}
		index = i
	}

	if index < 0 {
		return 0, true, nil
	}

	return index, false, nil
}

// Locations lists the stops' coordinates in stop order.
func Locations(stops []Stop) []Coordinates {
	out := make([]Coordinates, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.Coordinates)
	}
	return out
}
