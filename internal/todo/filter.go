package todo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JamesPrial/atlantis-todos/internal/storage"
)

// ErrUnknownFilter is returned by ParseFilter for unrecognized names.
var ErrUnknownFilter = errors.New("unknown filter")

// Filter selects a view over the task list. It is never persisted.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists every valid filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter converts a name to a Filter. Matching is case-insensitive and
// the empty string means FilterAll.
func ParseFilter(name string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(name))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("%w: %q (expected all, active or completed)", ErrUnknownFilter, name)
	}
}

// Match reports whether t belongs in the view. Unrecognized filters match
// everything, like FilterAll.
func (f Filter) Match(t storage.Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Stats holds task counts over the full list.
type Stats struct {
	Total     int `json:"total" yaml:"total"`
	Active    int `json:"active" yaml:"active"`
	Completed int `json:"completed" yaml:"completed"`
}

func computeStats(tasks []storage.Task) Stats {
	stats := Stats{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.Completed++
		} else {
			stats.Active++
		}
	}
	return stats
}
