package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JamesPrial/atlantis-todos/internal/storage"
	"github.com/JamesPrial/atlantis-todos/internal/todo"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"
)

func parseFormat(name string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case "", formatText:
		return formatText, nil
	case formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format: %q (expected text, json or yaml)", name)
	}
}

type listing struct {
	Tasks []storage.Task `json:"tasks" yaml:"tasks"`
	Stats todo.Stats     `json:"stats" yaml:"stats"`
}

func writeListing(w io.Writer, format outputFormat, tasks []storage.Task, stats todo.Stats) error {
	switch format {
	case formatJSON:
		return writeJSON(w, listing{Tasks: tasks, Stats: stats})
	case formatYAML:
		return writeYAML(w, listing{Tasks: tasks, Stats: stats})
	}

	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
	}
	for _, t := range tasks {
		fmt.Fprintln(w, formatTask(t))
	}
	fmt.Fprintln(w, formatStats(stats))
	return nil
}

func writeStats(w io.Writer, format outputFormat, stats todo.Stats) error {
	switch format {
	case formatJSON:
		return writeJSON(w, stats)
	case formatYAML:
		return writeYAML(w, stats)
	}
	fmt.Fprintln(w, formatStats(stats))
	return nil
}

func formatStats(s todo.Stats) string {
	return fmt.Sprintf("%d total, %d active, %d completed", s.Total, s.Active, s.Completed)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
