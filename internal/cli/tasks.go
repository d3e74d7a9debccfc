package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JamesPrial/atlantis-todos/internal/storage"
	"github.com/JamesPrial/atlantis-todos/internal/todo"
)

// shortIDLen is how many id characters the text listing shows.
const shortIDLen = 8

// withStore opens the environment for the duration of fn.
func withStore(cmd *cobra.Command, opts *options, std streams, fn func(e *env) error) error {
	e, err := openEnv(cmd.Context(), opts, std.err)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(e)
}

func newAddCmd(opts *options, std streams) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a task to the top of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, std, func(e *env) error {
				task, err := e.store.Add(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				if task == nil {
					fmt.Fprintln(std.out, "Nothing to add: text is blank")
					return nil
				}
				fmt.Fprintf(std.out, "Added %s  %s\n", shortID(task.ID), task.Text)
				return nil
			})
		},
	}
}

func newToggleCmd(opts *options, std streams) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, std, func(e *env) error {
				id, err := resolveID(e.store, args[0])
				if err != nil {
					return err
				}
				task, err := e.store.Toggle(cmd.Context(), id)
				if err != nil {
					return err
				}
				if task == nil {
					fmt.Fprintf(std.out, "No task %s\n", id)
					return nil
				}
				fmt.Fprintln(std.out, formatTask(*task))
				return nil
			})
		},
	}
}

func newRemoveCmd(opts *options, std streams) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, std, func(e *env) error {
				id, err := resolveID(e.store, args[0])
				if err != nil {
					return err
				}
				removed, err := e.store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(std.out, "No task %s\n", id)
					return nil
				}
				fmt.Fprintf(std.out, "Removed %s\n", shortID(id))
				return nil
			})
		},
	}
}

func newEditCmd(opts *options, std streams) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text...>",
		Short: "Replace a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, std, func(e *env) error {
				id, err := resolveID(e.store, args[0])
				if err != nil {
					return err
				}
				task, err := e.store.Edit(cmd.Context(), id, strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				if task == nil {
					fmt.Fprintln(std.out, "Unchanged")
					return nil
				}
				fmt.Fprintln(std.out, formatTask(*task))
				return nil
			})
		},
	}
}

func newClearCompletedCmd(opts *options, std streams) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every completed task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, std, func(e *env) error {
				removed, err := e.store.ClearCompleted(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(std.out, "Cleared %d completed task(s)\n", removed)
				return nil
			})
		},
	}
}

func newListCmd(opts *options, std streams) *cobra.Command {
	var filterName, output string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List tasks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := todo.ParseFilter(filterName)
			if err != nil {
				return err
			}
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			return withStore(cmd, opts, std, func(e *env) error {
				return writeListing(std.out, format, e.store.Filtered(filter), e.store.Stats())
			})
		},
	}

	cmd.Flags().StringVarP(&filterName, "filter", "f", "all", "which tasks to show: all, active or completed")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func newStatsCmd(opts *options, std streams) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			return withStore(cmd, opts, std, func(e *env) error {
				return writeStats(std.out, format, e.store.Stats())
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

// resolveID accepts a full id or a unique prefix of one.
//
// An arg matching nothing is returned unchanged so the store treats it as
// an unknown id (a no-op).
func resolveID(store *todo.Store, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("id must not be empty")
	}
	if _, ok := store.Get(arg); ok {
		return arg, nil
	}

	var matches []string
	for t := range store.View(todo.FilterAll) {
		if strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}

	switch len(matches) {
	case 0:
		return arg, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous (%d matches)", arg, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func formatTask(t storage.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	return fmt.Sprintf("[%s] %s  %s", mark, shortID(t.ID), t.Text)
}
