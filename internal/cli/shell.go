package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/JamesPrial/atlantis-todos/internal/httpapi"
	"github.com/JamesPrial/atlantis-todos/internal/storage"
	"github.com/JamesPrial/atlantis-todos/internal/todo"
)

const shellHelp = `Commands:
  add <text>          add a task
  toggle <ref>        flip completed
  rm <ref>            delete a task
  edit <ref> <text>   replace a task's text
  clear               delete completed tasks
  ls [filter]         list tasks (all, active, completed)
  stats               show counts
  help                show this help
  quit                leave the shell
<ref> is #n from the last listing, or an id or id prefix.`

func newShellCmd(opts *options, std streams) *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive task shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, std, func(e *env) error {
				ctx, cancel := context.WithCancel(cmd.Context())
				defer cancel()

				if httpAddr != "" {
					router := httpapi.NewRouter(httpapi.NewHandler(e.store, e.logger), e.cfg.Debug)
					go func() {
						if err := httpapi.Serve(ctx, httpAddr, router, e.logger); err != nil {
							e.logger.Printf("HTTP server stopped: %v", err)
						}
					}()
				}

				sess := newShellSession(ctx, e.store, std.out)
				defer sess.close()
				return sess.loop()
			})
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "also serve the HTTP API on this address")
	return cmd
}

// shellSession interprets shell lines against a store.
type shellSession struct {
	ctx   context.Context
	store *todo.Store
	out   io.Writer

	// last is the most recent listing, addressed by #n.
	last []storage.Task

	// seen is the store version after this session's latest command;
	// latest is the newest version announced by the subscription.
	seen        uint64
	latest      atomic.Uint64
	unsubscribe func()
}

func newShellSession(ctx context.Context, store *todo.Store, out io.Writer) *shellSession {
	s := &shellSession{
		ctx:   ctx,
		store: store,
		out:   out,
		seen:  store.Snapshot().Version,
	}
	s.unsubscribe = store.Subscribe(func(snap todo.Snapshot) {
		for {
			cur := s.latest.Load()
			if snap.Version <= cur || s.latest.CompareAndSwap(cur, snap.Version) {
				return
			}
		}
	})
	return s
}

func (s *shellSession) close() {
	s.unsubscribe()
}

func (s *shellSession) loop() error {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeLine)

	fmt.Fprintln(s.out, "Type 'help' for commands.")
	for {
		s.reportExternalChanges()

		input, err := line.Prompt("atlantis> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		quit, err := s.exec(input)
		if err != nil {
			fmt.Fprintln(s.out, "Error:", err)
		}
		if quit {
			return nil
		}
	}
}

var shellCommands = []string{"add", "clear", "edit", "help", "ls", "quit", "rm", "stats", "toggle"}

// completeLine offers command names, and filter names after "ls".
func completeLine(line string) []string {
	var out []string
	if cmd, arg, ok := strings.Cut(line, " "); ok {
		if cmd != "ls" && cmd != "list" {
			return nil
		}
		for _, f := range todo.Filters {
			if strings.HasPrefix(string(f), arg) {
				out = append(out, cmd+" "+string(f))
			}
		}
		return out
	}

	for _, name := range shellCommands {
		if strings.HasPrefix(name, line) {
			out = append(out, name)
		}
	}
	return out
}

// reportExternalChanges prints a notice when the list changed through
// another front-end (for example the HTTP API) since the last command.
func (s *shellSession) reportExternalChanges() {
	if s.latest.Load() <= s.seen {
		return
	}
	snap := s.store.Snapshot()
	s.seen = snap.Version
	fmt.Fprintf(s.out, "* list changed elsewhere: %s\n", formatStats(s.store.Stats()))
}

// exec runs one shell line. quit is true when the session should end.
func (s *shellSession) exec(input string) (quit bool, err error) {
	defer func() { s.seen = s.store.Snapshot().Version }()

	verb, rest, _ := strings.Cut(strings.TrimSpace(input), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(verb) {
	case "quit", "exit", "q":
		return true, nil

	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)

	case "add":
		task, err := s.store.Add(s.ctx, rest)
		if err != nil {
			return false, err
		}
		if task == nil {
			fmt.Fprintln(s.out, "Nothing to add: text is blank")
			return false, nil
		}
		fmt.Fprintln(s.out, formatTask(*task))

	case "toggle", "t":
		id, err := s.ref(rest)
		if err != nil {
			return false, err
		}
		task, err := s.store.Toggle(s.ctx, id)
		if err != nil {
			return false, err
		}
		if task == nil {
			fmt.Fprintf(s.out, "No task %s\n", rest)
			return false, nil
		}
		fmt.Fprintln(s.out, formatTask(*task))

	case "rm", "remove", "delete":
		id, err := s.ref(rest)
		if err != nil {
			return false, err
		}
		removed, err := s.store.Remove(s.ctx, id)
		if err != nil {
			return false, err
		}
		if !removed {
			fmt.Fprintf(s.out, "No task %s\n", rest)
			return false, nil
		}
		fmt.Fprintf(s.out, "Removed %s\n", shortID(id))

	case "edit", "e":
		refArg, text, _ := strings.Cut(rest, " ")
		id, err := s.ref(refArg)
		if err != nil {
			return false, err
		}
		task, err := s.store.Edit(s.ctx, id, text)
		if err != nil {
			return false, err
		}
		if task == nil {
			fmt.Fprintln(s.out, "Unchanged")
			return false, nil
		}
		fmt.Fprintln(s.out, formatTask(*task))

	case "clear":
		removed, err := s.store.ClearCompleted(s.ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(s.out, "Cleared %d completed task(s)\n", removed)

	case "ls", "list":
		filter, err := todo.ParseFilter(rest)
		if err != nil {
			return false, err
		}
		s.last = s.store.Filtered(filter)
		if len(s.last) == 0 {
			fmt.Fprintln(s.out, "No tasks.")
		}
		for i, t := range s.last {
			fmt.Fprintf(s.out, "%3d. %s\n", i+1, formatTask(t))
		}
		fmt.Fprintln(s.out, formatStats(s.store.Stats()))

	case "stats":
		fmt.Fprintln(s.out, formatStats(s.store.Stats()))

	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", verb)
	}

	return false, nil
}

// ref resolves "#n" against the last listing, or an id / id prefix.
func (s *shellSession) ref(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if n, ok := strings.CutPrefix(arg, "#"); ok {
		i, err := strconv.Atoi(n)
		if err != nil || i < 1 || i > len(s.last) {
			return "", fmt.Errorf("no task %s in the last listing", arg)
		}
		return s.last[i-1].ID, nil
	}
	return resolveID(s.store, arg)
}
