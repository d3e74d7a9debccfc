package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/JamesPrial/atlantis-todos/internal/command"
	"github.com/JamesPrial/atlantis-todos/internal/httpapi"
	"github.com/JamesPrial/atlantis-todos/internal/mcpserver"
)

func newApplyCmd(opts *options, std streams) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Apply JSON operations from stdin, one response line each",
		Long: `apply reads a stream of JSON requests such as

  {"op":"add","text":"Find trident"}
  {"op":"toggle","id":"<id>"}
  {"op":"list","filter":"active"}

and writes one JSON response per request to stdout. Ops: add, toggle,
remove, edit, clear_completed, list, stats.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, std, func(e *env) error {
				var decodeOpts []command.DecoderOption
				if e.cfg.Debug {
					decodeOpts = append(decodeOpts, command.WithDebugLogger(e.logger))
				}
				return command.Run(cmd.Context(), e.store, std.in, std.out, decodeOpts...)
			})
		},
	}
}

func newServeCmd(opts *options, std streams) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, std, func(e *env) error {
				if addr == "" {
					addr = e.cfg.HTTP.Addr
				}
				router := httpapi.NewRouter(httpapi.NewHandler(e.store, e.logger), e.cfg.Debug)
				return httpapi.Serve(cmd.Context(), addr, router, e.logger)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from TODO_HTTP_ADDR or :8080)")
	return cmd
}

func newMCPCmd(opts *options, std streams, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the task tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, std, func(e *env) error {
				srv, err := mcpserver.NewServer(e.store, version)
				if err != nil {
					return err
				}
				stdio := server.NewStdioServer(srv)
				stdio.SetErrorLogger(e.logger)
				return stdio.Listen(cmd.Context(), std.in, std.out)
			})
		},
	}
}
