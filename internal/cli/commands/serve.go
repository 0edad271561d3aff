package commands

import (
	"fmt"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/purin2/sql-practice-tutor/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	From    string
	Open    bool
	NoWatch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset as a read-only JSON feed",
		Long: `Start a local HTTP server publishing a schema document:

  GET /api/schema          the whole document
  GET /api/tables          table metadata and row counts
  GET /api/tables/{name}   one table, ?limit=n keeps the first n rows
  GET /api/updates         server-sent events on every reload
  GET /healthz             liveness

The document is reloaded whenever its file changes.`,
		Example: `  # Serve the configured output on the default port
  gendata serve

  # Serve another document on port 3000 and open it in the browser
  gendata serve --from /tmp/schema.json --port 3000 --open`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Schema document to serve (default: the configured output)")
	cmd.Flags().Int("port", 0, "Port to serve on (default: 8790)")
	cmd.Flags().BoolVar(&opts.Open, "open", false, "Open the schema in the browser")
	cmd.Flags().BoolVar(&opts.NoWatch, "no-watch", false, "Don't reload when the file changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc := NewCommandContext(cmd)

	path := opts.From
	if path == "" {
		path = cc.Cfg.Output
	}

	server := ui.NewServer(ui.Config{
		Path:   path,
		Port:   cc.Cfg.Serve.Port,
		Limit:  cc.Cfg.Serve.Limit,
		Watch:  !opts.NoWatch,
		Logger: cc.Logger,
	})

	url := fmt.Sprintf("http://localhost:%d/api/schema", cc.Cfg.Serve.Port)
	if opts.Open {
		go openBrowser(url)
	}

	cc.Renderer.Println(cc.Renderer.FormatKeyValue("Serving", url))
	cc.Renderer.Println(cc.Renderer.Muted("Press Ctrl+C to stop"))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
