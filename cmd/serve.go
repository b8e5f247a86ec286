package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xolan/hourcal/internal/offline"
	"github.com/xolan/hourcal/internal/web"
)

// shutdownTimeout bounds how long in-flight requests may run after a signal
const shutdownTimeout = 5 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web calendar",
	Long: `Serve the web calendar and its JSON API.

With the offline cache enabled (the default) the app shell and assets are
precached under the configured version and served cache-first, pages fall
back to the cached shell when the origin is unreachable, and every other
request passes straight through. The version activated by a previous run
keeps serving while a newly configured version waits until a page posts
"skipWaiting" to /__offline/message, unless offline.auto_activate is set.

By default the bundled web app is served in-process. With --origin the cache
sits in front of a remote copy of the app instead.

Examples:
  hourcal serve
  hourcal serve --listen 0.0.0.0:8080
  hourcal serve --origin https://example.com/hourcal/ --scope /hourcal/`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "Address to listen on (default from config)")
	serveCmd.Flags().String("origin", "", "Remote web origin to cache (default: bundled app)")
	serveCmd.Flags().String("scope", "", "Base path the app is served under (default from config)")
	serveCmd.Flags().Bool("no-offline", false, "Disable the offline cache")
}

func runServe(cmd *cobra.Command) {
	s, ok := openSession(deps.Stderr)
	if !ok {
		return
	}
	defer s.Close()

	if v, _ := cmd.Flags().GetString("listen"); v != "" {
		s.cfg.Server.Listen = v
	}
	if v, _ := cmd.Flags().GetString("origin"); v != "" {
		s.cfg.Server.Origin = v
	}
	if v, _ := cmd.Flags().GetString("scope"); v != "" {
		s.cfg.Server.Scope = v
	}
	if off, _ := cmd.Flags().GetBool("no-offline"); off {
		s.cfg.Offline.Enabled = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := buildHandler(ctx, s)
	if err != nil {
		fail("Failed to set up the web server", err, "Check the [server] and [offline] settings in your config file")
		return
	}
	defer cleanup()

	ln, err := net.Listen("tcp", s.cfg.Server.Listen)
	if err != nil {
		fail(fmt.Sprintf("Failed to listen on %s", s.cfg.Server.Listen), err, "Use --listen to pick another address")
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Serving hourcal on http://%s%s\n", ln.Addr(), s.cfg.Server.Scope)

	if err := serve(ctx, ln, handler); err != nil {
		fail("Web server stopped", err, "")
		return
	}
}

// serve runs an HTTP server on ln until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// buildHandler assembles the handler chain for the session's settings:
// the web app (bundled or remote origin) behind the offline cache when it is
// enabled. cleanup stops the install retry scheduler.
func buildHandler(ctx context.Context, s *session) (h http.Handler, cleanup func(), err error) {
	cleanup = func() {}
	scope := s.cfg.Server.Scope
	if !strings.HasSuffix(scope, "/") {
		scope += "/"
	}

	var network offline.Fetcher
	if s.cfg.Server.Origin != "" {
		network, err = offline.NewHTTPFetcher(s.cfg.Server.Origin, nil)
		if err != nil {
			return nil, cleanup, err
		}
	} else {
		app := mountApp(scope, web.NewServer(s.services.Calendar, s.log).Handler())
		if !s.cfg.Offline.Enabled {
			return app, cleanup, nil
		}
		network = &offline.HandlerFetcher{Handler: app}
	}

	rt := offline.NewRuntime(offline.RuntimeOptions{
		AutoActivate: s.cfg.Offline.AutoActivate,
		InstallRetry: s.cfg.Offline.InstallRetry,
		Logger:       s.log,
	})
	proxy := offline.NewHandler(rt, network, s.log)
	if !s.cfg.Offline.Enabled {
		return proxy, cleanup, nil
	}

	cacheDir, err := s.cfg.CacheDir()
	if err != nil {
		return nil, cleanup, err
	}
	cache, err := offline.OpenStorage(cacheDir, s.log)
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to open offline cache: %w", err)
	}
	opts := []offline.WorkerOption{offline.WithScope(scope), offline.WithLogger(s.log)}
	worker, err := offline.NewWorker(s.cfg.Manifest(), cache, network, opts...)
	if err != nil {
		return nil, cleanup, err
	}

	// The version a previous run activated keeps serving while a new one waits.
	if prev, ok := cache.Active(); ok && prev.Version != worker.Version() {
		old, err := offline.NewWorker(prev, cache, network, opts...)
		if err == nil {
			err = rt.Resume(old)
		}
		if err != nil {
			s.log.WithError(err).WithField("version", prev.Version).Warn("previous offline cache not resumed")
		}
	}

	rt.Start()
	cleanup = rt.Stop
	if err := rt.Register(ctx, worker); err != nil {
		// Requests pass through until a scheduled retry installs the worker.
		s.log.WithError(err).Warn("offline cache not installed")
	}
	return proxy, cleanup, nil
}

// mountApp serves app under scope.
func mountApp(scope string, app http.Handler) http.Handler {
	if scope == "/" {
		return app
	}
	mux := http.NewServeMux()
	mux.Handle(scope, http.StripPrefix(strings.TrimSuffix(scope, "/"), app))
	return mux
}
