// Package ui serves a generated document as a read-only HTTP feed.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/purin2/sql-practice-tutor/internal/sink/jsonfile"
	"github.com/purin2/sql-practice-tutor/internal/ui/notifier"
	"github.com/purin2/sql-practice-tutor/internal/ui/router"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// reloadDebounce collapses the events of one file write.
const reloadDebounce = 100 * time.Millisecond

// Server is the document feed server.
type Server struct {
	path     string
	port     int
	limit    int
	watch    bool
	logger   *slog.Logger
	notifier *notifier.Notifier

	mu       sync.RWMutex
	doc      *core.Document
	revision uint64
	addr     net.Addr
}

// Config holds configuration for the feed server.
type Config struct {
	// Path is the schema document to serve.
	Path string
	// Port to listen on; 0 picks a free one.
	Port int
	// Limit caps rows per table response when the request sets none.
	Limit int
	// Watch reloads the document when the file changes.
	Watch  bool
	Logger *slog.Logger
}

// NewServer creates a new feed server. Call Load or Serve to read the
// document.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		path:     cfg.Path,
		port:     cfg.Port,
		limit:    cfg.Limit,
		watch:    cfg.Watch,
		logger:   logger,
		notifier: notifier.New(),
	}
}

// Load reads the document from disk and publishes it as a new revision.
// On error the previous document stays in place.
func (s *Server) Load() error {
	doc, err := jsonfile.ReadFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = doc
	s.revision++
	rev := s.revision
	s.mu.Unlock()

	s.logger.Debug("loaded document", slog.String("path", s.path), slog.Uint64("revision", rev))
	s.notifier.Broadcast(rev)
	return nil
}

// Document returns the current document and its revision.
func (s *Server) Document() (*core.Document, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return &core.Document{Tables: []core.Table{}}, s.revision
	}
	return s.doc, s.revision
}

// Notifier returns the server's notifier for reload events.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Addr returns the listening address once Serve has started.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

// Handler returns the feed's HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		requestLogger(s.logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)
	router.SetupRoutes(r, s, s.notifier, s.limit)
	return r
}

// Serve loads the document, starts the server and blocks until the context
// is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Load(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	s.logger.Info("serving document", slog.String("path", s.path), slog.String("addr", ln.Addr().String()))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watch {
		eg.Go(func() error {
			return s.watchFile(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down feed server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchFile reloads the document whenever its file is written or replaced.
func (s *Server) watchFile(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}
	// Writers replace the file by renaming, so watch the directory.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch document directory", slog.String("error", err.Error()))
		<-ctx.Done()
		return nil
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(reloadDebounce)

		case <-pending:
			pending = nil
			if err := s.Load(); err != nil {
				s.logger.Error("reload failed", slog.String("error", err.Error()))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}
