// Package router sets up HTTP routes for the document feed.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/purin2/sql-practice-tutor/internal/ui/features/schema"
	"github.com/purin2/sql-practice-tutor/internal/ui/notifier"
)

// SetupRoutes configures all routes of the feed.
func SetupRoutes(router chi.Router, src schema.Source, notify *notifier.Notifier, defaultLimit int) {
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	schema.SetupRoutes(router, src, notify, defaultLimit)
}
