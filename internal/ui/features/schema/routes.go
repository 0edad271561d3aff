// Package schema serves the generated document over HTTP.
package schema

import (
	"github.com/go-chi/chi/v5"

	"github.com/purin2/sql-practice-tutor/internal/ui/notifier"
)

// SetupRoutes registers the document feed routes.
func SetupRoutes(router chi.Router, src Source, notify *notifier.Notifier, defaultLimit int) {
	handlers := NewHandlers(src, notify, defaultLimit)

	router.Route("/api", func(r chi.Router) {
		r.Get("/schema", handlers.Schema)       // whole document
		r.Get("/tables", handlers.Tables)       // metadata only
		r.Get("/tables/{name}", handlers.Table) // one table, ?limit=
		r.Get("/updates", handlers.Updates)     // revision signals
	})
}
