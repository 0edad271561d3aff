package schema

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/purin2/sql-practice-tutor/internal/ui/notifier"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// RevisionHeader carries the revision of the document a response was
// built from.
const RevisionHeader = "X-Document-Revision"

// Source provides the current document and its revision. The revision
// grows every time the document is reloaded.
type Source interface {
	Document() (*core.Document, uint64)
}

// TableSummary describes a table without its rows.
type TableSummary struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Columns     []core.Column   `json:"columns"`
	Relations   []core.Relation `json:"relations"`
	Rows        int             `json:"rows"`
}

// Handlers provides HTTP handlers for the document feed.
type Handlers struct {
	src          Source
	notifier     *notifier.Notifier
	defaultLimit int
}

// NewHandlers creates a new Handlers instance. defaultLimit caps the rows
// of /api/tables/{name} when the request gives no limit; 0 returns all.
func NewHandlers(src Source, notify *notifier.Notifier, defaultLimit int) *Handlers {
	return &Handlers{
		src:          src,
		notifier:     notify,
		defaultLimit: defaultLimit,
	}
}

// Schema writes the whole document, byte-identical to the file on disk.
func (h *Handlers) Schema(w http.ResponseWriter, _ *http.Request) {
	doc, rev := h.src.Document()
	setHeaders(w, rev)
	if err := core.Encode(w, doc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Tables lists table metadata and row counts.
func (h *Handlers) Tables(w http.ResponseWriter, _ *http.Request) {
	doc, rev := h.src.Document()

	summaries := make([]TableSummary, len(doc.Tables))
	for i, t := range doc.Tables {
		summaries[i] = TableSummary{
			Name:        t.Name,
			Description: t.Description,
			Columns:     t.Columns,
			Relations:   t.Relations,
			Rows:        len(t.SampleData),
		}
	}
	writeJSON(w, rev, http.StatusOK, summaries)
}

// Table writes one table. ?limit=n keeps the first n rows.
func (h *Handlers) Table(w http.ResponseWriter, r *http.Request) {
	doc, rev := h.src.Document()

	name := chi.URLParam(r, "name")
	t, ok := doc.Table(name)
	if !ok {
		writeError(w, rev, http.StatusNotFound, fmt.Sprintf("table %q not found", name))
		return
	}

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, rev, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	out := *t
	if limit > 0 && len(out.SampleData) > limit {
		out.SampleData = out.SampleData[:limit]
	}
	writeJSON(w, rev, http.StatusOK, out)
}

// Updates streams the document revision as a Datastar signal patch, once on
// connect and again each time the document changes.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)

	// The first event carries the revision the client starts from.
	_, rev := h.src.Document()
	if err := sendRevision(sse, rev); err != nil {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case rev, ok := <-updates:
			if !ok {
				return
			}
			if err := sendRevision(sse, rev); err != nil {
				return
			}
		}
	}
}

func sendRevision(sse *datastar.ServerSentEventGenerator, rev uint64) error {
	return sse.MarshalAndPatchSignals(map[string]uint64{"revision": rev})
}

func setHeaders(w http.ResponseWriter, rev uint64) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set(RevisionHeader, strconv.FormatUint(rev, 10))
}

func writeJSON(w http.ResponseWriter, rev uint64, status int, v any) {
	setHeaders(w, rev)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, rev uint64, status int, msg string) {
	writeJSON(w, rev, status, map[string]string{"error": msg})
}
