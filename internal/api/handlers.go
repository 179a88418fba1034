package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gabzkie30/sendgrid-email-automation/internal/events"
	"github.com/gabzkie30/sendgrid-email-automation/internal/export"
	"github.com/gabzkie30/sendgrid-email-automation/internal/metrics"
	"github.com/gabzkie30/sendgrid-email-automation/internal/pkg/httputil"
	"github.com/gabzkie30/sendgrid-email-automation/internal/pkg/logger"
	"github.com/gabzkie30/sendgrid-email-automation/internal/session"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	store     *session.Store
	maxUpload int64
}

// NewHandlers creates the handler set.
func NewHandlers(store *session.Store, maxUpload int64) *Handlers {
	return &Handlers{store: store, maxUpload: maxUpload}
}

// HandleHealth reports liveness and the live session count.
// GET /health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{
		"status":   "ok",
		"sessions": h.store.Len(),
	})
}

// sessionResponse is the envelope returned on upload: the new session id,
// the filter options derived from the data, and the unfiltered metrics.
type sessionResponse struct {
	SessionID   string             `json:"session_id"`
	HasData     bool               `json:"has_data"`
	SkippedRows int                `json:"skipped_rows"`
	Options     optionsResponse    `json:"options"`
	Metrics     metrics.Overall    `json:"metrics"`
	Benchmarks  metrics.Benchmarks `json:"benchmarks"`
}

type optionsResponse struct {
	MinDate    events.Day `json:"min_date"`
	MaxDate    events.Day `json:"max_date"`
	Subjects   []string   `json:"subjects"`
	Recipients []string   `json:"recipients"`
}

func snapshotOptions(snap *session.Snapshot) optionsResponse {
	return optionsResponse{
		MinDate:    snap.MinDay,
		MaxDate:    snap.MaxDay,
		Subjects:   snap.Subjects,
		Recipients: snap.Recipients,
	}
}

// HandleCreateSession accepts a multipart CSV upload, runs the
// normalize/reconcile pipeline once, and registers the snapshot as a new
// analysis session.
// POST /api/sessions
func (h *Handlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	result, err := events.NormalizeCSV(file)
	if err != nil {
		var schemaErr *events.SchemaError
		if errors.As(err, &schemaErr) {
			httputil.Unprocessable(w, "schema_error", schemaErr.Error(), map[string]any{
				"missing_columns": schemaErr.Missing,
			})
			return
		}
		httputil.BadRequest(w, fmt.Sprintf("cannot read file: %v", err))
		return
	}

	reconciled := events.Reconcile(result.Events)
	snap := session.NewSnapshot(reconciled, result.Skipped)
	id := h.store.Create(snap)

	overall := metrics.Compute(snap.Events)
	logger.Info("session created",
		"session_id", id,
		"file", header.Filename,
		"events", len(snap.Events),
		"skipped", snap.Skipped,
		"processed", overall.TotalProcessed,
	)

	httputil.Created(w, sessionResponse{
		SessionID:   id,
		HasData:     snap.HasData(),
		SkippedRows: snap.Skipped,
		Options:     snapshotOptions(snap),
		Metrics:     overall,
		Benchmarks:  metrics.Classify(overall),
	})
}

// HandleReplaceSession runs the pipeline over a fresh upload and swaps the
// session's snapshot atomically. Derived views recompute from the new data
// on the next read.
// PUT /api/sessions/{sessionID}
func (h *Handlers) HandleReplaceSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, ok := h.store.Get(id); !ok {
		httputil.NotFound(w, "unknown or expired session")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "file is required")
		return
	}
	defer file.Close()

	result, err := events.NormalizeCSV(file)
	if err != nil {
		var schemaErr *events.SchemaError
		if errors.As(err, &schemaErr) {
			httputil.Unprocessable(w, "schema_error", schemaErr.Error(), map[string]any{
				"missing_columns": schemaErr.Missing,
			})
			return
		}
		httputil.BadRequest(w, fmt.Sprintf("cannot read file: %v", err))
		return
	}

	snap := session.NewSnapshot(events.Reconcile(result.Events), result.Skipped)
	if !h.store.Replace(id, snap) {
		httputil.NotFound(w, "unknown or expired session")
		return
	}

	overall := metrics.Compute(snap.Events)
	logger.Info("session replaced",
		"session_id", id,
		"file", header.Filename,
		"events", len(snap.Events),
		"skipped", snap.Skipped,
	)

	httputil.OK(w, sessionResponse{
		SessionID:   id,
		HasData:     snap.HasData(),
		SkippedRows: snap.Skipped,
		Options:     snapshotOptions(snap),
		Metrics:     overall,
		Benchmarks:  metrics.Classify(overall),
	})
}

// HandleDeleteSession ends an analysis session and releases its snapshot.
// DELETE /api/sessions/{sessionID}
func (h *Handlers) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	h.store.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

// HandleOptions returns the filter options observed in the session's data.
// GET /api/sessions/{sessionID}/options
func (h *Handlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.getSnapshot(w, r)
	if !ok {
		return
	}
	httputil.OK(w, snapshotOptions(snap))
}

// HandleMetrics computes overall metrics over the session snapshot with the
// query-string filters applied.
// GET /api/sessions/{sessionID}/metrics?start=&end=&date=&subjects=&exclude=
func (h *Handlers) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.getSnapshot(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	filtered := events.Apply(snap.Events, filter)
	overall := metrics.Compute(filtered)
	httputil.OK(w, map[string]any{
		"has_data":   overall.HasData(),
		"metrics":    overall,
		"benchmarks": metrics.Classify(overall),
	})
}

// HandleDaily computes the per-day pivot over the filtered snapshot.
// GET /api/sessions/{sessionID}/daily
func (h *Handlers) HandleDaily(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.getSnapshot(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	rows := metrics.ComputeDaily(events.Apply(snap.Events, filter))
	httputil.OK(w, map[string]any{
		"has_data": len(rows) > 0,
		"days":     rows,
	})
}

// HandleExportSummary streams the summary table as a spreadsheet download.
// GET /api/sessions/{sessionID}/export/summary?format=xlsx|csv
func (h *Handlers) HandleExportSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.getSnapshot(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	overall := metrics.Compute(events.Apply(snap.Events, filter))
	h.writeExport(w, r, "summary", export.SummaryTable(overall))
}

// HandleExportDaily streams the daily pivot as a spreadsheet download.
// GET /api/sessions/{sessionID}/export/daily?format=xlsx|csv
func (h *Handlers) HandleExportDaily(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.getSnapshot(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	rows := metrics.ComputeDaily(events.Apply(snap.Events, filter))
	h.writeExport(w, r, "daily_data", export.DailyTable(rows))
}

func (h *Handlers) writeExport(w http.ResponseWriter, r *http.Request, kind string, table export.Table) {
	if r.URL.Query().Get("format") == "csv" {
		httputil.Attachment(w, export.Filename(kind, "csv"), export.CSVContentType)
		if err := export.WriteCSV(w, table); err != nil {
			logger.Error("csv export failed", "kind", kind, "error", err.Error())
		}
		return
	}

	httputil.Attachment(w, export.Filename(kind, "xlsx"), export.XLSXContentType)
	if err := export.WriteXLSX(w, table); err != nil {
		logger.Error("xlsx export failed", "kind", kind, "error", err.Error())
	}
}

func (h *Handlers) getSnapshot(w http.ResponseWriter, r *http.Request) (*session.Snapshot, bool) {
	id := chi.URLParam(r, "sessionID")
	snap, ok := h.store.Get(id)
	if !ok {
		httputil.NotFound(w, "unknown or expired session")
		return nil, false
	}
	return snap, true
}

// parseFilter builds an event filter from query parameters. `date` is a
// single-day drill-down and sets both bounds; it cannot be combined with
// `start`/`end`.
func parseFilter(r *http.Request) (events.Filter, error) {
	q := r.URL.Query()
	var f events.Filter

	if date := q.Get("date"); date != "" {
		if q.Get("start") != "" || q.Get("end") != "" {
			return f, fmt.Errorf("date cannot be combined with start/end")
		}
		day, err := events.ParseDay(date)
		if err != nil {
			return f, fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
		}
		f.Start, f.End = &day, &day
	}

	if start := q.Get("start"); start != "" {
		day, err := events.ParseDay(start)
		if err != nil {
			return f, fmt.Errorf("invalid start %q: want YYYY-MM-DD", start)
		}
		f.Start = &day
	}
	if end := q.Get("end"); end != "" {
		day, err := events.ParseDay(end)
		if err != nil {
			return f, fmt.Errorf("invalid end %q: want YYYY-MM-DD", end)
		}
		f.End = &day
	}
	if f.Start != nil && f.End != nil && *f.Start > *f.End {
		return f, fmt.Errorf("start %s is after end %s", *f.Start, *f.End)
	}

	f.Subjects = q["subjects"]
	f.ExcludeRecipients = q["exclude"]
	return f, nil
}
