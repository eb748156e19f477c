package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/common"
	"github.com/dmitrijs2005/camfeed/internal/metrics"
	"github.com/dmitrijs2005/camfeed/internal/server/extract"
	"github.com/dmitrijs2005/camfeed/internal/server/models"
	"github.com/gorilla/mux"
)

const defaultHistoryLimit = 50

// ingest streams the body through the extractor and reconciles each record
// as soon as its container closes. Processing stops at the first error;
// records reconciled before it stay stored and are counted in X-Records.
func (s *HTTPServer) ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := loggerFrom(ctx, s.logger)

	var src io.Reader = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	var raw *bytes.Buffer
	if s.archiver != nil {
		raw = &bytes.Buffer{}
		src = io.TeeReader(src, raw)
	}

	var (
		stored int
		serial string
		failed error
	)
	for rec, err := range extract.NewExtractor(src, s.schema, s.normalizer).All() {
		if err != nil {
			failed = err
			break
		}
		sn, _ := rec.Serial()
		if serial == "" {
			serial = sn
		}
		logger.Debug(ctx, "record extracted", "sn", sn, "observed_at", rec.ObservedAt)

		out, err := s.reconciler.Reconcile(ctx, rec)
		if err != nil {
			failed = err
			break
		}
		logger.Debug(ctx, "record stored", "sn", sn, "history", out.History.String(), "latest", out.Latest.String())
		stored++
	}

	if raw != nil {
		s.archive(ctx, requestIDFrom(ctx), serial, raw.Bytes())
	}

	w.Header().Set("X-Records", strconv.Itoa(stored))

	if failed != nil {
		status := statusFor(failed)
		if status == http.StatusBadRequest {
			metrics.ParseErrors.Inc()
		}
		logger.Warn(ctx, "ingestion failed", "status", status, "records", stored, "error", failed)
		writeText(w, status, http.StatusText(status)+"\n")
		return
	}

	writeText(w, http.StatusOK, "OK\n")
}

func (s *HTTPServer) archive(ctx context.Context, reqID, serial string, body []byte) {
	timeout := s.opts.ArchiveTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.archiver.Archive(ctx, reqID, serial, body); err != nil {
		metrics.ArchiveFailures.Inc()
		loggerFrom(ctx, s.logger).Warn(ctx, "archive failed", "error", err)
	}
}

// statusFor maps an ingestion error onto an HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrStoreTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.Ping(r.Context()); err != nil {
		loggerFrom(r.Context(), s.logger).Error(r.Context(), "Health check failed", "error", err)
		writeText(w, http.StatusServiceUnavailable, "Service Unavailable\n")
		return
	}
	writeText(w, http.StatusOK, "ok\n")
}

// rowResponse is the JSON shape of a stored row.
type rowResponse struct {
	SerialNumber string         `json:"sn"`
	ObservedAt   string         `json:"observed_at"`
	Values       map[string]any `json:"values"`
}

func toResponse(row models.Row) rowResponse {
	return rowResponse{SerialNumber: row.SerialNumber, ObservedAt: row.ObservedAt, Values: row.Values}
}

func (s *HTTPServer) getLatest(w http.ResponseWriter, r *http.Request) {
	sn := mux.Vars(r)["sn"]

	row, err := s.devices.Latest(r.Context(), sn)
	if err != nil {
		s.lookupFailed(w, r, sn, err)
		return
	}
	s.writeJSON(w, r, toResponse(*row))
}

func (s *HTTPServer) getHistory(w http.ResponseWriter, r *http.Request) {
	sn := mux.Vars(r)["sn"]

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeText(w, http.StatusBadRequest, "invalid limit\n")
			return
		}
		limit = n
	}

	rows, err := s.devices.History(r.Context(), sn, limit)
	if err != nil {
		s.lookupFailed(w, r, sn, err)
		return
	}

	resp := make([]rowResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toResponse(row))
	}
	s.writeJSON(w, r, resp)
}

func (s *HTTPServer) lookupFailed(w http.ResponseWriter, r *http.Request, sn string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		loggerFrom(r.Context(), s.logger).Error(r.Context(), "device lookup failed", "sn", sn, "error", err)
	}
	writeText(w, status, http.StatusText(status)+"\n")
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFrom(r.Context(), s.logger).Error(r.Context(), "Failed to encode response", "error", err)
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusMethodNotAllowed, "Method Not Allowed\n")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
