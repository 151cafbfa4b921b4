package csv

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"
	"github.com/w-h-a/tabular/codec"
	"github.com/w-h-a/tabular/internal/service/ingest"
	"github.com/w-h-a/tabular/internal/service/lookup"
	"github.com/w-h-a/tabular/record"
	httpserver "github.com/w-h-a/tabular/server/http"
)

const (
	contentTypeJSON = "application/json"
	contentTypeCSV  = "text/csv"
)

type JSONError struct {
	Err string `json:"err"`
}

type Handler struct {
	ingest  *ingest.Service
	lookup  *lookup.Service
	codec   *codec.Codec
	maxBody int64
}

func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/csv", h.Transform).Methods(http.MethodPost).Name("PostCSV")
	router.HandleFunc("/csv/{id}", h.Query).Methods(http.MethodGet).Name("GetCSV")
}

// POST /csv
func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer r.Body.Close()

	body := r.Body
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	payload, err := io.ReadAll(body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read request body",
			"type", ingest.KindDecode,
			"request_id", httpserver.RequestIDFrom(ctx),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, JSONError{Err: fmt.Sprintf("type=%s error=%v", ingest.KindDecode, err)})
		return
	}

	result, err := h.ingest.Ingest(ctx, payload)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, JSONError{Err: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result.Records)
}

// GET /csv/{id}
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	rec, err := h.lookup.Lookup(ctx, id)
	if err != nil {
		if !errors.Is(err, lookup.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to query record",
				"type", lookup.KindQuery,
				"id", id,
				"request_id", httpserver.RequestIDFrom(ctx),
				"error", err,
			)
		}
		writeJSON(w, http.StatusNotFound, []record.Record{})
		return
	}

	if acceptsCSV(r) {
		out, err := h.codec.Encode(slices.Values([]record.Record{rec}))
		if err != nil {
			slog.ErrorContext(ctx, "failed to encode record", "id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, JSONError{Err: err.Error()})
			return
		}
		w.Header().Set("Content-Type", contentTypeCSV)
		w.WriteHeader(http.StatusOK)
		w.Write(out)
		return
	}

	writeJSON(w, http.StatusOK, []record.Record{rec})
}

func acceptsCSV(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case contentTypeCSV:
			return true
		case contentTypeJSON, "*/*":
			return false
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func NewHandler(
	ingestService *ingest.Service,
	lookupService *lookup.Service,
	c *codec.Codec,
	maxBody int64,
) *Handler {
	if c == nil {
		c = codec.New()
	}
	return &Handler{
		ingest:  ingestService,
		lookup:  lookupService,
		codec:   c,
		maxBody: maxBody,
	}
}
