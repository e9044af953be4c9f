package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/bcnelson/addrscope/internal/bulk"
	"github.com/bcnelson/addrscope/internal/compare"
	"github.com/bcnelson/addrscope/internal/domain"
	"github.com/bcnelson/addrscope/internal/service"
	"github.com/bcnelson/addrscope/internal/validation"
)

// InspectHandler handles the stateless pipeline endpoints.
type InspectHandler struct {
	svc *service.InspectorService
}

// NewInspectHandler creates a new InspectHandler.
func NewInspectHandler(svc *service.InspectorService) *InspectHandler {
	return &InspectHandler{svc: svc}
}

// InspectResponse is a batch plus the results left after optional filters.
type InspectResponse struct {
	*domain.Batch
	Filtered []domain.AnalysisResult `json:"filtered,omitempty"`
}

// Split splits raw input into entries.
func (h *InspectHandler) Split(w http.ResponseWriter, r *http.Request) {
	var req domain.SplitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	limits := domain.SplitOptions{SoftLimit: req.SoftLimit, HardLimit: req.HardLimit}
	if errs := validation.ValidateLimits(limits); errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	respondJSON(w, http.StatusOK, h.svc.Split(req.Input, limits))
}

// Classify assigns an entry type to each entry.
func (h *InspectHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req domain.ClassifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Entries == nil {
		respondValidationError(w, "entries", "", "entries is required")
		return
	}

	respondJSON(w, http.StatusOK, bulk.ClassifyAll(req.Entries))
}

// Compatibility reports whether two entry types can be compared.
func (h *InspectHandler) Compatibility(w http.ResponseWriter, r *http.Request) {
	a, b := r.URL.Query().Get("a"), r.URL.Query().Get("b")

	var errs validation.ValidationErrors
	if !domain.EntryType(a).Valid() {
		errs.Add("a", a, "must be an entry type")
	}
	if !domain.EntryType(b).Valid() {
		errs.Add("b", b, "must be an entry type")
	}
	if errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	respondJSON(w, http.StatusOK, compare.CanCompare(domain.EntryType(a), domain.EntryType(b)))
}

// Compare compares two raw entries, or two analysis results.
func (h *InspectHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req domain.CompareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ResultA == nil && req.ResultB == nil {
		var errs validation.ValidationErrors
		if strings.TrimSpace(req.A) == "" {
			errs.Add("a", req.A, "a is required")
		}
		if strings.TrimSpace(req.B) == "" {
			errs.Add("b", req.B, "b is required")
		}
		if errs.HasErrors() {
			respondValidationErrors(w, errs)
			return
		}

		result, err := h.svc.CompareEntries(r.Context(), req.A, req.B)
		if err != nil {
			handleError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
		return
	}

	var errs validation.ValidationErrors
	if req.ResultA == nil {
		errs.Add("resultA", "", "resultA is required")
	}
	if req.ResultB == nil {
		errs.Add("resultB", "", "resultB is required")
	}
	if err := validation.ValidateEntryType(string(req.TypeA)); err != nil || req.TypeA == domain.FilterAll {
		errs.Add("typeA", string(req.TypeA), "must be an entry type")
	}
	if err := validation.ValidateEntryType(string(req.TypeB)); err != nil || req.TypeB == domain.FilterAll {
		errs.Add("typeB", string(req.TypeB), "must be an entry type")
	}
	if errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	typeA, typeB := req.TypeA, req.TypeB
	if typeA == "" {
		typeA = bulk.TypeOf(req.ResultA)
	}
	if typeB == "" {
		typeB = bulk.TypeOf(req.ResultB)
	}
	respondJSON(w, http.StatusOK, h.svc.Comparer().CompareItems(req.ResultA, req.ResultB, typeA, typeB))
}

// Inspect runs the full pipeline on raw input.
func (h *InspectHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	var req domain.InspectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	limits := domain.SplitOptions{SoftLimit: req.SoftLimit, HardLimit: req.HardLimit}
	errs := validation.ValidateLimits(limits)
	if req.Filters != nil {
		errs = append(errs, validation.ValidateFilters(*req.Filters)...)
	}
	if errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	batch, err := h.svc.Inspect(r.Context(), req.Input, limits)
	if err != nil {
		handleError(w, err)
		return
	}

	resp := InspectResponse{Batch: batch}
	if req.Filters != nil {
		resp.Filtered = bulk.FilterResults(batch.Results, *req.Filters)
	}
	respondJSON(w, http.StatusOK, resp)
}

// Analyze runs multi-item analysis over a batch of results. Types default
// to each result's own type when omitted entirely.
func (h *InspectHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	types := req.Types
	if len(types) == 0 {
		types = make([]domain.EntryType, len(req.Results))
		for i := range req.Results {
			types[i] = bulk.TypeOf(&req.Results[i])
		}
	}

	analysis := compare.AnalyzeMultipleItems(req.Results, types)
	if analysis == nil {
		handleError(w, domain.ErrBatchTooSmall)
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

// Filter narrows a batch of results.
func (h *InspectHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req domain.FilterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs := validation.ValidateFilters(req.Filters); errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	respondJSON(w, http.StatusOK, bulk.FilterResults(req.Results, req.Filters))
}

// Summary counts a batch of results.
func (h *InspectHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req domain.ResultsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	respondJSON(w, http.StatusOK, bulk.Summarize(req.Results))
}

// Export renders a batch of results in the format named by ?format=.
func (h *InspectHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if err := validation.ValidateExportFormat(format, bulk.Formats()); err != nil {
		respondValidationError(w, "format", format, err.Error())
		return
	}

	var req domain.ResultsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exporter, err := bulk.ExporterFor(format)
	if err != nil {
		handleError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := exporter.Export(req.Results, &buf); err != nil {
		handleError(w, err)
		return
	}
	writeExport(w, exporter, "addrscope-results", buf.Bytes())
}

// writeExport writes a rendered export as a downloadable file.
func writeExport(w http.ResponseWriter, exporter bulk.Exporter, name string, body []byte) {
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+exporter.Extension()+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
