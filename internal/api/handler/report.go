package handler

import (
	"bytes"
	"net/http"

	"github.com/bcnelson/addrscope/internal/bulk"
	"github.com/bcnelson/addrscope/internal/domain"
	"github.com/bcnelson/addrscope/internal/service"
	"github.com/bcnelson/addrscope/internal/validation"
	"github.com/go-chi/chi/v5"
)

// ReportHandler handles saved report endpoints.
type ReportHandler struct {
	svc *service.InspectorService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc *service.InspectorService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Create inspects the input and saves it as a report.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	report, err := h.svc.SaveReport(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	SetReportETag(w, report)
	respondJSON(w, http.StatusCreated, report)
}

// List lists saved reports without their batches.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.svc.ListReports(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, reports)
}

// Get returns a saved report.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}

	SetReportETag(w, report)
	respondJSON(w, http.StatusOK, report)
}

// Update renames a report. An If-Match header must carry the current ETag
// when present.
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req domain.UpdateReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.svc.GetReport(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	if !CheckReportIfMatch(r, existing) {
		RespondPreconditionFailed(w, reportResource, existing)
		return
	}

	report, err := h.svc.RenameReport(r.Context(), id, req)
	if err != nil {
		handleError(w, err)
		return
	}

	SetReportETag(w, report)
	respondJSON(w, http.StatusOK, report)
}

// Delete deletes a report.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if r.Header.Get("If-Match") != "" {
		existing, err := h.svc.GetReport(r.Context(), id)
		if err != nil {
			handleError(w, err)
			return
		}
		if !CheckReportIfMatch(r, existing) {
			RespondPreconditionFailed(w, reportResource, existing)
			return
		}
	}

	if err := h.svc.DeleteReport(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export renders a saved report in the format named by ?format=.
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := r.URL.Query().Get("format")
	if err := validation.ValidateExportFormat(format, bulk.Formats()); err != nil {
		respondValidationError(w, "format", format, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := h.svc.ExportReport(r.Context(), id, format, &buf); err != nil {
		handleError(w, err)
		return
	}

	exporter, err := bulk.ExporterFor(format)
	if err != nil {
		handleError(w, err)
		return
	}
	writeExport(w, exporter, "report-"+id, buf.Bytes())
}
