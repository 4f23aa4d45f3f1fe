package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Dosada05/club-billing/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	granularity := query.Get("granularity")
	if granularity == "" {
		granularity = "day"
	}

	// window=0 — размер окна по умолчанию для выбранной гранулярности.
	windowSize := 0
	if windowStr := query.Get("window"); windowStr != "" {
		windowSize, err = strconv.Atoi(windowStr)
		if err != nil || windowSize < 0 {
			badRequestResponse(w, r, errors.New("invalid window parameter"))
			return
		}
	}

	buckets, err := h.reportService.RevenueReport(r.Context(), clubID, granularity, windowSize)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"buckets": buckets}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReportHandler) ServiceDistribution(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	to := time.Now()
	from := to.AddDate(0, -1, 0)

	if fromStr := query.Get("from"); fromStr != "" {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid from parameter, expected RFC3339"))
			return
		}
	}
	if toStr := query.Get("to"); toStr != "" {
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid to parameter, expected RFC3339"))
			return
		}
	}

	slices, err := h.reportService.ServiceDistribution(r.Context(), clubID, from, to)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"slices": slices}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReportHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	clubID, err := resolveClubID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.reportService.DashboardStats(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"stats": stats}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
