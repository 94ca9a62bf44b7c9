package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/suyanik/Einkauflist/internal/report"
)

type ReportHandler struct {
	aggregator *report.Aggregator
	logger     *slog.Logger
}

func NewReportHandler(aggregator *report.Aggregator, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{aggregator: aggregator, logger: logger}
}

// Monthly returns the spend report for one calendar month.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	year, errY := strconv.Atoi(r.URL.Query().Get("year"))
	month, errM := strconv.Atoi(r.URL.Query().Get("month"))
	if errY != nil || errM != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Yıl ve Ay parametreleri gerekli")
		return
	}

	result, err := h.aggregator.Monthly(year, month)
	if err != nil {
		h.logger.Error("monthly report", "year", year, "month", month, "error", err)
		writeError(w, http.StatusInternalServerError, "Rapor alınamadı")
		return
	}

	writeSuccess(w, map[string]any{
		"year":       result.Year,
		"month":      result.Month,
		"grandTotal": result.GrandTotal,
		"breakdown":  result.Breakdown,
	})
}
