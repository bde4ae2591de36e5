package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/service"
	customError "github.com/sahakari/ledger-engine/pkg/errors"
	"github.com/sahakari/ledger-engine/pkg/response"
	"github.com/sahakari/ledger-engine/pkg/utils"
)

type LedgerHandler struct {
	service   *service.LedgerService
	reports   *service.ReportService
	validator *validator.Validate
}

func NewLedgerHandler(ledgerService *service.LedgerService, reportService *service.ReportService) *LedgerHandler {
	return &LedgerHandler{
		service:   ledgerService,
		reports:   reportService,
		validator: validator.New(),
	}
}

func (h *LedgerHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		respondError(w, err)
		return
	}

	var request domain.CreateEntryRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.Append(r.Context(), memberID, &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, result)
}

func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		respondError(w, err)
		return
	}

	query := r.URL.Query()
	page := intQuery(query.Get("page"), 1)
	pageSize := intQuery(query.Get("page_size"), 20)

	var from, to *time.Time
	if raw := query.Get("from"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			respondError(w, customError.WrapInvalidDate(err))
			return
		}
		from = &parsed
	}
	if raw := query.Get("to"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			respondError(w, customError.WrapInvalidDate(err))
			return
		}
		to = &parsed
	}

	result, err := h.service.ListWithRunningBalance(r.Context(), memberID, page, pageSize, from, to)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *LedgerHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryId")
	if err != nil {
		respondError(w, err)
		return
	}

	var request domain.UpdateEntryRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.UpdateEntry(r.Context(), entryID, &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *LedgerHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryId")
	if err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.DeleteEntry(r.Context(), entryID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *LedgerHandler) MemberSummary(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		respondError(w, err)
		return
	}

	summary, err := h.reports.MemberSummary(r.Context(), memberID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, summary)
}

func intQuery(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
