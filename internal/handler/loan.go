package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/service"
	"github.com/sahakari/ledger-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(service *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *LoanHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		respondError(w, err)
		return
	}

	loan, err := h.service.CreateRequest(r.Context(), &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, loan)
}

func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		respondError(w, err)
		return
	}

	var request domain.ApproveLoanRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.Approve(r.Context(), loanID, &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *LoanHandler) Reject(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		respondError(w, err)
		return
	}

	loan, err := h.service.Reject(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		respondError(w, err)
		return
	}

	var request domain.LoanPaymentRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.RecordPayment(r.Context(), loanID, &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), loanID); err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, map[string]string{"deleted": loanID.String()})
}

func (h *LoanHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		respondError(w, err)
		return
	}

	loans, err := h.service.ListByMember(r.Context(), memberID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, loans)
}
