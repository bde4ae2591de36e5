package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/service"
	"github.com/sahakari/ledger-engine/pkg/response"
)

type MaturityHandler struct {
	service   *service.MaturityService
	validator *validator.Validate
}

func NewMaturityHandler(service *service.MaturityService) *MaturityHandler {
	return &MaturityHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *MaturityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateMaturityRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.service.Create(r.Context(), &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, result)
}

func (h *MaturityHandler) Get(w http.ResponseWriter, r *http.Request) {
	recordID, err := pathUUID(r, "recordId")
	if err != nil {
		respondError(w, err)
		return
	}

	view, err := h.service.Get(r.Context(), recordID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, view)
}

func (h *MaturityHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		respondError(w, err)
		return
	}

	views, err := h.service.ListByMember(r.Context(), memberID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, views)
}

func (h *MaturityHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	recordID, err := pathUUID(r, "recordId")
	if err != nil {
		respondError(w, err)
		return
	}

	var request domain.SetMaturityStatusRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		respondError(w, err)
		return
	}

	view, err := h.service.SetStatus(r.Context(), recordID, request.Status)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, view)
}

func (h *MaturityHandler) SetOverride(w http.ResponseWriter, r *http.Request) {
	recordID, err := pathUUID(r, "recordId")
	if err != nil {
		respondError(w, err)
		return
	}

	var request domain.SetOverrideRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		respondError(w, err)
		return
	}

	view, err := h.service.SetManualOverride(r.Context(), recordID, request.AdjustedInterest)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, view)
}

func (h *MaturityHandler) ClearOverride(w http.ResponseWriter, r *http.Request) {
	recordID, err := pathUUID(r, "recordId")
	if err != nil {
		respondError(w, err)
		return
	}

	view, err := h.service.ClearOverride(r.Context(), recordID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, view)
}
