package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sahakari/ledger-engine/internal/domain"
	"github.com/sahakari/ledger-engine/internal/service"
	"github.com/sahakari/ledger-engine/pkg/response"
)

type MemberHandler struct {
	service   *service.MemberService
	validator *validator.Validate
}

func NewMemberHandler(service *service.MemberService) *MemberHandler {
	return &MemberHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateMemberRequest
	if err := decodeAndValidate(r, h.validator, &request); err != nil {
		respondError(w, err)
		return
	}

	member, err := h.service.Create(r.Context(), &request)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Created(w, member)
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		respondError(w, err)
		return
	}

	member, err := h.service.Get(r.Context(), memberID)
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, member)
}

func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, members)
}

func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathUUID(r, "memberId")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), memberID); err != nil {
		respondError(w, err)
		return
	}

	response.Success(w, map[string]string{"deleted": memberID.String()})
}
