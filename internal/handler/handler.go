package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	customError "github.com/sahakari/ledger-engine/pkg/errors"
	"github.com/sahakari/ledger-engine/pkg/response"
)

// decodeAndValidate decodes a JSON body into dst and runs struct validation.
func decodeAndValidate(r *http.Request, validate *validator.Validate, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return customError.WrapValidation("invalid request body", err)
	}
	if err := validate.Struct(dst); err != nil {
		return customError.WrapValidation("request validation failed", err)
	}
	return nil
}

// pathUUID extracts a UUID path variable.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, customError.WrapValidation(name+" must be a valid UUID", err)
	}
	return id, nil
}

// respondError maps a service error onto the HTTP response envelope.
func respondError(w http.ResponseWriter, err error) {
	status := customError.HTTPStatus(err)

	var be *customError.BusinessError
	if errors.As(err, &be) {
		response.Error(w, status, be.Message, be.Err)
		return
	}

	response.Error(w, status, "internal error", err)
}
