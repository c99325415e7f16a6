package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"cloud-disk/internal/model"
	"cloud-disk/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrInvalidCredentials) || errors.Is(err, model.ErrUnauthorized) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid credentials"
	} else if errors.Is(err, model.ErrTokenExpired) {
		status = http.StatusUnauthorized
		body.Code = "TOKEN_EXPIRED"
		body.Message = "Token expired"
	} else if errors.Is(err, model.ErrEntryNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Entry not found"
	} else if errors.Is(err, model.ErrNotAFolder) {
		status = http.StatusBadRequest
		body.Code = "NOT_A_FOLDER"
		body.Message = "Target is not a folder"
	} else if errors.Is(err, model.ErrNameConflict) {
		status = http.StatusConflict
		body.Code = "NAME_CONFLICT"
		body.Message = "Name already exists in folder"
	} else if errors.Is(err, model.ErrInvalidCursor) {
		status = http.StatusBadRequest
		body.Code = "INVALID_CURSOR"
		body.Message = "Pagination cursor is invalid"
	} else if errors.Is(err, model.ErrMoveCycle) {
		status = http.StatusBadRequest
		body.Code = "MOVE_CYCLE"
		body.Message = "Cannot move a folder into itself or its descendants"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func decodeBody(r *http.Request, into any) error {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return apierror.New("BAD_REQUEST", "request body is not valid JSON", err.Error(), http.StatusBadRequest)
	}
	return nil
}
