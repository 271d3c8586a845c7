package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"funnybanny-backend/internal/ports"
	"funnybanny-backend/internal/repository"
	"funnybanny-backend/internal/server/authctx"
	"funnybanny-backend/internal/service"
)

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

const msgUnavailable = "The data store cannot be reached. Check the connection and try again."

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	writeMessage(w, status, "", payload)
}

// writeMessage is writeJSON with a human readable message alongside the data.
func writeMessage(w http.ResponseWriter, status int, message string, payload any) {
	if status >= 400 {
		writeRawJSON(w, status, apiResponse{
			Status:  "error",
			Message: message,
			Data:    payload,
			Error: &apiError{
				Code:   status,
				Status: http.StatusText(status),
			},
		})
		return
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "ok",
		Message: message,
		Data:    payload,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "error",
		Message: message,
		Data:    nil,
		Error: &apiError{
			Code:   status,
			Status: http.StatusText(status),
		},
	})
}

// writeServiceError maps service and store errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrNotLinked):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrAlreadyChecked):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidSettings),
		errors.Is(err, service.ErrInvalidInvoice),
		errors.Is(err, service.ErrInvalidRecord),
		errors.Is(err, service.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// currentUser writes 401 and returns nil when the request carries no user.
func currentUser(w http.ResponseWriter, r *http.Request) *authctx.CurrentUser {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return user
}

func callerOf(u *authctx.CurrentUser) service.Caller {
	return service.Caller{AccountID: u.AccountID, Role: u.Role, LinkID: u.LinkID}
}
