package httputil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"skgov/pkg/errors"
)

// Envelope is the uniform JSON response body. Success responses carry
// data and an optional message; failures carry the coded error string.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// NewPagination derives page metadata from a total count.
func NewPagination(page, limit, total int) *Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Pagination{
		CurrentPage:  page,
		TotalPages:   pages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}

// WriteJSON writes a success envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Success: true, Data: data})
}

// WriteMessage writes a success envelope with a caller-facing message.
func WriteMessage(w http.ResponseWriter, status int, message string, data any) {
	writeEnvelope(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WritePage writes a success envelope with pagination metadata.
func WritePage(w http.ResponseWriter, data any, p *Pagination) {
	writeEnvelope(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: p})
}

// WriteError maps a coded error onto its HTTP status. Internal failure
// detail never reaches the client; the message is replaced with a generic
// line for CodeInternal.
func WriteError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	message := "internal server error"
	if code != errors.CodeInternal {
		var coded *errors.Error
		if stderrors.As(err, &coded) {
			message = coded.Message
		}
	}
	writeEnvelope(w, errors.HTTPStatus(code), Envelope{Success: false, Error: message})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
