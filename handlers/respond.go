package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/skhapre/dashboard-app/database"
)

// Every response uses the {success, data?, error?} envelope the frontend
// expects; non-task routes keep the same convention.

func respond(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, status int, data any) {
	respond(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

func respondErr(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}

// respondStoreErr maps the store's error taxonomy onto HTTP statuses:
// validation 400, not found 404, invalid state 409, anything else 500.
func respondStoreErr(w http.ResponseWriter, err error) {
	var validationErr *database.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondErr(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, database.ErrTaskNotFound),
		errors.Is(err, database.ErrRecordNotFound),
		errors.Is(err, database.ErrTodoNotFound):
		respondErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInvalidState):
		respondErr(w, http.StatusConflict, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		respondErr(w, http.StatusInternalServerError, "internal server error")
	}
}
