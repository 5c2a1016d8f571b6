package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/skhapre/dashboard-app/database"
)

// SpaceHandler exposes the personal-space collections (notes, bookmarks,
// goals, journal, ideas, resources) as plain per-owner document CRUD. The
// task board never looks inside these documents.
type SpaceHandler struct {
	records *database.RecordService
}

func NewSpaceHandler(records *database.RecordService) *SpaceHandler {
	return &SpaceHandler{
		records: records,
	}
}

// RegisterRoutes attaches the personal-space routes to a router mounted at /api.
func (h *SpaceHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/space/{collection}", h.List).Methods("GET")
	r.HandleFunc("/space/{collection}", h.Create).Methods("POST")
	r.HandleFunc("/space/{collection}/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/space/{collection}/{id}", h.Delete).Methods("DELETE")
}

func (h *SpaceHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	records, err := h.records.List(r.Context(), owner, mux.Vars(r)["collection"])
	if err != nil {
		respondStoreErr(w, err)
		return
	}
	if records == nil {
		records = []database.Record{}
	}

	respondData(w, http.StatusOK, records)
}

func (h *SpaceHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request format")
		return
	}

	record, err := h.records.Create(r.Context(), owner, mux.Vars(r)["collection"], body)
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	respondData(w, http.StatusCreated, record)
}

func (h *SpaceHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request format")
		return
	}

	vars := mux.Vars(r)
	record, err := h.records.Update(r.Context(), owner, vars["collection"], vars["id"], body)
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	respondData(w, http.StatusOK, record)
}

func (h *SpaceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	vars := mux.Vars(r)
	if err := h.records.Delete(r.Context(), owner, vars["collection"], vars["id"]); err != nil {
		respondStoreErr(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]any{"success": true})
}
