package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/skhapre/dashboard-app/database"
)

// TodoHandler exposes the quick-capture todo list. Promoting a todo to a
// board task is a client-side flow: POST the todo's text to /tasks, then
// delete the todo here.
type TodoHandler struct {
	todos *database.TodoService
}

func NewTodoHandler(todos *database.TodoService) *TodoHandler {
	return &TodoHandler{
		todos: todos,
	}
}

// RegisterRoutes attaches the todo routes to a router mounted at /api.
func (h *TodoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/todos", h.List).Methods("GET")
	r.HandleFunc("/todos", h.Create).Methods("POST")
	r.HandleFunc("/todos", h.ClearCompleted).Methods("DELETE")
	r.HandleFunc("/todos/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/todos/{id}", h.Delete).Methods("DELETE")
	r.HandleFunc("/todos/{id}/toggle", h.Toggle).Methods("PATCH")
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	todos, err := h.todos.List(r.Context(), owner)
	if err != nil {
		respondStoreErr(w, err)
		return
	}
	if todos == nil {
		todos = []database.Todo{}
	}

	respondData(w, http.StatusOK, todos)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request format")
		return
	}

	todo, err := h.todos.Create(r.Context(), owner, body.Text)
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	respondData(w, http.StatusCreated, todo)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request format")
		return
	}

	todo, err := h.todos.Update(r.Context(), owner, mux.Vars(r)["id"], body.Text)
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	respondData(w, http.StatusOK, todo)
}

func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	todo, err := h.todos.Toggle(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	respondData(w, http.StatusOK, todo)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	if err := h.todos.Delete(r.Context(), owner, mux.Vars(r)["id"]); err != nil {
		respondStoreErr(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]any{"success": true})
}

func (h *TodoHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	cleared, err := h.todos.ClearCompleted(r.Context(), owner)
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   cleared,
	})
}
