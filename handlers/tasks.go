package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/skhapre/dashboard-app/database"
	"github.com/skhapre/dashboard-app/services"
)

// TaskHandler exposes the task board REST surface.
type TaskHandler struct {
	tasks *database.TaskService
	hub   *services.Hub
}

func NewTaskHandler(tasks *database.TaskService, hub *services.Hub) *TaskHandler {
	return &TaskHandler{
		tasks: tasks,
		hub:   hub,
	}
}

// RegisterRoutes attaches the task routes to a router mounted at /api. The
// recycle-bin paths are registered before the {id} paths so "recyclebin" is
// never captured as a task id.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/tasks", h.GetBoard).Methods("GET")
	r.HandleFunc("/tasks", h.CreateTask).Methods("POST")
	r.HandleFunc("/tasks/recyclebin", h.ListDeleted).Methods("GET")
	r.HandleFunc("/tasks/recyclebin/clear", h.PurgeAll).Methods("DELETE")
	r.HandleFunc("/tasks/{id}", h.UpdateTask).Methods("PUT")
	r.HandleFunc("/tasks/{id}", h.SoftDelete).Methods("DELETE")
	r.HandleFunc("/tasks/{id}/move", h.MoveTask).Methods("PUT")
	r.HandleFunc("/tasks/{id}/restore", h.Restore).Methods("PUT")
	r.HandleFunc("/tasks/{id}/permanent", h.Purge).Methods("DELETE")
}

func (h *TaskHandler) notify(owner, eventType, taskID string) {
	if h.hub == nil {
		return
	}
	h.hub.Broadcast(services.BoardEvent{
		Type:   eventType,
		TaskID: taskID,
		Owner:  owner,
	})
}

// GetBoard returns the owner's active tasks grouped by column.
func (h *TaskHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	board, err := h.tasks.GetBoard(r.Context(), owner)
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	respondData(w, http.StatusOK, board)
}

// CreateTask adds a task to the end of the backlog.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	var req database.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request format")
		return
	}

	task, err := h.tasks.Create(r.Context(), owner, req)
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	h.notify(owner, services.EventTasksChanged, task.ID)
	respondData(w, http.StatusCreated, task)
}

// UpdateTask applies a partial edit to a task's content fields.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	var patch database.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request format")
		return
	}

	task, err := h.tasks.UpdateFields(r.Context(), owner, mux.Vars(r)["id"], patch)
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	h.notify(owner, services.EventTasksChanged, task.ID)
	respondData(w, http.StatusOK, task)
}

// MoveTask reorders a task within a column or moves it across columns.
func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	var req struct {
		Column database.Column `json:"column"`
		// The first frontend build sent the column under "status".
		Status database.Column `json:"status"`
		Order  int             `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request format")
		return
	}
	column := req.Column
	if column == "" {
		column = req.Status
	}

	task, err := h.tasks.ApplyMove(r.Context(), owner, mux.Vars(r)["id"], column, req.Order)
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	h.notify(owner, services.EventTasksChanged, task.ID)
	respondData(w, http.StatusOK, task)
}

// SoftDelete moves a task to the recycle bin.
func (h *TaskHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	task, err := h.tasks.SoftDelete(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	h.notify(owner, services.EventTasksChanged, task.ID)
	h.notify(owner, services.EventRecycleBinChanged, task.ID)
	respond(w, http.StatusOK, map[string]any{"success": true})
}

// ListDeleted returns the recycle bin, most recently deleted first.
func (h *TaskHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	tasks, err := h.tasks.FindByOwner(r.Context(), owner, true)
	if err != nil {
		respondStoreErr(w, err)
		return
	}
	if tasks == nil {
		tasks = []database.Task{}
	}

	respond(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    tasks,
		"count":   len(tasks),
	})
}

// Restore puts a deleted task back at the end of its retained column.
func (h *TaskHandler) Restore(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	task, err := h.tasks.Restore(r.Context(), owner, mux.Vars(r)["id"])
	if err != nil {
		respondStoreErr(w, err)
		return
	}

	h.notify(owner, services.EventTasksChanged, task.ID)
	h.notify(owner, services.EventRecycleBinChanged, task.ID)
	respondData(w, http.StatusOK, task)
}

// Purge permanently removes a single deleted task.
func (h *TaskHandler) Purge(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.tasks.Purge(r.Context(), owner, id); err != nil {
		respondStoreErr(w, err)
		return
	}

	h.notify(owner, services.EventRecycleBinChanged, id)
	respond(w, http.StatusOK, map[string]any{"success": true})
}

// PurgeAll empties the recycle bin.
func (h *TaskHandler) PurgeAll(w http.ResponseWriter, r *http.Request) {
	owner, ok := OwnerFromContext(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "user not found")
		return
	}

	if _, err := h.tasks.PurgeAll(r.Context(), owner); err != nil {
		respondStoreErr(w, err)
		return
	}

	h.notify(owner, services.EventRecycleBinChanged, "")
	respond(w, http.StatusOK, map[string]any{"success": true})
}
