package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
	"github.com/gorilla/mux"
)

type taskRequest struct {
	ListName    string `json:"list_name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   *bool  `json:"completed,omitempty"`
}

type taskResponse struct {
	ID          string    `json:"id"`
	ListName    string    `json:"list_name"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTaskResponse(t *models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		ListName:    t.ListName,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(tasks []*models.Task) []taskResponse {
	result := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		result = append(result, toTaskResponse(t))
	}
	return result
}

func (s *HTTPServer) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if req.Title == "" || req.ListName == "" {
		s.writeBadRequest(w, "title and list_name are required")
		return
	}

	userID := userIDFromContext(r.Context())

	task, err := s.tasks.Create(r.Context(), userID, req.ListName, req.Title, req.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Task created", "task_id", task.ID, "user_id", userID)
	s.writeJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (s *HTTPServer) handleGetAllTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.GetAll(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (s *HTTPServer) handleGetTasksByList(w http.ResponseWriter, r *http.Request) {
	listName := mux.Vars(r)["listName"]
	tasks, err := s.tasks.GetByList(r.Context(), userIDFromContext(r.Context()), listName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (s *HTTPServer) handleGetCompletedTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.GetCompleted(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (s *HTTPServer) handleGetPendingTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.GetPending(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}

func (s *HTTPServer) handleGetListNames(w http.ResponseWriter, r *http.Request) {
	names, err := s.tasks.ListNames(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *HTTPServer) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.GetByID(r.Context(), userIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *HTTPServer) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if req.Title == "" || req.ListName == "" {
		s.writeBadRequest(w, "title and list_name are required")
		return
	}

	userID := userIDFromContext(r.Context())
	taskID := mux.Vars(r)["id"]

	task, err := s.tasks.Update(r.Context(), userID, taskID, services.TaskUpdate{
		ListName:    req.ListName,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Task updated", "task_id", taskID, "user_id", userID)
	s.writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *HTTPServer) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.ToggleCompletion(r.Context(), userIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *HTTPServer) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	taskID := mux.Vars(r)["id"]

	if err := s.tasks.Delete(r.Context(), userID, taskID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Task deleted", "task_id", taskID, "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
