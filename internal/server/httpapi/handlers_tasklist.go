package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/gorilla/mux"
)

type taskListRequest struct {
	Name string `json:"name"`
}

type taskListResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toTaskListResponse(l *models.TaskList) taskListResponse {
	return taskListResponse{ID: l.ID, Name: l.Name, CreatedAt: l.CreatedAt}
}

func (s *HTTPServer) handleCreateTaskList(w http.ResponseWriter, r *http.Request) {
	var req taskListRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		s.writeBadRequest(w, "name is required")
		return
	}

	list, err := s.tasklists.Create(r.Context(), userIDFromContext(r.Context()), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toTaskListResponse(list))
}

func (s *HTTPServer) handleGetTaskLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.tasklists.GetByUser(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result := make([]taskListResponse, 0, len(lists))
	for _, l := range lists {
		result = append(result, toTaskListResponse(l))
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleGetTaskList(w http.ResponseWriter, r *http.Request) {
	list, err := s.tasklists.GetByID(r.Context(), userIDFromContext(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskListResponse(list))
}

func (s *HTTPServer) handleUpdateTaskList(w http.ResponseWriter, r *http.Request) {
	var req taskListRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeBadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		s.writeBadRequest(w, "name is required")
		return
	}

	list, err := s.tasklists.Update(r.Context(), userIDFromContext(r.Context()), mux.Vars(r)["id"], req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toTaskListResponse(list))
}

func (s *HTTPServer) handleDeleteTaskList(w http.ResponseWriter, r *http.Request) {
	if err := s.tasklists.Delete(r.Context(), userIDFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
