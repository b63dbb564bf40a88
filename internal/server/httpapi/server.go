// Package httpapi exposes the REST surface of the task list server. Routing
// is gorilla/mux; every task and task-list route sits behind the bearer
// middleware, and the ownership checks live in the service layer below.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/logging"
	"github.com/dmitrijs2005/tasklist/internal/server/auth"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
	"github.com/gorilla/mux"
)

type HTTPServer struct {
	address   string
	logger    logging.Logger
	codec     *auth.Codec
	auths     *services.AuthService
	tasks     *services.TaskService
	tasklists *services.TaskListService
	limiter   *rateLimiter
}

func NewHTTPServer(a string, l logging.Logger, codec *auth.Codec,
	as *services.AuthService, ts *services.TaskService, tls *services.TaskListService) *HTTPServer {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		codec:     codec,
		auths:     as,
		tasks:     ts,
		tasklists: tls,
		limiter:   newRateLimiter(),
	}
}

func (s *HTTPServer) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()

	// credential endpoints are rate limited per client address
	authRouter := v1.PathPrefix("/auth").Subrouter()
	authRouter.Use(s.rateLimitMiddleware)
	authRouter.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	authRouter.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	authRouter.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	authRouter.Handle("/current-user", s.accessTokenMiddleware(http.HandlerFunc(s.handleCurrentUser))).Methods(http.MethodGet)

	protected := v1.NewRoute().Subrouter()
	protected.Use(s.accessTokenMiddleware)

	protected.HandleFunc("/tasks", s.handleCreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/tasks", s.handleGetAllTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/lists", s.handleGetListNames).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/completed", s.handleGetCompletedTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/pending", s.handleGetPendingTasks).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/list/{listName}", s.handleGetTasksByList).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", s.handleGetTask).Methods(http.MethodGet)
	protected.HandleFunc("/tasks/{id}", s.handleUpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/tasks/{id}/toggle", s.handleToggleTask).Methods(http.MethodPatch)
	protected.HandleFunc("/tasks/{id}", s.handleDeleteTask).Methods(http.MethodDelete)

	protected.HandleFunc("/tasklists", s.handleCreateTaskList).Methods(http.MethodPost)
	protected.HandleFunc("/tasklists", s.handleGetTaskLists).Methods(http.MethodGet)
	protected.HandleFunc("/tasklists/{id}", s.handleGetTaskList).Methods(http.MethodGet)
	protected.HandleFunc("/tasklists/{id}", s.handleUpdateTaskList).Methods(http.MethodPut)
	protected.HandleFunc("/tasklists/{id}", s.handleDeleteTaskList).Methods(http.MethodDelete)

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
