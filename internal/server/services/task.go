package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/authz"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/repositories/repomanager"
)

// TaskService implements task operations on behalf of an acting user. Every
// read or mutation of an individual task loads the row first and applies
// the ownership guard before touching it; bulk reads are owner-scoped in
// the query itself. Both styles reject cross-tenant access identically.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewTaskService constructs a TaskService using repositories.
func NewTaskService(db *sql.DB, m repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, repomanager: m}
}

// TaskUpdate carries the mutable task fields for Update. Completed is
// optional; nil leaves the current value in place.
type TaskUpdate struct {
	ListName    string
	Title       string
	Description string
	Completed   *bool
}

// Create adds a task owned by userID. Duplicate titles within the same
// user and list are rejected with common.ErrAlreadyExists.
func (s *TaskService) Create(ctx context.Context, userID, listName, title, description string) (*models.Task, error) {
	repo := s.repomanager.Tasks(s.db)

	exists, err := repo.ExistsByUserListTitle(ctx, userID, listName, title)
	if err != nil {
		return nil, fmt.Errorf("error checking title: %w", err)
	}
	if exists {
		return nil, common.ErrAlreadyExists
	}

	task := &models.Task{
		UserID:      userID,
		ListName:    listName,
		Title:       title,
		Description: description,
	}
	task, err = repo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return task, nil
}

// GetByID returns a single task after verifying ownership.
func (s *TaskService) GetByID(ctx context.Context, userID, taskID string) (*models.Task, error) {
	return s.loadOwned(ctx, userID, taskID)
}

// GetAll returns every task owned by userID.
func (s *TaskService) GetAll(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).SelectByUser(ctx, userID)
}

// GetByList returns userID's tasks in the named list.
func (s *TaskService) GetByList(ctx context.Context, userID, listName string) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).SelectByUserAndList(ctx, userID, listName)
}

// GetCompleted returns userID's completed tasks.
func (s *TaskService) GetCompleted(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).SelectByUserAndCompleted(ctx, userID, true)
}

// GetPending returns userID's not-yet-completed tasks.
func (s *TaskService) GetPending(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).SelectByUserAndCompleted(ctx, userID, false)
}

// ListNames returns the distinct list names userID has tasks in.
func (s *TaskService) ListNames(ctx context.Context, userID string) ([]string, error) {
	return s.repomanager.Tasks(s.db).ListNames(ctx, userID)
}

// Update modifies a task after verifying ownership. Moving or renaming a
// task re-runs the duplicate-title check for the target list.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, upd TaskUpdate) (*models.Task, error) {
	repo := s.repomanager.Tasks(s.db)

	task, err := s.loadOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if task.Title != upd.Title || task.ListName != upd.ListName {
		exists, err := repo.ExistsByUserListTitle(ctx, userID, upd.ListName, upd.Title)
		if err != nil {
			return nil, fmt.Errorf("error checking title: %w", err)
		}
		if exists {
			return nil, common.ErrAlreadyExists
		}
	}

	task.ListName = upd.ListName
	task.Title = upd.Title
	task.Description = upd.Description
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}

	task, err = repo.Update(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error updating task: %w", err)
	}
	return task, nil
}

// ToggleCompletion flips the completed flag after verifying ownership.
func (s *TaskService) ToggleCompletion(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.loadOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Completed = !task.Completed

	task, err = s.repomanager.Tasks(s.db).Update(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("error updating task: %w", err)
	}
	return task, nil
}

// Delete removes a task after verifying ownership.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if _, err := s.loadOwned(ctx, userID, taskID); err != nil {
		return err
	}
	if err := s.repomanager.Tasks(s.db).Delete(ctx, taskID); err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	return nil
}

// loadOwned fetches a task and applies the ownership guard. A task owned by
// someone else comes back as common.ErrForbidden, not as not-found:
// existence may leak, cross-tenant access may not.
func (s *TaskService) loadOwned(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.repomanager.Tasks(s.db).GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading task: %w", err)
	}
	if err := authz.Authorize(userID, task.UserID); err != nil {
		return nil, err
	}
	return task, nil
}
