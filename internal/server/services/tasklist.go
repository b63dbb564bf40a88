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

// TaskListService implements task-list operations on behalf of an acting
// user, with the same ownership rules as TaskService.
type TaskListService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewTaskListService constructs a TaskListService using repositories.
func NewTaskListService(db *sql.DB, m repomanager.RepositoryManager) *TaskListService {
	return &TaskListService{db: db, repomanager: m}
}

// Create adds a task list owned by userID.
func (s *TaskListService) Create(ctx context.Context, userID, name string) (*models.TaskList, error) {
	list := &models.TaskList{UserID: userID, Name: name}
	list, err := s.repomanager.TaskLists(s.db).Create(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("error creating task list: %w", err)
	}
	return list, nil
}

// GetByID returns a single task list after verifying ownership.
func (s *TaskListService) GetByID(ctx context.Context, userID, listID string) (*models.TaskList, error) {
	return s.loadOwned(ctx, userID, listID)
}

// GetByUser returns every task list owned by userID.
func (s *TaskListService) GetByUser(ctx context.Context, userID string) ([]*models.TaskList, error) {
	return s.repomanager.TaskLists(s.db).SelectByUser(ctx, userID)
}

// Update renames a task list after verifying ownership.
func (s *TaskListService) Update(ctx context.Context, userID, listID, name string) (*models.TaskList, error) {
	list, err := s.loadOwned(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	list.Name = name

	list, err = s.repomanager.TaskLists(s.db).Update(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("error updating task list: %w", err)
	}
	return list, nil
}

// Delete removes a task list after verifying ownership.
func (s *TaskListService) Delete(ctx context.Context, userID, listID string) error {
	if _, err := s.loadOwned(ctx, userID, listID); err != nil {
		return err
	}
	if err := s.repomanager.TaskLists(s.db).Delete(ctx, listID); err != nil {
		return fmt.Errorf("error deleting task list: %w", err)
	}
	return nil
}

func (s *TaskListService) loadOwned(ctx context.Context, userID, listID string) (*models.TaskList, error) {
	list, err := s.repomanager.TaskLists(s.db).GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading task list: %w", err)
	}
	if err := authz.Authorize(userID, list.UserID); err != nil {
		return nil, err
	}
	return list, nil
}
