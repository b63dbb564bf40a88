// Package tasks provides a PostgreSQL-backed repository for tasks.
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/dbx"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements task operations over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = "id, user_id, list_name, title, description, completed, created_at, updated_at"

// Create inserts a new task. The ID is minted here; timestamps come back
// from the database.
func (r *PostgresRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		INSERT INTO tasks (id, user_id, list_name, title, description, completed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	task.ID = uuid.NewString()
	if err := r.db.QueryRowContext(ctx, query,
		task.ID, task.UserID, task.ListName, task.Title, task.Description, task.Completed).
		Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// GetByID returns the task row for the given ID.
// If not found, it returns common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1
	`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.UserID, &task.ListName, &task.Title,
		&task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// SelectByUser returns all tasks owned by userID.
func (r *PostgresRepository) SelectByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at
	`
	return r.selectTasks(ctx, query, userID)
}

// SelectByUserAndList returns userID's tasks in the named list.
func (r *PostgresRepository) SelectByUserAndList(ctx context.Context, userID, listName string) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND list_name = $2
		ORDER BY created_at
	`
	return r.selectTasks(ctx, query, userID, listName)
}

// SelectByUserAndCompleted returns userID's tasks filtered by completion.
func (r *PostgresRepository) SelectByUserAndCompleted(ctx context.Context, userID string, completed bool) ([]*models.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1 AND completed = $2
		ORDER BY created_at
	`
	return r.selectTasks(ctx, query, userID, completed)
}

// ListNames returns the distinct list names userID has tasks in.
func (r *PostgresRepository) ListNames(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT DISTINCT list_name
		FROM tasks
		WHERE user_id = $1
		ORDER BY list_name
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return names, nil
}

// ExistsByUserListTitle reports whether userID already has a task with the
// given title in the named list.
func (r *PostgresRepository) ExistsByUserListTitle(ctx context.Context, userID, listName, title string) (bool, error) {
	query := `
		SELECT EXISTS(SELECT 1 FROM tasks WHERE user_id = $1 AND list_name = $2 AND title = $3)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, listName, title).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Update persists the mutable fields and bumps updated_at. The owner column
// is deliberately left out of the SET clause.
func (r *PostgresRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET list_name = $2, title = $3, description = $4, completed = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.ListName, task.Title, task.Description, task.Completed).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return task, nil
}

// Delete removes a task by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM tasks
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) selectTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Task
	for rows.Next() {
		task := &models.Task{}
		if err := rows.Scan(
			&task.ID, &task.UserID, &task.ListName, &task.Title,
			&task.Description, &task.Completed, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
