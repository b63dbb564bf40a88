// Package tasklists provides a PostgreSQL-backed repository for task lists.
package tasklists

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

// PostgresRepository implements task-list operations over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new task list. The ID is minted here.
func (r *PostgresRepository) Create(ctx context.Context, list *models.TaskList) (*models.TaskList, error) {
	query := `
		INSERT INTO task_lists (id, user_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	list.ID = uuid.NewString()
	if err := r.db.QueryRowContext(ctx, query, list.ID, list.UserID, list.Name).Scan(&list.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

// GetByID returns the task list row for the given ID.
// If not found, it returns common.ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.TaskList, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM task_lists
		WHERE id = $1
	`
	list := &models.TaskList{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&list.ID, &list.UserID, &list.Name, &list.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

// SelectByUser returns all task lists owned by userID.
func (r *PostgresRepository) SelectByUser(ctx context.Context, userID string) ([]*models.TaskList, error) {
	query := `
		SELECT id, user_id, name, created_at
		FROM task_lists
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.TaskList
	for rows.Next() {
		list := &models.TaskList{}
		if err := rows.Scan(&list.ID, &list.UserID, &list.Name, &list.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Update renames a task list. The owner column never changes.
func (r *PostgresRepository) Update(ctx context.Context, list *models.TaskList) (*models.TaskList, error) {
	query := `
		UPDATE task_lists
		SET name = $2
		WHERE id = $1
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, list.ID, list.Name).Scan(&list.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}

// Delete removes a task list by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM task_lists
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
