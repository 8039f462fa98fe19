package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists tasks.
type Repository interface {
	Create(ctx context.Context, task Task) error
	FindByID(ctx context.Context, id string) (Task, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]Task, error)
	Update(ctx context.Context, task Task) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository stores tasks in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a task record.
func (r *PostgresRepository) Create(ctx context.Context, task Task) error {
	taskID, err := uuid.Parse(task.ID)
	if err != nil {
		return err
	}
	ownerID, err := uuid.Parse(task.OwnerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO tasks (id, owner_id, title, description, completed, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		taskID, ownerID, task.Title, task.Description, task.Completed, task.CreatedAt.UTC(), task.UpdatedAt.UTC())
	return err
}

// FindByID fetches a task by identifier. An unparseable id behaves like a
// missing row.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Task, error) {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return Task{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, title, description, completed, created_at, updated_at
        FROM tasks WHERE id = $1`, taskID)
	return scanTask(row)
}

// ListByOwner fetches the owner's tasks ordered by creation time.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]Task, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, ErrNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, title, description, completed, created_at, updated_at
        FROM tasks WHERE owner_id = $1 ORDER BY created_at, id OFFSET $2 LIMIT $3`, owner, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Update persists mutable task fields.
func (r *PostgresRepository) Update(ctx context.Context, task Task) error {
	taskID, err := uuid.Parse(task.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE tasks SET title = $1, description = $2, completed = $3, updated_at = $4 WHERE id = $5`,
		task.Title, task.Description, task.Completed, task.UpdatedAt.UTC(), taskID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	taskID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (Task, error) {
	var (
		id        uuid.UUID
		ownerID   uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		task      Task
	)
	if err := row.Scan(&id, &ownerID, &task.Title, &task.Description, &task.Completed, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	task.ID = id.String()
	task.OwnerID = ownerID.String()
	task.CreatedAt = createdAt.UTC()
	task.UpdatedAt = updatedAt.UTC()
	return task, nil
}
