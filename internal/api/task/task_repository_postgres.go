package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-task-manager-api/app/db"
	"github.com/FACorreiaa/go-task-manager-api/app/observability/metrics"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

const taskColumns = `id::text, owner_id::text, title, description, priority, due_date, completed, created_at, updated_at`

type PostgresRepository struct {
	logger *slog.Logger
	db     database.DBTX
}

func NewPostgresRepository(db database.DBTX, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		db:     db,
	}
}

func scanTask(row pgx.Row) (*types.Task, error) {
	var t types.Task
	var priority string
	err := row.Scan(&t.ID, &t.Owner, &t.Title, &t.Description, &priority,
		&t.DueDate, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	t.Priority = types.TaskPriority(priority)
	return &t, nil
}

func parseIDs(ownerID, taskID string) (uuid.UUID, uuid.UUID, bool) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(taskID)
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}

func (r *PostgresRepository) ListTasks(ctx context.Context, ownerID string) (tasks []types.Task, err error) {
	ctx, span := otel.Tracer("TaskRepo").Start(ctx, "ListTasks", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.sql.table", "tasks"),
	))
	defer span.End()
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "ListTasks", start, err) }(time.Now())

	tasks = []types.Task{}
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return tasks, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC`, owner)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresRepository) CreateTask(ctx context.Context, task types.Task) (created *types.Task, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "CreateTask", start, err) }(time.Now())

	owner, err := uuid.Parse(task.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", task.Owner, err)
	}

	query := `
		INSERT INTO tasks (owner_id, title, description, priority, due_date, completed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + taskColumns

	created, err = scanTask(r.db.QueryRow(ctx, query,
		owner, task.Title, task.Description, string(task.Priority), task.DueDate, task.Completed))
	if err != nil {
		return nil, fmt.Errorf("error inserting task: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) GetTask(ctx context.Context, ownerID, taskID string) (task *types.Task, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "GetTask", start, err) }(time.Now())

	owner, id, ok := parseIDs(ownerID, taskID)
	if !ok {
		return nil, types.ErrNotFound
	}

	task, err = scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2`, id, owner))
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("error fetching task: %w", err)
	}
	return task, err
}

func (r *PostgresRepository) UpdateTask(ctx context.Context, ownerID, taskID string, params types.UpdateTaskParams) (task *types.Task, err error) {
	ctx, span := otel.Tracer("TaskRepo").Start(ctx, "UpdateTask", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.sql.table", "tasks"),
	))
	defer span.End()
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "UpdateTask", start, err) }(time.Now())

	owner, id, ok := parseIDs(ownerID, taskID)
	if !ok {
		return nil, types.ErrNotFound
	}

	var setClauses []string
	var args []interface{}
	argID := 1

	if params.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", argID))
		args = append(args, *params.Title)
		argID++
	}
	if params.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argID))
		args = append(args, *params.Description)
		argID++
	}
	if params.Priority != nil {
		setClauses = append(setClauses, fmt.Sprintf("priority = $%d", argID))
		args = append(args, string(*params.Priority))
		argID++
	}
	if params.DueDate.Set {
		// A nil Value is written as NULL.
		setClauses = append(setClauses, fmt.Sprintf("due_date = $%d", argID))
		args = append(args, params.DueDate.Value)
		argID++
	}
	if params.Completed != nil {
		setClauses = append(setClauses, fmt.Sprintf("completed = $%d", argID))
		args = append(args, *params.Completed)
		argID++
	}
	setClauses = append(setClauses, "updated_at = NOW()")

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND owner_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), argID, argID+1, taskColumns)
	args = append(args, id, owner)

	task, err = scanTask(r.db.QueryRow(ctx, query, args...))
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, fmt.Errorf("error updating task: %w", err)
	}
	return task, err
}

func (r *PostgresRepository) DeleteTask(ctx context.Context, ownerID, taskID string) (err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "postgresql", "DeleteTask", start, err) }(time.Now())

	owner, id, ok := parseIDs(ownerID, taskID)
	if !ok {
		return types.ErrNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}
