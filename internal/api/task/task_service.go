package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-task-manager-api/app/observability/metrics"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListTasks(ctx context.Context, ownerID string) ([]types.Task, error)
	CreateTask(ctx context.Context, ownerID string, params types.CreateTaskParams) (*types.Task, error)
	GetTask(ctx context.Context, ownerID, taskID string) (*types.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID string, params types.UpdateTaskParams) (*types.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID string) error
}

type ServiceImpl struct {
	logger *slog.Logger
	repo   Repository
}

// NewServiceImpl creates a new instance of ServiceImpl
func NewServiceImpl(repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *ServiceImpl) startSpan(ctx context.Context, name, ownerID string) (context.Context, trace.Span) {
	return otel.Tracer("TaskService").Start(ctx, name, trace.WithAttributes(
		attribute.String("user.id", ownerID),
	))
}

func recordSpanError(span trace.Span, err error) {
	if err == nil || errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrInvalidInput) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func validatePriority(p types.TaskPriority) error {
	if !p.Valid() {
		return types.NewValidationError("Priority must be one of low, medium, high")
	}
	return nil
}

// ListTasks returns the owner's tasks, newest first. Never nil.
func (s *ServiceImpl) ListTasks(ctx context.Context, ownerID string) (tasks []types.Task, err error) {
	ctx, span := s.startSpan(ctx, "ListTasks", ownerID)
	defer span.End()
	defer func() { metrics.RecordTaskOperation(ctx, "list", err) }()

	tasks, err = s.repo.ListTasks(ctx, ownerID)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []types.Task{}
	}
	span.SetAttributes(attribute.Int("tasks.count", len(tasks)))
	return tasks, nil
}

// CreateTask requires a non-blank title. Priority defaults to low.
func (s *ServiceImpl) CreateTask(ctx context.Context, ownerID string, params types.CreateTaskParams) (task *types.Task, err error) {
	ctx, span := s.startSpan(ctx, "CreateTask", ownerID)
	defer span.End()
	defer func() { metrics.RecordTaskOperation(ctx, "create", err) }()

	l := s.logger.With(slog.String("method", "CreateTask"), slog.String("userID", ownerID))

	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, types.NewValidationError("Task title is required")
	}
	priority := params.Priority
	if priority == "" {
		priority = types.TaskPriorityLow
	}
	if err = validatePriority(priority); err != nil {
		return nil, err
	}

	task, err = s.repo.CreateTask(ctx, types.Task{
		Owner:       ownerID,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		Priority:    priority,
		DueDate:     params.DueDate,
		Completed:   params.Completed,
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	span.SetAttributes(attribute.String("task.id", task.ID))
	span.SetStatus(codes.Ok, "task created")
	l.InfoContext(ctx, "Task created", slog.String("taskID", task.ID))
	return task, nil
}

func (s *ServiceImpl) GetTask(ctx context.Context, ownerID, taskID string) (task *types.Task, err error) {
	ctx, span := s.startSpan(ctx, "GetTask", ownerID)
	defer span.End()
	defer func() { metrics.RecordTaskOperation(ctx, "get", err) }()
	span.SetAttributes(attribute.String("task.id", taskID))

	task, err = s.repo.GetTask(ctx, ownerID, taskID)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// UpdateTask changes only the provided fields, applying the same rules as
// CreateTask to each of them.
func (s *ServiceImpl) UpdateTask(ctx context.Context, ownerID, taskID string, params types.UpdateTaskParams) (task *types.Task, err error) {
	ctx, span := s.startSpan(ctx, "UpdateTask", ownerID)
	defer span.End()
	defer func() { metrics.RecordTaskOperation(ctx, "update", err) }()
	span.SetAttributes(attribute.String("task.id", taskID))

	l := s.logger.With(slog.String("method", "UpdateTask"), slog.String("userID", ownerID), slog.String("taskID", taskID))

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return nil, types.NewValidationError("Task title is required")
		}
		params.Title = &title
	}
	if params.Priority != nil {
		if err = validatePriority(*params.Priority); err != nil {
			return nil, err
		}
	}

	if params.Empty() {
		task, err = s.repo.GetTask(ctx, ownerID, taskID)
	} else {
		task, err = s.repo.UpdateTask(ctx, ownerID, taskID, params)
	}
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	l.InfoContext(ctx, "Task updated")
	return task, nil
}

func (s *ServiceImpl) DeleteTask(ctx context.Context, ownerID, taskID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteTask", ownerID)
	defer span.End()
	defer func() { metrics.RecordTaskOperation(ctx, "delete", err) }()
	span.SetAttributes(attribute.String("task.id", taskID))

	if err = s.repo.DeleteTask(ctx, ownerID, taskID); err != nil {
		recordSpanError(span, err)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.InfoContext(ctx, "Task deleted", slog.String("userID", ownerID), slog.String("taskID", taskID))
	return nil
}
