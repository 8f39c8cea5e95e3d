package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-task-manager-api/app/db"
	"github.com/FACorreiaa/go-task-manager-api/app/observability/metrics"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

var _ Repository = (*MongoRepository)(nil)

// Repository persists tasks. Every by-id call is scoped to the owner: a task
// that exists but belongs to someone else is reported as types.ErrNotFound.
type Repository interface {
	ListTasks(ctx context.Context, ownerID string) ([]types.Task, error)
	CreateTask(ctx context.Context, task types.Task) (*types.Task, error)
	GetTask(ctx context.Context, ownerID, taskID string) (*types.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID string, params types.UpdateTaskParams) (*types.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID string) error
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Owner       primitive.ObjectID `bson:"owner"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Priority    string             `bson:"priority"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	Completed   bool               `bson:"completed"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *taskDocument) toTask() types.Task {
	return types.Task{
		ID:          d.ID.Hex(),
		Owner:       d.Owner.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Priority:    types.TaskPriority(d.Priority),
		DueDate:     d.DueDate,
		Completed:   d.Completed,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type MongoRepository struct {
	logger     *slog.Logger
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database, logger *slog.Logger) *MongoRepository {
	return &MongoRepository{
		logger:     logger,
		collection: db.Collection(database.TasksCollection),
	}
}

// ownedFilter returns {_id, owner} or false when either id is malformed.
func ownedFilter(ownerID, taskID string) (bson.M, bool) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, false
	}
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": id, "owner": owner}, true
}

func (r *MongoRepository) ListTasks(ctx context.Context, ownerID string) (tasks []types.Task, err error) {
	ctx, span := otel.Tracer("TaskRepo").Start(ctx, "ListTasks", trace.WithAttributes(
		semconv.DBSystemMongoDB,
		attribute.String("db.operation", "find"),
		attribute.String("db.collection", database.TasksCollection),
	))
	defer span.End()
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "mongodb", "ListTasks", start, err) }(time.Now())

	tasks = []types.Task{}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return tasks, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc taskDocument
		if err = cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("error decoding task: %w", err)
		}
		tasks = append(tasks, doc.toTask())
	}
	if err = cursor.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *MongoRepository) CreateTask(ctx context.Context, task types.Task) (created *types.Task, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "mongodb", "CreateTask", start, err) }(time.Now())

	owner, err := primitive.ObjectIDFromHex(task.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner id %q: %w", task.Owner, err)
	}

	now := time.Now().UTC()
	doc := taskDocument{
		Owner:       owner,
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		Completed:   task.Completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("error inserting task: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	doc.ID = oid

	t := doc.toTask()
	return &t, nil
}

func (r *MongoRepository) GetTask(ctx context.Context, ownerID, taskID string) (task *types.Task, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "mongodb", "GetTask", start, err) }(time.Now())

	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return nil, types.ErrNotFound
	}

	var doc taskDocument
	if err = r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching task: %w", err)
	}
	t := doc.toTask()
	return &t, nil
}

func (r *MongoRepository) UpdateTask(ctx context.Context, ownerID, taskID string, params types.UpdateTaskParams) (task *types.Task, err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "mongodb", "UpdateTask", start, err) }(time.Now())

	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return nil, types.ErrNotFound
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if params.Title != nil {
		set["title"] = *params.Title
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}
	if params.Priority != nil {
		set["priority"] = string(*params.Priority)
	}
	unset := bson.M{}
	if params.DueDate.Set {
		if params.DueDate.Value != nil {
			set["dueDate"] = *params.DueDate.Value
		} else {
			unset["dueDate"] = ""
		}
	}
	if params.Completed != nil {
		set["completed"] = *params.Completed
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc taskDocument
	if err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("error updating task: %w", err)
	}
	t := doc.toTask()
	return &t, nil
}

func (r *MongoRepository) DeleteTask(ctx context.Context, ownerID, taskID string) (err error) {
	defer func(start time.Time) { metrics.ObserveQuery(ctx, "mongodb", "DeleteTask", start, err) }(time.Now())

	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return types.ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("error deleting task: %w", err)
	}
	if res.DeletedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}
