package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

const tasksNS = "taskmanager.tasks"

func taskDoc(id, owner primitive.ObjectID, title, priority string, created time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "owner", Value: owner},
		{Key: "title", Value: title},
		{Key: "description", Value: ""},
		{Key: "priority", Value: priority},
		{Key: "completed", Value: false},
		{Key: "createdAt", Value: created},
		{Key: "updatedAt", Value: created},
	}
}

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("ListTasks", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB, discardLogger())
		owner := primitive.NewObjectID()
		now := time.Now().UTC()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch,
			taskDoc(primitive.NewObjectID(), owner, "newer", "high", now),
			taskDoc(primitive.NewObjectID(), owner, "older", "low", now.Add(-time.Hour)),
		))

		tasks, err := repo.ListTasks(ctx, owner.Hex())
		require.NoError(mt, err)
		require.Len(mt, tasks, 2)
		assert.Equal(mt, "newer", tasks[0].Title)
		assert.Equal(mt, types.TaskPriorityHigh, tasks[0].Priority)
		assert.Equal(mt, owner.Hex(), tasks[1].Owner)
	})

	mt.Run("ListTasks empty", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB, discardLogger())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch))

		tasks, err := repo.ListTasks(ctx, primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		assert.NotNil(mt, tasks)
		assert.Empty(mt, tasks)
	})

	mt.Run("CreateTask", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB, discardLogger())
		owner := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		task, err := repo.CreateTask(ctx, types.Task{Owner: owner.Hex(), Title: "Write", Priority: types.TaskPriorityLow})
		require.NoError(mt, err)
		assert.True(mt, primitive.IsValidObjectID(task.ID))
		assert.Equal(mt, owner.Hex(), task.Owner)
		assert.False(mt, task.CreatedAt.IsZero())
	})

	mt.Run("GetTask of another owner", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB, discardLogger())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, tasksNS, mtest.FirstBatch))

		_, err := repo.GetTask(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, types.ErrNotFound)
	})

	mt.Run("GetTask malformed id", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB, discardLogger())

		_, err := repo.GetTask(ctx, primitive.NewObjectID().Hex(), "123")
		assert.ErrorIs(mt, err, types.ErrNotFound)
	})

	mt.Run("UpdateTask", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB, discardLogger())
		owner, id := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: taskDoc(id, owner, "renamed", "medium", time.Now().UTC()),
		}))

		title := "renamed"
		task, err := repo.UpdateTask(ctx, owner.Hex(), id.Hex(), types.UpdateTaskParams{Title: &title})
		require.NoError(mt, err)
		assert.Equal(mt, "renamed", task.Title)
		assert.Equal(mt, id.Hex(), task.ID)
	})

	mt.Run("UpdateTask clears due date", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB, discardLogger())
		owner, id := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{
			Key:   "value",
			Value: taskDoc(id, owner, "undated", "low", time.Now().UTC()),
		}))

		task, err := repo.UpdateTask(ctx, owner.Hex(), id.Hex(), types.UpdateTaskParams{DueDate: types.OptionalTime{Set: true}})
		require.NoError(mt, err)
		assert.Nil(mt, task.DueDate)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		_, err = started.Command.LookupErr("update", "$unset", "dueDate")
		assert.NoError(mt, err)
		_, err = started.Command.LookupErr("update", "$set", "dueDate")
		assert.Error(mt, err)
	})

	mt.Run("DeleteTask", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB, discardLogger())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := repo.DeleteTask(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		assert.NoError(mt, err)
	})

	mt.Run("DeleteTask nothing matched", func(mt *mtest.T) {
		repo := NewMongoRepository(mt.DB, discardLogger())
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeleteTask(ctx, primitive.NewObjectID().Hex(), primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, types.ErrNotFound)
	})
}
