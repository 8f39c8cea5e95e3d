package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

var taskCols = []string{"id", "owner_id", "title", "description", "priority", "due_date", "completed", "created_at", "updated_at"}

func newPgxMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPostgresRepository_ListTasks(t *testing.T) {
	mock := newPgxMock(t)
	repo := NewPostgresRepository(mock, discardLogger())
	owner := uuid.New()
	now := time.Now()
	due := now.Add(48 * time.Hour)

	mock.ExpectQuery(`FROM tasks WHERE owner_id = \$1 ORDER BY created_at DESC`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(uuid.NewString(), owner.String(), "newer", "", "high", &due, false, now, now).
			AddRow(uuid.NewString(), owner.String(), "older", "notes", "low", nil, true, now.Add(-time.Hour), now))

	tasks, err := repo.ListTasks(context.Background(), owner.String())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "newer", tasks[0].Title)
	assert.Equal(t, types.TaskPriorityHigh, tasks[0].Priority)
	require.NotNil(t, tasks[0].DueDate)
	assert.Nil(t, tasks[1].DueDate)
	assert.True(t, tasks[1].Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateTask(t *testing.T) {
	mock := newPgxMock(t)
	repo := NewPostgresRepository(mock, discardLogger())
	owner := uuid.New()
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(owner, "Write", "", "medium", pgxmock.AnyArg(), false).
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(id.String(), owner.String(), "Write", "", "medium", nil, false, now, now))

	task, err := repo.CreateTask(context.Background(), types.Task{
		Owner:    owner.String(),
		Title:    "Write",
		Priority: types.TaskPriorityMedium,
	})
	require.NoError(t, err)
	assert.Equal(t, id.String(), task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_GetTask(t *testing.T) {
	ctx := context.Background()
	owner, id := uuid.New(), uuid.New()

	t.Run("not owned", func(t *testing.T) {
		mock := newPgxMock(t)
		repo := NewPostgresRepository(mock, discardLogger())

		mock.ExpectQuery(`FROM tasks WHERE id = \$1 AND owner_id = \$2`).
			WithArgs(id, owner).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetTask(ctx, owner.String(), id.String())
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id", func(t *testing.T) {
		mock := newPgxMock(t)
		repo := NewPostgresRepository(mock, discardLogger())

		_, err := repo.GetTask(ctx, owner.String(), "42")
		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_UpdateTask(t *testing.T) {
	mock := newPgxMock(t)
	repo := NewPostgresRepository(mock, discardLogger())
	owner, id := uuid.New(), uuid.New()
	now := time.Now()
	title := "renamed"
	done := true

	mock.ExpectQuery(`UPDATE tasks SET title = \$1, completed = \$2, updated_at = NOW\(\) WHERE id = \$3 AND owner_id = \$4`).
		WithArgs("renamed", true, id, owner).
		WillReturnRows(pgxmock.NewRows(taskCols).
			AddRow(id.String(), owner.String(), "renamed", "", "low", nil, true, now, now))

	task, err := repo.UpdateTask(context.Background(), owner.String(), id.String(),
		types.UpdateTaskParams{Title: &title, Completed: &done})
	require.NoError(t, err)
	assert.Equal(t, "renamed", task.Title)
	assert.True(t, task.Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// nilTime matches a due date argument written as NULL.
type nilTime struct{}

func (nilTime) Match(v interface{}) bool {
	t, ok := v.(*time.Time)
	return ok && t == nil
}

func TestPostgresRepository_UpdateTask_DueDate(t *testing.T) {
	owner, id := uuid.New(), uuid.New()
	now := time.Now()
	due := now.Add(24 * time.Hour)

	t.Run("set", func(t *testing.T) {
		mock := newPgxMock(t)
		repo := NewPostgresRepository(mock, discardLogger())

		mock.ExpectQuery(`UPDATE tasks SET due_date = \$1, updated_at = NOW\(\) WHERE id = \$2 AND owner_id = \$3`).
			WithArgs(pgxmock.AnyArg(), id, owner).
			WillReturnRows(pgxmock.NewRows(taskCols).
				AddRow(id.String(), owner.String(), "dated", "", "low", &due, false, now, now))

		task, err := repo.UpdateTask(context.Background(), owner.String(), id.String(),
			types.UpdateTaskParams{DueDate: types.SetTime(due)})
		require.NoError(t, err)
		require.NotNil(t, task.DueDate)
		assert.True(t, due.Equal(*task.DueDate))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cleared", func(t *testing.T) {
		mock := newPgxMock(t)
		repo := NewPostgresRepository(mock, discardLogger())

		mock.ExpectQuery(`UPDATE tasks SET due_date = \$1, updated_at = NOW\(\) WHERE id = \$2 AND owner_id = \$3`).
			WithArgs(nilTime{}, id, owner).
			WillReturnRows(pgxmock.NewRows(taskCols).
				AddRow(id.String(), owner.String(), "undated", "", "low", nil, false, now, now))

		task, err := repo.UpdateTask(context.Background(), owner.String(), id.String(),
			types.UpdateTaskParams{DueDate: types.OptionalTime{Set: true}})
		require.NoError(t, err)
		assert.Nil(t, task.DueDate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_DeleteTask(t *testing.T) {
	ctx := context.Background()
	owner, id := uuid.New(), uuid.New()

	t.Run("deleted", func(t *testing.T) {
		mock := newPgxMock(t)
		repo := NewPostgresRepository(mock, discardLogger())
		mock.ExpectExec(`DELETE FROM tasks`).WithArgs(id, owner).WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.DeleteTask(ctx, owner.String(), id.String()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not owned", func(t *testing.T) {
		mock := newPgxMock(t)
		repo := NewPostgresRepository(mock, discardLogger())
		mock.ExpectExec(`DELETE FROM tasks`).WithArgs(id, owner).WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.ErrorIs(t, repo.DeleteTask(ctx, owner.String(), id.String()), types.ErrNotFound)
	})
}
