package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTaskParams_DueDate(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		var p UpdateTaskParams
		require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &p))
		assert.False(t, p.DueDate.Set)
		assert.Nil(t, p.DueDate.Value)
	})

	t.Run("null clears", func(t *testing.T) {
		var p UpdateTaskParams
		require.NoError(t, json.Unmarshal([]byte(`{"dueDate":null}`), &p))
		assert.True(t, p.DueDate.Set)
		assert.Nil(t, p.DueDate.Value)
		assert.False(t, p.Empty())
	})

	t.Run("timestamp", func(t *testing.T) {
		var p UpdateTaskParams
		require.NoError(t, json.Unmarshal([]byte(`{"dueDate":"2026-03-01T09:00:00Z"}`), &p))
		require.True(t, p.DueDate.Set)
		require.NotNil(t, p.DueDate.Value)
		assert.True(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).Equal(*p.DueDate.Value))
	})

	t.Run("not a timestamp", func(t *testing.T) {
		var p UpdateTaskParams
		assert.Error(t, json.Unmarshal([]byte(`{"dueDate":"tomorrow"}`), &p))
	})

	t.Run("empty body", func(t *testing.T) {
		var p UpdateTaskParams
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.True(t, p.Empty())
	})
}
