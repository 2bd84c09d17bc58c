package target

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/goodmorning/internal/model"
	"github.com/sandeepkv93/goodmorning/internal/storage"
)

type failingKV struct {
	*storage.MemoryKV
	saveErr error
}

func (f failingKV) Save(ctx context.Context, key, value string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryKV.Save(ctx, key, value)
}

func loadedStore(t *testing.T, kv storage.KV) *Store {
	t.Helper()
	s := NewStore(kv, nil)
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.SetTarget(context.Background(), model.DefaultWakeTarget()))
	return s
}

func TestMutationsBeforeLoadFail(t *testing.T) {
	s := NewStore(storage.NewMemoryKV(), nil)
	assert.False(t, s.Loaded())
	err := s.UpdateDefaultTime(context.Background(), model.AlarmTime{Hour: 6})
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, s.SetTarget(context.Background(), model.DefaultWakeTarget()), ErrNotLoaded)
}

func TestLoadedEmptyIsDistinctFromNotLoaded(t *testing.T) {
	s := NewStore(storage.NewMemoryKV(), nil)
	require.NoError(t, s.Load(context.Background()))
	assert.True(t, s.Loaded())
	_, ok := s.Get()
	assert.False(t, ok)
	assert.ErrorIs(t, s.ClearNextOverride(context.Background()), ErrNoTarget)
}

func TestMutationsPersistAndReload(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s := loadedStore(t, kv)

	require.NoError(t, s.UpdateDefaultTime(ctx, model.AlarmTime{Hour: 6, Minute: 30}))
	require.NoError(t, s.SetDayOverride(ctx, time.Saturday, model.Off{}))
	require.NoError(t, s.SetDayOverride(ctx, time.Monday, model.Custom{Time: model.AlarmTime{Hour: 5, Minute: 45}}))
	require.NoError(t, s.SetNextOverride(ctx, model.AlarmTime{Hour: 8}))
	water, err := s.AddTodo(ctx, " Drink water ")
	require.NoError(t, err)
	stretch, err := s.AddTodo(ctx, "Stretch")
	require.NoError(t, err)
	require.NoError(t, s.ReorderTodos(ctx, []string{stretch.ID, water.ID}))

	reloaded := NewStore(kv, nil)
	require.NoError(t, reloaded.Load(ctx))
	got, ok := reloaded.Get()
	require.True(t, ok)
	assert.Equal(t, "06:30", got.DefaultTime.String())
	assert.Equal(t, model.Off{}, got.DayOverrides.Get(time.Saturday))
	assert.Equal(t, model.Custom{Time: model.AlarmTime{Hour: 5, Minute: 45}}, got.DayOverrides.Get(time.Monday))
	require.NotNil(t, got.NextOverride)
	assert.Equal(t, 8, got.NextOverride.Time.Hour)
	require.Len(t, got.Todos, 2)
	assert.Equal(t, "Stretch", got.Todos[0].Title)
	assert.Equal(t, "Drink water", got.Todos[1].Title)

	require.NoError(t, reloaded.RemoveDayOverride(ctx, time.Saturday))
	require.NoError(t, reloaded.ClearNextOverride(ctx))
	require.NoError(t, reloaded.RemoveTodo(ctx, stretch.ID))
	got, _ = reloaded.Get()
	assert.Nil(t, got.DayOverrides.Get(time.Saturday))
	assert.Nil(t, got.NextOverride)
	assert.Len(t, got.Todos, 1)
}

func TestFailedSaveLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{MemoryKV: storage.NewMemoryKV()}
	s := loadedStore(t, kv)

	kv.saveErr = errors.New("disk full")
	err := s.UpdateDefaultTime(ctx, model.AlarmTime{Hour: 9})
	require.Error(t, err)
	got, _ := s.Get()
	assert.Equal(t, 7, got.DefaultTime.Hour)
}

func TestInvalidMutationIsRejected(t *testing.T) {
	s := loadedStore(t, storage.NewMemoryKV())
	err := s.UpdateDefaultTime(context.Background(), model.AlarmTime{Hour: 25})
	assert.ErrorIs(t, err, model.ErrInvalidAlarmTime)
	assert.ErrorIs(t, s.RemoveTodo(context.Background(), "nope"), ErrUnknownTodo)
	assert.ErrorIs(t, s.ReorderTodos(context.Background(), []string{"x"}), ErrUnknownTodo)
}

func TestTransientTodoCompletion(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s := loadedStore(t, kv)
	assert.True(t, s.AreAllTodosCompleted(), "empty checklist is complete")

	todo, err := s.AddTodo(ctx, "Make bed")
	require.NoError(t, err)
	assert.False(t, s.AreAllTodosCompleted())

	require.NoError(t, s.ToggleTodoCompleted(todo.ID))
	assert.True(t, s.AreAllTodosCompleted())

	reloaded := NewStore(kv, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.False(t, reloaded.AreAllTodosCompleted(), "completion is not persisted")

	s.ResetTodos()
	assert.False(t, s.AreAllTodosCompleted())
}

func TestToggleEnabled(t *testing.T) {
	s := loadedStore(t, storage.NewMemoryKV())
	enabled, err := s.ToggleEnabled(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
	enabled, err = s.ToggleEnabled(context.Background())
	require.NoError(t, err)
	assert.True(t, enabled)
}
