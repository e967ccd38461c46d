package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paiban/dutyroster/pkg/errors"
	"github.com/paiban/dutyroster/pkg/model"
)

func TestBuildWhere(t *testing.T) {
	where, args := buildWhere(DefaultListFilter())
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = buildWhere(DefaultListFilter().WithMonth(2024, 6).WithStatus(model.RunSolved))
	assert.Equal(t, "WHERE year = $1 AND month = $2 AND status = $3", where)
	assert.Equal(t, []interface{}{2024, 6, model.RunSolved}, args)
}

func TestOrderDir(t *testing.T) {
	assert.Equal(t, "ASC", orderDir("asc"))
	assert.Equal(t, "DESC", orderDir("desc"))
	assert.Equal(t, "DESC", orderDir("; DROP TABLE duty_runs"))
}

type errScanner struct{ err error }

func (s errScanner) Scan(...interface{}) error { return s.err }

func TestScanRun_Error(t *testing.T) {
	want := errors.New("boom")
	_, err := scanRun(errScanner{want})
	assert.ErrorIs(t, err, want)
}

func TestMemoryRunStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRunStore()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i, status := range []string{model.RunSolved, model.RunExhausted, model.RunSolved} {
		run := &model.Run{Year: 2024, Month: 6 + i%2, Status: status, Payload: []byte(`{}`)}
		run.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Create(ctx, run))
		assert.NotEqual(t, uuid.Nil, run.ID)
	}

	runs, total, err := store.List(ctx, DefaultListFilter())
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, runs, 3)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt), "默认按创建时间倒序")
	assert.Nil(t, runs[0].Payload)

	runs, total, err = store.List(ctx, DefaultListFilter().WithStatus(model.RunSolved).WithLimit(1))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, runs, 1)

	runs, _, err = store.List(ctx, DefaultListFilter().WithMonth(2024, 7))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunExhausted, runs[0].Status)

	runs, total, err = store.List(ctx, DefaultListFilter().WithOffset(5))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, runs)

	got, err := store.GetByID(ctx, runs0ID(t, store))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), got.Payload)

	_, err = store.GetByID(ctx, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func runs0ID(t *testing.T, store *MemoryRunStore) uuid.UUID {
	t.Helper()
	runs, _, err := store.List(context.Background(), DefaultListFilter().WithLimit(1))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	return runs[0].ID
}
