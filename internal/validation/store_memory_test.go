package validation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skgov/internal/youth"
	"skgov/pkg/platform/sentinel"
)

func TestSupersedeRequiresValidatedStatus(t *testing.T) {
	store := NewInMemoryStore(youth.NewInMemoryStore())
	ctx := context.Background()

	old := uuid.New()
	store.PutResponse(SurveyResponse{
		ID:        old,
		YouthID:   uuid.New(),
		Status:    StatusRejected,
		CreatedAt: time.Now().Add(-time.Hour),
	})

	err := store.SupersedeResponse(ctx, old, uuid.New(), "SUPERSEDED")
	require.ErrorIs(t, err, sentinel.ErrConflict)

	err = store.SupersedeResponse(ctx, uuid.New(), uuid.New(), "SUPERSEDED")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestDeleteResponseProtectsValidatedRows(t *testing.T) {
	store := NewInMemoryStore(youth.NewInMemoryStore())
	ctx := context.Background()

	validated := uuid.New()
	store.PutResponse(SurveyResponse{
		ID:      validated,
		YouthID: uuid.New(),
		Status:  StatusValidated,
	})

	err := store.DeleteResponse(ctx, validated)
	require.ErrorIs(t, err, sentinel.ErrConflict)

	_, ok := store.Response(validated)
	assert.True(t, ok, "validated row must survive a delete attempt")
}
