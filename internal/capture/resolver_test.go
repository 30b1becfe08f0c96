package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sharjeelbaig/DeepVision-AI/internal/models"
)

func TestResolveDirectIDSkipsLookup(t *testing.T) {
	store := &fakeStore{}
	r := NewResolver(store)

	for _, systemID := range []any{int64(9), "9", " 9 "} {
		id, err := r.Resolve(context.Background(), systemID, "ROOM9")
		require.NoError(t, err)
		n, ok := id.Int()
		require.True(t, ok)
		assert.Equal(t, int64(9), n)
	}

	// Direct path is authoritative: the room code is never consulted.
	assert.Equal(t, 0, store.roomCodeLookups)
}

func TestResolveDirectNonNumericID(t *testing.T) {
	store := &fakeStore{}
	r := NewResolver(store)

	id, err := r.Resolve(context.Background(), "sys-abc", "")
	require.NoError(t, err)
	assert.Equal(t, "sys-abc", id.String())
	_, ok := id.Int()
	assert.False(t, ok)
}

func TestResolveRoomCode(t *testing.T) {
	store := &fakeStore{
		findByRoomCode: func(code string) (*models.System, error) {
			if code == "ROOM9" {
				return &models.System{ID: 42}, nil
			}
			return nil, nil
		},
	}
	r := NewResolver(store)

	id, err := r.Resolve(context.Background(), nil, " ROOM9 ")
	require.NoError(t, err)
	n, ok := id.Int()
	require.True(t, ok)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, 1, store.roomCodeLookups)
}

func TestResolveNeitherIdentifier(t *testing.T) {
	r := NewResolver(&fakeStore{})

	_, err := r.Resolve(context.Background(), nil, "   ")
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestResolveRoomCodeNotFound(t *testing.T) {
	r := NewResolver(&fakeStore{})

	_, err := r.Resolve(context.Background(), "", "NOPE")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestResolveLookupFailure(t *testing.T) {
	cause := errors.New("connection refused")
	store := &fakeStore{
		findByRoomCode: func(string) (*models.System, error) { return nil, cause },
	}
	r := NewResolver(store)

	_, err := r.Resolve(context.Background(), "", "ROOM9")
	require.Error(t, err)
	assert.Equal(t, KindResolutionFailed, KindOf(err))
	assert.ErrorIs(t, err, cause)
}
