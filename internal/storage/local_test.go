package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalStore(t *testing.T) ReceiptStore {
	t.Helper()

	store, err := NewLocalStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestLocalStore_SaveOpenDelete(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	err := store.Save(ctx, "receipt-1-abc.png", "image/png", strings.NewReader("image bytes"))
	require.NoError(t, err)

	rc, contentType, err := store.Open(ctx, "receipt-1-abc.png")
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, "image/png", contentType)

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))

	require.NoError(t, store.Delete(ctx, "receipt-1-abc.png"))

	_, _, err = store.Open(ctx, "receipt-1-abc.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_OpenMissing(t *testing.T) {
	store := newLocalStore(t)

	_, _, err := store.Open(context.Background(), "receipt-nope.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_DeleteMissingIsNoop(t *testing.T) {
	store := newLocalStore(t)

	assert.NoError(t, store.Delete(context.Background(), "receipt-nope.png"))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	err := store.Save(ctx, "../outside.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)

	_, _, err = store.Open(ctx, "../outside.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_UnknownExtensionContentType(t *testing.T) {
	store := newLocalStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "receipt-1-abc.weird", "image/png", strings.NewReader("x")))

	rc, contentType, err := store.Open(ctx, "receipt-1-abc.weird")
	require.NoError(t, err)
	defer rc.Close()

	assert.Equal(t, "application/octet-stream", contentType)
}
