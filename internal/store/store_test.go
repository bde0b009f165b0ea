package store_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/golook/golook/internal/codec"
	storepkg "github.com/golook/golook/internal/store"
	"github.com/golook/golook/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSave(t *testing.T) {
	ctx := context.Background()

	store, err := storepkg.New(t.TempDir())
	require.NoError(t, err)

	id := uuid.NewString()

	entry, err := store.Save(ctx, id, testutil.PNG(t, 10, 10))
	require.NoError(t, err)
	require.Equal(t, id, entry.ID)
	require.Equal(t, [2]int{10, 10}, entry.Size)
	require.False(t, entry.Modified.IsZero())

	// The blob holds the canonical encoding, not the original upload
	blob, err := os.ReadFile(store.Path(id))
	require.NoError(t, err)

	converted, err := codec.Decode(blob)
	require.NoError(t, err)
	require.Equal(t, 10, converted.Bounds().Dx())
	require.Equal(t, 10, converted.Bounds().Dy())
}

func TestSaveGarbage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storepkg.New(dir)
	require.NoError(t, err)

	id := uuid.NewString()

	_, err = store.Save(ctx, id, []byte("certainly not an image"))
	require.ErrorIs(t, err, codec.ErrDecode)

	// A failed save leaves no trace: no blob, no catalog entry
	_, err = os.Stat(store.Path(id))
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Empty(t, store.List())
}

func TestListOrdering(t *testing.T) {
	ctx := context.Background()

	now := time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)

	store, err := storepkg.New(t.TempDir(), storepkg.WithClock(func() time.Time {
		now = now.Add(time.Second)

		return now
	}))
	require.NoError(t, err)

	var ids []string

	for i := 0; i < 3; i++ {
		id := uuid.NewString()
		ids = append(ids, id)

		_, err := store.Save(ctx, id, testutil.PNG(t, 10, 10))
		require.NoError(t, err)
	}

	entries := store.List()
	require.Len(t, entries, 3)

	// Sorted by modification time ascending, i.e. upload order
	for i, entry := range entries {
		require.Equal(t, ids[i], entry.ID)
	}

	require.True(t, entries[0].Modified.Before(entries[1].Modified))
	require.True(t, entries[1].Modified.Before(entries[2].Modified))
}

func TestListEmpty(t *testing.T) {
	store, err := storepkg.New(t.TempDir())
	require.NoError(t, err)

	require.NotNil(t, store.List())
	require.Empty(t, store.List())
}

func TestConcurrentSaves(t *testing.T) {
	ctx := context.Background()

	const numSaves = 32

	store, err := storepkg.New(t.TempDir())
	require.NoError(t, err)

	data := testutil.PNG(t, 10, 10)

	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < numSaves; i++ {
		group.Go(func() error {
			_, err := store.Save(groupCtx, uuid.NewString(), data)

			return err
		})
	}

	require.NoError(t, group.Wait())

	// No entry may be lost to a concurrent insertion
	entries := store.List()
	require.Len(t, entries, numSaves)

	for _, entry := range entries {
		_, err := os.Stat(store.Path(entry.ID))
		require.NoError(t, err)
	}
}

func TestSaveIOError(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if os.Getuid() == 0 {
		t.Skip("running as root, permission bits are not enforced")
	}

	store, err := storepkg.New(dir)
	require.NoError(t, err)

	// Make the storage directory unwritable to provoke a persistence failure
	require.NoError(t, os.Chmod(dir, 0555))

	t.Cleanup(func() {
		_ = os.Chmod(dir, 0755)
	})

	_, err = store.Save(ctx, uuid.NewString(), testutil.PNG(t, 10, 10))
	require.Error(t, err)
	require.NotErrorIs(t, err, codec.ErrDecode)
	require.Empty(t, store.List())
}

func TestEntryJSON(t *testing.T) {
	ctx := context.Background()

	modified := time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)

	store, err := storepkg.New(t.TempDir(), storepkg.WithClock(func() time.Time {
		return modified
	}))
	require.NoError(t, err)

	id := uuid.NewString()

	entry, err := store.Save(ctx, id, testutil.PNG(t, 10, 10))
	require.NoError(t, err)

	require.Equal(t,
		fmt.Sprintf(`{"id":%q,"modified":"2024-04-01T12:00:00Z","size":[10,10]}`, id),
		jsonString(t, entry))
}

func jsonString(t *testing.T, v any) string {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	return string(data)
}
