// Package store owns the in-memory image catalog and the on-disk blobs.
//
// The catalog is process-lifetime only: it starts empty and is lost on
// shutdown. Blobs are durable, one file per image id under the storage
// directory, canonical-encoded bytes only, no metadata sidecars.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/golook/golook/internal/codec"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/semaphore"
)

// Entry describes a single stored image. Entries are immutable once created.
type Entry struct {
	ID       string    `json:"id"`
	Modified time.Time `json:"modified"`
	Size     [2]int    `json:"size"`
}

type Store struct {
	dir     string
	entries *xsync.MapOf[string, Entry]

	// codecSem bounds the number of concurrently running decode/encode
	// operations, keeping CPU-bound work off the request-handling path's
	// critical sections
	codecSem *semaphore.Weighted

	now func() time.Time
}

type Option func(store *Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(store *Store) {
		store.now = now
	}
}

// WithCodecParallelism caps the number of codec operations running at once.
func WithCodecParallelism(n int64) Option {
	return func(store *Store) {
		store.codecSem = semaphore.NewWeighted(n)
	}
}

func New(dir string, opts ...Option) (*Store, error) {
	store := &Store{
		dir:     dir,
		entries: xsync.NewMapOf[string, Entry](),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}

	for _, opt := range opts {
		opt(store)
	}

	if store.codecSem == nil {
		store.codecSem = semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))
	}

	// Pre-create the storage directory if not created yet
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %q: %w", dir, err)
	}

	return store, nil
}

// Save converts data to the canonical encoding, persists it under id and
// records a catalog entry. It either fully succeeds or leaves no trace:
// a decode failure (codec.ErrDecode) or a blob write failure results in
// neither a file nor an entry.
func (store *Store) Save(ctx context.Context, id string, data []byte) (Entry, error) {
	img, err := codec.Decode(data)
	if err != nil {
		return Entry{}, err
	}

	// Re-encoding is CPU-bound, run it under the semaphore so that a burst
	// of uploads cannot starve the rest of the process. No catalog state is
	// touched while the codec runs.
	if err := store.codecSem.Acquire(ctx, 1); err != nil {
		return Entry{}, err
	}

	converted, err := codec.EncodeJPEG(img)

	store.codecSem.Release(1)

	if err != nil {
		return Entry{}, err
	}

	if err := os.WriteFile(store.Path(id), converted, 0644); err != nil {
		return Entry{}, fmt.Errorf("failed to persist image %q: %w", id, err)
	}

	bounds := img.Bounds()

	entry := Entry{
		ID:       id,
		Modified: store.now(),
		Size:     [2]int{bounds.Dx(), bounds.Dy()},
	}

	store.entries.Store(id, entry)

	return entry, nil
}

// List returns a snapshot of all catalog entries, sorted by modification
// time ascending (id breaks ties). Safe to call concurrently with Save.
func (store *Store) List() []Entry {
	entries := make([]Entry, 0, store.entries.Size())

	store.entries.Range(func(_ string, entry Entry) bool {
		entries = append(entries, entry)

		return true
	})

	slices.SortFunc(entries, func(a, b Entry) int {
		if result := a.Modified.Compare(b.Modified); result != 0 {
			return result
		}

		return strings.Compare(a.ID, b.ID)
	})

	return entries
}

// Path returns the blob location for the given image id.
func (store *Store) Path(id string) string {
	return filepath.Join(store.dir, id)
}
