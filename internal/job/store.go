package job

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

var (
	ErrNotFound           = errors.New("no download could be found with that ID")
	ErrIllegalTransition  = errors.New("download is in a terminal state and cannot transition")
	ErrNotYetDispatchable = errors.New("download must be pending before it can begin")
)

// Store owns the process-wide mapping of download IDs to their records. The
// underlying map is never exposed; all reads and writes go through the
// synchronized operations below.
type Store struct {
	mu     sync.Mutex
	jobs   map[string]*Download
	lastID int64
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Download)}
}

// Create allocates a fresh download record in the Pending state and returns
// a snapshot of it. IDs are derived from the submission time (millisecond
// precision) with a monotonic guard so that two submissions landing in the
// same millisecond still receive distinct IDs.
func (store *Store) Create(url string) Download {
	store.mu.Lock()
	defer store.mu.Unlock()

	now := time.Now()
	ms := now.UnixMilli()
	if ms <= store.lastID {
		ms = store.lastID + 1
	}
	store.lastID = ms

	download := &Download{
		ID:          strconv.FormatInt(ms, 10),
		URL:         url,
		Status:      Pending,
		SubmittedAt: now,
	}

	store.jobs[download.ID] = download
	return *download
}

// Get returns a snapshot of the download with the given ID.
func (store *Store) Get(id string) (Download, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	download, ok := store.jobs[id]
	if !ok {
		return Download{}, ErrNotFound
	}

	return *download, nil
}

// All returns snapshots of every known download.
func (store *Store) All() []Download {
	store.mu.Lock()
	defer store.mu.Unlock()

	all := make([]Download, 0, len(store.jobs))
	for _, download := range store.jobs {
		all = append(all, *download)
	}

	return all
}

// Remove drops the download record with the given ID. Removing an ID which
// is not present is not an error.
func (store *Store) Remove(id string) {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.jobs, id)
}

// MarkDownloading transitions a pending download to the Downloading state.
// This is set by the adapter immediately before it invokes the external
// extraction tool.
func (store *Store) MarkDownloading(id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	download, ok := store.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if download.Status != Pending {
		return ErrNotYetDispatchable
	}

	download.Status = Downloading
	return nil
}

// Complete transitions a download to its Completed terminal state, recording
// the files it produced and the resolved account name.
func (store *Store) Complete(id string, files []FileRef, username string) error {
	return store.finish(id, func(download *Download) {
		download.Status = Completed
		download.Files = files
		download.Username = username
	})
}

// Fail transitions a download to its Failed terminal state with a
// human-readable reason.
func (store *Store) Fail(id string, reason string) error {
	return store.finish(id, func(download *Download) {
		download.Status = Failed
		download.Error = reason
	})
}

func (store *Store) finish(id string, apply func(*Download)) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	download, ok := store.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if download.Status.Terminal() {
		return ErrIllegalTransition
	}

	apply(download)
	return nil
}
