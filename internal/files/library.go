package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hbomb79/Riptide/pkg/logger"
)

var (
	log = logger.Get("Library")

	ErrFileNotFound   = errors.New("no file with that name exists in the library")
	ErrUnsafeFilename = errors.New("filename must not contain path separators or parent directory segments")
)

// Library is the single shared download directory that every adapter and
// the crop processor write into, combined with the tracking set used for
// session cleanup. Filenames handed to the retrieval operations are caller
// supplied and are validated before any path join occurs.
type Library struct {
	dir     string
	tracker *Tracker
}

// NewLibrary ensures the provided directory exists (creating it if needed)
// and returns a Library rooted there. An error is returned if the path
// exists but is not a directory.
func NewLibrary(dir string) (*Library, error) {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("library path '%s' is not a directory", dir)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if mkErr := os.MkdirAll(dir, os.ModeDir|os.ModePerm); mkErr != nil {
			return nil, fmt.Errorf("library path '%s' could not be created: %w", dir, mkErr)
		}
	} else {
		return nil, fmt.Errorf("library path '%s' could not be accessed: %w", dir, err)
	}

	return &Library{dir: dir, tracker: NewTracker()}, nil
}

func (library *Library) Dir() string { return library.dir }

// Track records a filename as having been produced by this process.
func (library *Library) Track(filename string) { library.tracker.Track(filename) }

// Tracked reports whether the given filename is part of the current session.
func (library *Library) Tracked(filename string) bool { return library.tracker.Contains(filename) }

// List returns the filenames tracked for the current session.
func (library *Library) List() []string { return library.tracker.List() }

// Resolve validates the caller-supplied filename and joins it against the
// library directory. Any name containing path separators or parent
// directory segments is rejected outright.
func (library *Library) Resolve(filename string) (string, error) {
	if filename == "" ||
		filename != filepath.Base(filename) ||
		strings.ContainsAny(filename, `/\`) ||
		strings.Contains(filename, "..") {
		return "", ErrUnsafeFilename
	}

	return filepath.Join(library.dir, filename), nil
}

// Open reads the full content of a tracked-or-untracked file from the
// library directory.
func (library *Library) Open(filename string) ([]byte, error) {
	path, err := library.Resolve(filename)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}

		return nil, fmt.Errorf("failed to read '%s' from library: %w", filename, err)
	}

	return content, nil
}

// TakeAndDelete reads the full content of the named file into memory,
// removes it from disk and from the tracking set, and returns the content.
// The deletion happens only once the read has fully succeeded, and it is
// not rolled back if the caller subsequently fails to use the content.
func (library *Library) TakeAndDelete(filename string) ([]byte, error) {
	content, err := library.Open(filename)
	if err != nil {
		return nil, err
	}

	path, _ := library.Resolve(filename)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove '%s' from library: %w", filename, err)
	}
	library.tracker.Untrack(filename)

	return content, nil
}

// CleanupAll deletes every tracked file that still exists on disk and
// empties the tracking set, returning the number of files actually
// removed. Filenames whose backing file has already gone are forgotten
// without being counted.
func (library *Library) CleanupAll() int {
	removed := 0
	for _, filename := range library.tracker.List() {
		path, err := library.Resolve(filename)
		if err != nil {
			// Tracked names are produced by the sanitizer so this should
			// never occur; drop the entry regardless.
			library.tracker.Untrack(filename)
			continue
		}

		if err := os.Remove(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Emit(logger.WARNING, "Failed to remove tracked file '%s' during cleanup: %v\n", filename, err)
				continue
			}
		} else {
			removed++
		}

		library.tracker.Untrack(filename)
	}

	return removed
}
