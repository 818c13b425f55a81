package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Riptide/internal/files"
	"github.com/hbomb79/Riptide/internal/job"
)

type (
	// Result is the uniform shape every adapter reports on success: the
	// artifacts it imported into the library and the account name it
	// resolved for the post's author.
	Result struct {
		Files    []job.FileRef
		Username string
	}

	// Adapter translates one platform's URL shape into a concrete
	// extraction procedure and normalised file outputs. The onDownloading
	// callback is invoked immediately before the external extraction tool
	// is run, never earlier.
	Adapter interface {
		Name() string
		Matches(url string) bool
		Fetch(ctx context.Context, url string, onDownloading func()) (*Result, error)
	}
)

// newStagingDir creates a fresh, isolated directory for an adapter to run
// its extraction tool inside. The directory is unique per download.
func newStagingDir() (string, error) {
	dir := filepath.Join(os.TempDir(), "riptide-"+uuid.New().String())
	if err := os.MkdirAll(dir, os.ModeDir|os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}

	return dir, nil
}

// collectMedia walks the staging directory and returns the paths of every
// regular file whose extension appears in the provided set.
func collectMedia(dir string, extensions []string) ([]string, error) {
	found := make([]string, 0)
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		for _, candidate := range extensions {
			if ext == candidate {
				found = append(found, path)
				break
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate staging directory: %w", err)
	}

	return found, nil
}

// importIntoLibrary copies each staged file into the shared library
// directory under the deterministic name {owner}_{date}_{index}{ext},
// tracking each one for session cleanup. The index is 1-based and strictly
// increasing, and skips over names already present on disk so a later
// download by the same owner on the same date never overwrites an earlier
// one.
func importIntoLibrary(library *files.Library, owner string, stagedPaths []string) ([]job.FileRef, error) {
	date := time.Now().UTC().Format("20060102")
	cleanOwner := safeOwnerName(owner)

	refs := make([]job.FileRef, 0, len(stagedPaths))
	index := 1
	for _, stagedPath := range stagedPaths {
		ext := filepath.Ext(stagedPath)

		var filename, destPath string
		for {
			filename = fmt.Sprintf("%s_%s_%d%s", cleanOwner, date, index, ext)
			resolved, err := library.Resolve(filename)
			if err != nil {
				return nil, fmt.Errorf("generated filename '%s' is not library-safe: %w", filename, err)
			}

			destPath = resolved
			index++
			if _, err := os.Stat(destPath); errors.Is(err, os.ErrNotExist) {
				break
			}
		}

		if err := copyFilePreservingTimes(stagedPath, destPath); err != nil {
			return nil, fmt.Errorf("failed to import '%s' into library: %w", filepath.Base(stagedPath), err)
		}

		library.Track(filename)
		refs = append(refs, job.FileRef{Filename: filename, Path: destPath})
	}

	return refs, nil
}

// safeOwnerName sanitizes the platform-supplied owner and collapses any
// consecutive dots, so the generated filename can never contain a parent
// directory segment and so always passes library resolution.
func safeOwnerName(owner string) string {
	clean := files.Sanitize(owner)
	for strings.Contains(clean, "..") {
		clean = strings.ReplaceAll(clean, "..", ".")
	}

	return clean
}

func copyFilePreservingTimes(src string, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dest, time.Now(), info.ModTime())
}
