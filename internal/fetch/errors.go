package fetch

import "errors"

var (
	// ErrUnsupportedDomain indicates the submitted URL belongs to no
	// supported platform; no download record is created in this case.
	ErrUnsupportedDomain = errors.New("URL must be from Instagram or Twitter")

	// ErrUnrecognizedURL indicates the URL belongs to a supported platform
	// but no post identifier could be extracted from its path.
	ErrUnrecognizedURL = errors.New("could not extract post ID from URL")

	// ErrNoMediaFound indicates extraction succeeded but produced no files
	// with a recognised media extension.
	ErrNoMediaFound = errors.New("no media files found in the post")
)
