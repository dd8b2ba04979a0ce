package ingest

import "errors"

var (
	// ErrSkipped indicates an attachment the pipeline deliberately did
	// not download.
	ErrSkipped = errors.New("attachment skipped")
)
