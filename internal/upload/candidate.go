package upload

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Candidate is a file chosen by the user before any network interaction
type Candidate struct {
	// Name is the original file name, sent as the multipart filename
	Name string `validate:"endswith=.txt"`

	// SizeBytes is the size reported by the source (drop, picker, disk)
	SizeBytes int64 `validate:"lte=10485760"`

	// open returns the raw content. It is only called after validation.
	open func() (io.ReadCloser, error)
}

// NewCandidate creates an in-memory candidate
func NewCandidate(name string, content []byte) Candidate {
	return Candidate{
		Name:      name,
		SizeBytes: int64(len(content)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// CandidateFromPath creates a candidate backed by a file on disk.
// Only metadata is read here; the content is read when the upload is built.
func CandidateFromPath(path string) (Candidate, error) {
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Candidate{}, fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return Candidate{}, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return Candidate{
		Name:      info.Name(),
		SizeBytes: info.Size(),
		open: func() (io.ReadCloser, error) {
			// #nosec G304 - path comes from the user's own selection
			return os.Open(cleanPath)
		},
	}, nil
}

// Open returns a reader over the candidate content
func (c Candidate) Open() (io.ReadCloser, error) {
	if c.open == nil {
		return nil, fmt.Errorf("candidate %q has no content", c.Name)
	}
	return c.open()
}
