package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection marks a network or transport failure reaching the queue.
	ErrConnection = errors.New("connection failure")
	// ErrProtocol marks a job-level failure reported by the remote queue.
	ErrProtocol = errors.New("provider failure")
)

// DecodeKind enumerates the ways a completion payload can be malformed.
type DecodeKind string

const (
	DecodeInvalidRoot      DecodeKind = "invalid_root"
	DecodeMissingImages    DecodeKind = "missing_images"
	DecodeInvalidImages    DecodeKind = "invalid_images"
	DecodeInvalidImageItem DecodeKind = "invalid_image_item"
	DecodeInvalidURL       DecodeKind = "invalid_url"
)

// DecodeError reports a malformed completion payload. Value carries the
// offending raw string for invalid_url, empty otherwise.
type DecodeError struct {
	Kind  DecodeKind
	Value string
}

func (e *DecodeError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("decode result: %s (%q)", e.Kind, e.Value)
	}
	return fmt.Sprintf("decode result: %s", e.Kind)
}
