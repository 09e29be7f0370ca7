/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package storage reads and writes documents in object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// Location identifies an object by bucket and key.
type Location struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s/%s", l.Bucket, l.Key)
}

// Valid reports whether both bucket and key are set.
func (l Location) Valid() bool {
	return l.Bucket != "" && l.Key != ""
}

// Store is the object storage boundary of the pipeline. Implementations
// must be safe for concurrent use.
type Store interface {
	// Get returns the object's contents. A missing object yields an error
	// wrapping ErrNotFound.
	Get(ctx context.Context, loc Location) ([]byte, error)
	// Put writes data to loc, replacing any existing object.
	Put(ctx context.Context, loc Location, data []byte, contentType string) error
}
