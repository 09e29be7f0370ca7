/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/chainguard-dev/clog"
	"google.golang.org/api/option"
)

// GCS stores objects in Google Cloud Storage.
type GCS struct {
	client *gcs.Client
}

var _ Store = (*GCS)(nil)

// NewGCS creates a GCS store. Options such as option.WithEndpoint and
// option.WithoutAuthentication target emulators.
func NewGCS(ctx context.Context, opts ...option.ClientOption) (*GCS, error) {
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating gcs client: %w", err)
	}
	return &GCS{client: client}, nil
}

// Get implements Store.
func (g *GCS) Get(ctx context.Context, loc Location) ([]byte, error) {
	r, err := g.client.Bucket(loc.Bucket).Object(loc.Key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) || errors.Is(err, gcs.ErrBucketNotExist) {
		return nil, fmt.Errorf("gs://%s: %w", loc, ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("opening gs://%s: %w", loc, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading gs://%s: %w", loc, err)
	}
	clog.FromContext(ctx).With("bytes", len(data)).Debugf("Read gs://%s", loc)
	return data, nil
}

// Put implements Store.
func (g *GCS) Put(ctx context.Context, loc Location, data []byte, contentType string) error {
	w := g.client.Bucket(loc.Bucket).Object(loc.Key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing gs://%s: %w", loc, err)
	}
	// The object is committed on Close.
	if err := w.Close(); err != nil {
		return fmt.Errorf("committing gs://%s: %w", loc, err)
	}
	clog.FromContext(ctx).With("bytes", len(data)).Debugf("Wrote gs://%s", loc)
	return nil
}

// Close releases the underlying client.
func (g *GCS) Close() error {
	return g.client.Close()
}
