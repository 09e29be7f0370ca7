/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package storagetest provides an in-memory storage.Store for tests.
package storagetest

import (
	"context"
	"fmt"
	"sync"

	"chainguard.dev/crisiseval/storage"
)

// Object is a stored document.
type Object struct {
	Data        []byte
	ContentType string
}

// Memory is an in-memory storage.Store with failure injection.
type Memory struct {
	mu      sync.Mutex
	objects map[storage.Location]Object
	gets    int
	puts    int

	// GetErr and PutErr, when set, are returned by every call.
	GetErr error
	PutErr error
}

var _ storage.Store = (*Memory)(nil)

// New returns an empty store.
func New() *Memory {
	return &Memory{objects: map[storage.Location]Object{}}
}

// Seed stores data at loc without counting as a Put.
func (m *Memory) Seed(loc storage.Location, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[loc] = Object{Data: append([]byte(nil), data...)}
}

// Get implements storage.Store.
func (m *Memory) Get(ctx context.Context, loc storage.Location) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	obj, ok := m.objects[loc]
	if !ok {
		return nil, fmt.Errorf("%s: %w", loc, storage.ErrNotFound)
	}
	return append([]byte(nil), obj.Data...), nil
}

// Put implements storage.Store.
func (m *Memory) Put(ctx context.Context, loc storage.Location, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.PutErr != nil {
		return m.PutErr
	}
	m.objects[loc] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

// Object returns the object at loc.
func (m *Memory) Object(loc storage.Location) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[loc]
	return obj, ok
}

// Gets counts Get calls.
func (m *Memory) Gets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gets
}

// Puts counts Put calls.
func (m *Memory) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
