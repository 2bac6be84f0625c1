package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"lifepath-backend/application/ports"

	"go.uber.org/zap"
)

// stubTextGenerator returns a canned response or error.
type stubTextGenerator struct {
	response string
	err      error
}

func (s *stubTextGenerator) Generate(_ context.Context, _ string) (string, error) {
	return s.response, s.err
}

// stubImageGenerator returns a canned image, an error, or nothing.
type stubImageGenerator struct {
	image *ports.GeneratedImage
	err   error

	mu    sync.Mutex
	calls int
}

func (s *stubImageGenerator) Generate(_ context.Context, _ string, _ []byte) (*ports.GeneratedImage, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.image, s.err
}

// memObjectStore is an in-memory object store keyed bucket/key.
type memObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	buckets   map[string]bool
	putErr    error
	getErr    error
	removeErr error
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{
		objects: make(map[string][]byte),
		buckets: make(map[string]bool),
	}
}

func objKey(bucket, key string) string { return bucket + "/" + key }

func (m *memObjectStore) EnsureBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buckets[bucket] = true
	return nil
}

func (m *memObjectStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.objects[objKey(bucket, key)]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *memObjectStore) PutObject(_ context.Context, bucket, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[objKey(bucket, key)] = data
	return nil
}

func (m *memObjectStore) RemoveObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.objects, objKey(bucket, key))
	return nil
}

func (m *memObjectStore) PresignGet(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://objects.test/" + objKey(bucket, key), nil
}

func (m *memObjectStore) has(bucket, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[objKey(bucket, key)]
	return ok
}

// capturePublisher records published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []ports.GraphEvent
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, event ports.GraphEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
