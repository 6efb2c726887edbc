package mocks

import "context"

// CollectionManager is a mock implementation of ports.CollectionManager.
// It tracks whether the collection exists and with which vector size.
type CollectionManager struct {
	EnsureErr error
	DeleteErr error

	Exists     bool
	VectorSize uint64

	EnsureCollectionCallCount int
	DeleteCollectionCallCount int
}

// EnsureCollection marks the collection as created unless EnsureErr is set.
func (m *CollectionManager) EnsureCollection(_ context.Context, vectorSize uint64) error {
	m.EnsureCollectionCallCount++
	if m.EnsureErr != nil {
		return m.EnsureErr
	}
	if !m.Exists {
		m.Exists = true
		m.VectorSize = vectorSize
	}
	return nil
}

// DeleteCollection marks the collection as removed unless DeleteErr is set.
func (m *CollectionManager) DeleteCollection(_ context.Context) error {
	m.DeleteCollectionCallCount++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.Exists = false
	m.VectorSize = 0
	return nil
}
