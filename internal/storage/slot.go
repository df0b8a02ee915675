package storage

import "context"

// Slot is a single keyed byte slot holding the serialized task
// collection. The store writes the whole collection on every mutation
// and re-reads it when told the slot changed elsewhere.
type Slot interface {
	// Read returns the current slot contents. ok is false when nothing
	// has been written yet.
	Read(ctx context.Context) (data []byte, ok bool, err error)
	Write(ctx context.Context, data []byte) error
}
