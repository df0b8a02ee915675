// Package broadcast carries the "storage changed, reload it" signal
// between planner store instances.
package broadcast

import "context"

// TypeSync tells receivers the slot changed. The message carries no
// task data on purpose: receivers must re-read the slot instead of
// trusting anything embedded in the signal.
const TypeSync = "sync"

// Message is the only shape that travels on a Channel.
type Message struct {
	Type string `json:"type"`
}

// Channel fans a message out to every other participant. A message is
// never delivered back to the channel instance that published it,
// mirroring how each store instance only cares about changes made
// elsewhere.
type Channel interface {
	Publish(ctx context.Context, msg Message) error
	// Subscribe registers fn for incoming messages and returns a
	// cancel func. Cancelling more than once is harmless.
	Subscribe(fn func(Message)) (cancel func(), err error)
	Close() error
}
