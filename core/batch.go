package core

import (
	"context"
)

// Batch entity writes of one unit of work, applied together or not at all.
// Banks and obligations with a zero ID are inserted, the rest are version checked updates.
type Batch struct {
	Banks       []*Bank
	Obligations []*Obligation
	Events      []*Event
	// run after every version check passed, an error rolls the batch back
	Hooks []func(ctx context.Context) error
}

// AddBank queue a bank update
func (b *Batch) AddBank(banks ...*Bank) *Batch {
	b.Banks = append(b.Banks, banks...)
	return b
}

// AddObligation queue an obligation update
func (b *Batch) AddObligation(obligations ...*Obligation) *Batch {
	b.Obligations = append(b.Obligations, obligations...)
	return b
}

// AddEvent queue an event
func (b *Batch) AddEvent(events ...*Event) *Batch {
	b.Events = append(b.Events, events...)
	return b
}

// AddHook queue a side effect
func (b *Batch) AddHook(fn func(ctx context.Context) error) *Batch {
	b.Hooks = append(b.Hooks, fn)
	return b
}

// IBatchStore commits batches
type IBatchStore interface {
	Commit(ctx context.Context, batch *Batch) error
}
