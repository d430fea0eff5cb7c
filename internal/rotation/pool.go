/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rotation

import (
	"errors"
	"math/rand"
)

// ErrEmptyPool indicates a pool was constructed with no items.
var ErrEmptyPool = errors.New("rotation pool requires at least one item")

// Pool hands out items from a fixed multiset in shuffled order without
// replacement. When every item has been consumed it reshuffles the full
// backing set and starts over, so Pop never runs dry. A reshuffle may place
// the item played last at the front of the next cycle; that is accepted.
type Pool[T any] struct {
	rng     *rand.Rand
	backing []T
	order   []int
	cursor  int
}

// New creates a pool over items. The rand source is injected so tests can
// seed it deterministically.
func New[T any](rng *rand.Rand, items []T) (*Pool[T], error) {
	if len(items) == 0 {
		return nil, ErrEmptyPool
	}
	backing := make([]T, len(items))
	copy(backing, items)

	p := &Pool[T]{rng: rng, backing: backing}
	p.reshuffle()
	return p, nil
}

// Pop removes and returns the next item in the current working order,
// reshuffling first if the order is exhausted.
func (p *Pool[T]) Pop() T {
	if p.cursor >= len(p.order) {
		p.reshuffle()
	}
	item := p.backing[p.order[p.cursor]]
	p.cursor++
	return item
}

// Len returns the size of the backing multiset.
func (p *Pool[T]) Len() int {
	return len(p.backing)
}

// Remaining returns how many items are left in the current cycle.
func (p *Pool[T]) Remaining() int {
	return len(p.order) - p.cursor
}

func (p *Pool[T]) reshuffle() {
	p.order = p.rng.Perm(len(p.backing))
	p.cursor = 0
}
