// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hemesh implements an index-stable half-edge mesh and the
// polyhedral algorithms built on top of it: triangulation, convex hull
// computation (QuickHull) and approximate convex decomposition (HACD).
package hemesh

// Arena is an index-stable container. Creating an element reuses a
// previously released slot when one is available, so the indices of the
// live elements never change. Indices of released slots stay reserved
// until they are handed out again by Create.
type Arena[T any] struct {
	items  []T
	active []bool
	free   []int
	count  int
}

// Create adds a zero-valued element to the arena and returns its index.
func (a *Arena[T]) Create() int {

	var index int
	if len(a.free) > 0 {
		index = a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		var zero T
		a.items[index] = zero
		a.active[index] = true
	} else {
		var zero T
		a.items = append(a.items, zero)
		a.active = append(a.active, true)
		index = len(a.items) - 1
	}
	a.count++
	return index
}

// Release marks the element at the specified index as free for future use.
func (a *Arena[T]) Release(index int) {

	if index < 0 || index >= len(a.items) || !a.active[index] {
		return
	}
	a.active[index] = false
	a.free = append(a.free, index)
	a.count--
}

// Active returns whether the specified index refers to a live element.
func (a *Arena[T]) Active(index int) bool {

	return index >= 0 && index < len(a.items) && a.active[index]
}

// At returns a pointer to the element at the specified index.
// The index must refer to a live element.
func (a *Arena[T]) At(index int) *T {

	return &a.items[index]
}

// Len returns the number of live elements in the arena.
func (a *Arena[T]) Len() int {

	return a.count
}

// Slots returns the total number of slots, live or released.
func (a *Arena[T]) Slots() int {

	return len(a.items)
}

// First returns the index of the first live element, or -1 if the arena is empty.
func (a *Arena[T]) First() int {

	for i := range a.items {
		if a.active[i] {
			return i
		}
	}
	return -1
}

// Each calls the specified function for each live element in index order.
// Returning false from the function stops the iteration.
func (a *Arena[T]) Each(fn func(index int, item *T) bool) {

	for i := range a.items {
		if a.active[i] {
			if !fn(i, &a.items[i]) {
				return
			}
		}
	}
}

// Indices returns the indices of all live elements in ascending order.
func (a *Arena[T]) Indices() []int {

	indices := make([]int, 0, a.count)
	for i := range a.items {
		if a.active[i] {
			indices = append(indices, i)
		}
	}
	return indices
}

// Clone returns a deep copy of the arena.
func (a *Arena[T]) Clone() Arena[T] {

	clone := Arena[T]{
		items:  make([]T, len(a.items)),
		active: make([]bool, len(a.active)),
		free:   make([]int, len(a.free)),
		count:  a.count,
	}
	copy(clone.items, a.items)
	copy(clone.active, a.active)
	copy(clone.free, a.free)
	return clone
}
