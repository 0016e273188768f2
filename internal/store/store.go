/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package store keeps the in-memory working set of placed elements. It is
// the optimistic side of persistence: every local edit lands here first and
// is rendered immediately, while the reconciler pushes it to the backend in
// the background. Values go in and out by copy, callers never share element
// memory with the store.
package store

import (
	"sort"
	"sync"

	"pagedesigner/internal/domain"
)

// ElementStore is a thread-safe collection of placed elements keyed by ID.
type ElementStore struct {
	mu       sync.RWMutex
	elements map[int64]domain.PlacedElement
}

func NewElementStore() *ElementStore {
	return &ElementStore{elements: make(map[int64]domain.PlacedElement)}
}

// Get returns a copy of the element, if present.
func (s *ElementStore) Get(id int64) (domain.PlacedElement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	el, ok := s.elements[id]
	return el, ok
}

// List returns all elements ordered by ID for stable iteration.
func (s *ElementStore) List() []domain.PlacedElement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PlacedElement, 0, len(s.elements))
	for _, el := range s.elements {
		out = append(out, el)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Active returns the elements currently visible on the canvas.
func (s *ElementStore) Active() []domain.PlacedElement {
	all := s.List()
	out := all[:0]
	for _, el := range all {
		if el.IsActive {
			out = append(out, el)
		}
	}
	return out
}

// OnPage returns the active elements bound to the given page.
func (s *ElementStore) OnPage(page int) []domain.PlacedElement {
	var out []domain.PlacedElement
	for _, el := range s.List() {
		if !el.IsActive {
			continue
		}
		if n, ok := el.PageNumber(); ok && n == page {
			out = append(out, el)
		}
	}
	return out
}

// Put inserts or overwrites an element.
func (s *ElementStore) Put(el domain.PlacedElement) {
	s.mu.Lock()
	s.elements[el.ID] = el
	s.mu.Unlock()
}

// Apply patches an element in place and returns the patched copy.
func (s *ElementStore) Apply(id int64, p domain.ElementPatch) (domain.PlacedElement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.elements[id]
	if !ok {
		return domain.PlacedElement{}, false
	}
	p.Apply(&el)
	s.elements[id] = el
	return el, true
}

// Remove deletes an element and reports whether it existed.
func (s *ElementStore) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elements[id]; !ok {
		return false
	}
	delete(s.elements, id)
	return true
}

// ReplaceAll swaps the working set for a fresh backend snapshot. Pending
// local patches are re-applied on top so an in-flight edit is not undone by
// a concurrent reload.
func (s *ElementStore) ReplaceAll(snapshot []domain.PlacedElement, pending map[int64]domain.ElementPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[int64]domain.PlacedElement, len(snapshot))
	for _, el := range snapshot {
		if p, ok := pending[el.ID]; ok {
			p.Apply(&el)
		}
		next[el.ID] = el
	}
	s.elements = next
}

// MaxZIndex returns the highest z-index across active elements, or 0 when
// the canvas is empty.
func (s *ElementStore) MaxZIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	maxZ := 0
	for _, el := range s.elements {
		if el.IsActive && el.ZIndex > maxZ {
			maxZ = el.ZIndex
		}
	}
	return maxZ
}

// Len reports the number of stored elements.
func (s *ElementStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements)
}
