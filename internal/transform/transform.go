/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package transform maps between the two coordinate spaces of the canvas:
// viewport coordinates (what the pointer reports) and page-local coordinates
// (what gets persisted for page-bound elements). Page rectangles move when
// the reader scrolls or the window resizes, so every conversion asks a live
// PageMetrics source and caches the last answer per page for elements that
// must keep rendering while their page is briefly unmounted.
package transform

import (
	"sync"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/vector"
)

// PageMetrics reports the current viewport rectangle of a mounted page.
// The second return is false when the page is not mounted right now.
type PageMetrics interface {
	PageRect(page int) (vector.Rect, bool)
}

// Transformer converts between viewport and page-local coordinates.
type Transformer struct {
	metrics PageMetrics

	mu    sync.Mutex
	cache map[int]vector.Rect
}

func New(metrics PageMetrics) *Transformer {
	return &Transformer{metrics: metrics, cache: make(map[int]vector.Rect)}
}

// pageRect resolves the page rectangle, preferring the live answer and
// falling back to the last-known rect.
func (t *Transformer) pageRect(page int) (vector.Rect, bool) {
	if r, ok := t.metrics.PageRect(page); ok {
		t.mu.Lock()
		t.cache[page] = r
		t.mu.Unlock()
		return r, true
	}
	t.mu.Lock()
	r, ok := t.cache[page]
	t.mu.Unlock()
	return r, ok
}

// ToViewport returns the viewport position of a placement. Global placements
// already live in viewport space. Page placements are offset by the page
// rectangle; ErrPageNotMounted is returned when the page has never been seen.
func (t *Transformer) ToViewport(p domain.Placement) (vector.Pt, error) {
	switch pl := p.(type) {
	case domain.GlobalPlacement:
		return vector.Pt{X: float32(pl.X), Y: float32(pl.Y)}, nil
	case domain.PagePlacement:
		r, ok := t.pageRect(pl.Page)
		if !ok {
			return vector.Pt{}, domain.ErrPageNotMounted
		}
		return r.Min().Add(vector.Pt{X: float32(pl.X), Y: float32(pl.Y)}), nil
	}
	return vector.Pt{}, domain.ErrPageNotMounted
}

// ToLocal converts a viewport point into page-local coordinates.
func (t *Transformer) ToLocal(page int, viewport vector.Pt) (vector.Pt, error) {
	r, ok := t.pageRect(page)
	if !ok {
		return vector.Pt{}, domain.ErrPageNotMounted
	}
	return viewport.Sub(r.Min()), nil
}

// PageSize returns the current size of a page, falling back to the
// configured default when the page has never been mounted. Drag clamping
// must not fail just because metrics are momentarily unavailable.
func (t *Transformer) PageSize(page int, fallback vector.Size) vector.Size {
	if r, ok := t.pageRect(page); ok {
		return vector.Size{W: r.W, H: r.H}
	}
	return fallback
}

// PageAt returns the number of the mounted page containing the viewport
// point, searching the pages reported mounted by the metrics source.
func PageAt(metrics PageMetrics, pages []int, p vector.Pt) (int, bool) {
	for _, n := range pages {
		if r, ok := metrics.PageRect(n); ok && r.Contains(p) {
			return n, true
		}
	}
	return 0, false
}
