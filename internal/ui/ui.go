/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop front-end: it lays the book pages out as
// spreads, maps pointer events into the editing session and renders from
// its snapshots. The Fyne shell is gated behind the "fyne" build tag so CI
// stays headless; the layout and hit-testing logic here is tag-free and
// tested without a display.
package ui

import (
	"context"
	"sync"

	"pagedesigner/internal/backend"
	"pagedesigner/internal/config"
	"pagedesigner/internal/domain"
	"pagedesigner/internal/transform"
	"pagedesigner/internal/vector"
	"pagedesigner/internal/zorder"
)

// RunOptions carries what the command line resolved: user config, the
// backend token from the keyring and whether this session may mutate.
type RunOptions struct {
	Config config.AppConfig
	Token  string
	Admin  bool
	// JournalDir receives crash reports; empty falls back to the temp dir.
	JournalDir string
}

// SpreadLayout places pages as book spreads: odd pages on the right, even
// on the left, page 1 alone on the first row. It implements the page
// metrics the coordinate transformer reads, so moving the origin (panning)
// immediately re-derives every page-bound element's viewport position.
type SpreadLayout struct {
	mu     sync.Mutex
	page   vector.Size
	gutter float32
	origin vector.Pt
	count  int
}

func NewSpreadLayout(page vector.Size, gutter float32) *SpreadLayout {
	return &SpreadLayout{page: page, gutter: gutter}
}

// SetPageCount bounds PageRect; zero means unbounded.
func (l *SpreadLayout) SetPageCount(n int) {
	l.mu.Lock()
	l.count = n
	l.mu.Unlock()
}

// SetOrigin moves the viewport position of the first spread's top-left
// corner, i.e. scrolls the book.
func (l *SpreadLayout) SetOrigin(p vector.Pt) {
	l.mu.Lock()
	l.origin = p
	l.mu.Unlock()
}

func (l *SpreadLayout) Origin() vector.Pt {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.origin
}

func (l *SpreadLayout) PageSize() vector.Size { return l.page }

// Count reports the mounted page count; zero means the book is not loaded
// yet and PageRect is unbounded.
func (l *SpreadLayout) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// PageRect reports where a page currently sits in the viewport.
func (l *SpreadLayout) PageRect(page int) (vector.Rect, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if page < 1 || (l.count > 0 && page > l.count) {
		return vector.Rect{}, false
	}
	row := page / 2
	x := l.origin.X
	if page%2 == 1 {
		x += l.page.W + l.gutter
	}
	y := l.origin.Y + float32(row)*(l.page.H+l.gutter)
	return vector.R(x, y, l.page.W, l.page.H), true
}

// ContentSize is the total area the mounted spreads occupy, for sizing the
// scrollable canvas.
func (l *SpreadLayout) ContentSize() vector.Size {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := l.count/2 + 1
	return vector.Size{
		W: 2*l.page.W + l.gutter,
		H: float32(rows)*(l.page.H+l.gutter) - l.gutter,
	}
}

// HitTest finds the topmost element under a viewport point, honoring the
// effective z-order (overlay above global above page flow).
func HitTest(tr *transform.Transformer, slots []zorder.Slot, p vector.Pt) (domain.PlacedElement, bool) {
	for i := len(slots) - 1; i >= 0; i-- {
		el := slots[i].Element
		vp, err := tr.ToViewport(el.Placement)
		if err != nil {
			continue
		}
		r := vector.R(vp.X, vp.Y, float32(el.Width), float32(el.Height))
		if r.Contains(p) {
			return el, true
		}
	}
	return domain.PlacedElement{}, false
}

// sessionBackend narrows the HTTP client to the session's backend port.
type sessionBackend struct {
	*backend.Client
}

func (b sessionBackend) ListElements(ctx context.Context, all bool) ([]domain.PlacedElement, error) {
	scope := backend.ScopeActive
	if all {
		scope = backend.ScopeAll
	}
	return b.Client.ListElements(ctx, scope)
}
