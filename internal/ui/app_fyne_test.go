//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"context"
	"testing"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/session"
	"pagedesigner/internal/vector"
)

type noopBackend struct{}

func (noopBackend) ListElements(context.Context, bool) ([]domain.PlacedElement, error) {
	return nil, nil
}
func (noopBackend) CreateElement(_ context.Context, d domain.PlacedElement) (domain.PlacedElement, error) {
	d.ID = 1
	return d, nil
}
func (noopBackend) UpdateElement(context.Context, int64, domain.ElementPatch) error { return nil }
func (noopBackend) DeleteElement(context.Context, int64) error                      { return nil }

func TestDesignRendererDrawsPagesAndElements(t *testing.T) {
	spread := NewSpreadLayout(vector.Size{W: 450, H: 650}, 24)
	spread.SetPageCount(2)
	ed := session.New(noopBackend{}, spread, session.Options{})
	ed.Store.Put(domain.PlacedElement{
		ID: 7, Kind: domain.KindText, IsActive: true, TextContent: "hi",
		Placement: domain.PagePlacement{Page: 1, X: 10, Y: 10},
		Width:     100, Height: 40,
	})

	dc := newDesignCanvas(ed, spread, nil)
	r := dc.CreateRenderer().(*designRenderer)
	r.rebuild()

	// two page backgrounds plus box and label for the one element
	if got := len(r.Objects()); got != 4 {
		t.Fatalf("expected 4 canvas objects, got %d", got)
	}

	min := r.MinSize()
	if min.Width <= 0 || min.Height <= 0 {
		t.Fatalf("invalid min size: %v", min)
	}
}
