/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"testing"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/transform"
	"pagedesigner/internal/vector"
	"pagedesigner/internal/zorder"
)

func testLayout() *SpreadLayout {
	l := NewSpreadLayout(vector.Size{W: 450, H: 650}, 20)
	l.SetPageCount(4)
	return l
}

func TestSpreadLayoutBookConvention(t *testing.T) {
	l := testLayout()

	// page 1 sits alone on the right of the first row
	r1, ok := l.PageRect(1)
	if !ok {
		t.Fatalf("page 1 must be mounted")
	}
	if r1.X != 470 || r1.Y != 0 {
		t.Fatalf("page 1 misplaced: %+v", r1)
	}

	// pages 2 and 3 form the second spread
	r2, _ := l.PageRect(2)
	r3, _ := l.PageRect(3)
	if r2.X != 0 || r2.Y != 670 {
		t.Fatalf("page 2 misplaced: %+v", r2)
	}
	if r3.X != 470 || r3.Y != 670 {
		t.Fatalf("page 3 misplaced: %+v", r3)
	}

	if _, ok := l.PageRect(5); ok {
		t.Fatalf("pages past the count must be unmounted")
	}
	if _, ok := l.PageRect(0); ok {
		t.Fatalf("page 0 must never mount")
	}
}

func TestSpreadLayoutPansWithOrigin(t *testing.T) {
	l := testLayout()
	l.SetOrigin(vector.Pt{X: 30, Y: -100})
	r2, _ := l.PageRect(2)
	if r2.X != 30 || r2.Y != 570 {
		t.Fatalf("page 2 did not follow the origin: %+v", r2)
	}
}

type layoutMetrics struct{ l *SpreadLayout }

func (m layoutMetrics) PageRect(page int) (vector.Rect, bool) { return m.l.PageRect(page) }

func TestHitTestPicksTopmost(t *testing.T) {
	l := testLayout()
	tr := transform.New(layoutMetrics{l})

	elements := []domain.PlacedElement{
		{ID: 1, Kind: domain.KindImage, IsActive: true, URL: "a.png",
			Placement: domain.PagePlacement{Page: 2, X: 10, Y: 10},
			Width:     200, Height: 200, ZIndex: 1},
		{ID: 2, Kind: domain.KindText, IsActive: true, TextContent: "over",
			Placement: domain.PagePlacement{Page: 2, X: 50, Y: 50},
			Width:     100, Height: 100, ZIndex: 5},
	}
	slots := zorder.ResolveAll(elements)

	// page 2 is at viewport (0,670); point inside both elements
	el, ok := HitTest(tr, slots, vector.Pt{X: 80, Y: 750})
	if !ok || el.ID != 2 {
		t.Fatalf("expected topmost element 2, got %+v ok=%v", el, ok)
	}

	// point inside only the lower element
	el, ok = HitTest(tr, slots, vector.Pt{X: 20, Y: 690})
	if !ok || el.ID != 1 {
		t.Fatalf("expected element 1, got %+v ok=%v", el, ok)
	}

	if _, ok := HitTest(tr, slots, vector.Pt{X: 2000, Y: 2000}); ok {
		t.Fatalf("miss must report no hit")
	}
}

func TestHitTestLockedOverlayAboveUnlocked(t *testing.T) {
	l := testLayout()
	tr := transform.New(layoutMetrics{l})

	elements := []domain.PlacedElement{
		{ID: 1, Kind: domain.KindImage, IsActive: true, URL: "a.png",
			Placement: domain.PagePlacement{Page: 2, X: 10, Y: 10},
			Width:     200, Height: 200, ZIndex: 50},
		{ID: 2, Kind: domain.KindImage, IsActive: true, IsLocked: true, URL: "b.png",
			Placement: domain.PagePlacement{Page: 2, X: 10, Y: 10},
			Width:     200, Height: 200, ZIndex: 1},
	}
	el, ok := HitTest(tr, zorder.ResolveAll(elements), vector.Pt{X: 40, Y: 700})
	if !ok || el.ID != 2 {
		t.Fatalf("locked element must float above the page flow, got %+v", el)
	}
}
