/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package zorder

import (
	"testing"

	"pagedesigner/internal/domain"
)

func elem(id int64, kind domain.Kind, page, z int, locked bool) domain.PlacedElement {
	var p domain.Placement = domain.GlobalPlacement{}
	if page > 0 {
		p = domain.PagePlacement{Page: page}
	}
	return domain.PlacedElement{
		ID: id, Kind: kind, Placement: p, ZIndex: z,
		IsActive: true, IsLocked: locked,
	}
}

func TestLockedElementGoesToOverlay(t *testing.T) {
	s := Resolve(elem(1, domain.KindImage, 2, 6, true))
	if s.Layer != LayerOverlay || s.EffectiveZ != 10006 {
		t.Fatalf("unexpected slot: %+v", s)
	}
	if !s.TracksPage() {
		t.Fatalf("locked page-bound element must track its page")
	}
}

func TestLockedGlobalDoesNotTrackAPage(t *testing.T) {
	s := Resolve(elem(1, domain.KindImage, 0, 3, true))
	if s.Layer != LayerOverlay || s.TracksPage() {
		t.Fatalf("unexpected slot: %+v", s)
	}
}

func TestLockedMultilineTextStaysInPageFlow(t *testing.T) {
	s := Resolve(elem(2, domain.KindMultilineText, 3, 4, true))
	if s.Layer != LayerPageFlow {
		t.Fatalf("locked multiline text must stay inline, got %v", s.Layer)
	}
	if s.EffectiveZ >= 10000 {
		t.Fatalf("inline text must not get the overlay boost: %d", s.EffectiveZ)
	}
}

func TestRightPageOutranksLeftPage(t *testing.T) {
	left := Resolve(elem(1, domain.KindImage, 2, 5, false))
	right := Resolve(elem(2, domain.KindImage, 3, 5, false))
	if left.Layer != LayerPageFlow || right.Layer != LayerPageFlow {
		t.Fatalf("unexpected layers: %v %v", left.Layer, right.Layer)
	}
	if left.EffectiveZ != 5 || right.EffectiveZ != 105 {
		t.Fatalf("expected right-page boost: left=%d right=%d", left.EffectiveZ, right.EffectiveZ)
	}
}

func TestUnboundElementFloatsGlobally(t *testing.T) {
	s := Resolve(elem(4, domain.KindText, 0, 9, false))
	if s.Layer != LayerGlobal || s.EffectiveZ != 9 || s.Page != 0 {
		t.Fatalf("unexpected slot: %+v", s)
	}
}

func TestUnlockedPageBoundNeverInOverlay(t *testing.T) {
	for _, kind := range []domain.Kind{domain.KindImage, domain.KindAnimatedImage, domain.KindText, domain.KindMultilineText} {
		if s := Resolve(elem(1, kind, 2, 1, false)); s.Layer != LayerPageFlow {
			t.Fatalf("%s: unlocked page-bound element left the page flow: %v", kind, s.Layer)
		}
	}
}

func TestResolveAllPaintOrder(t *testing.T) {
	slots := ResolveAll([]domain.PlacedElement{
		elem(1, domain.KindImage, 2, 50, false),  // left page -> 50
		elem(2, domain.KindImage, 3, 1, false),   // right page -> 101
		elem(3, domain.KindImage, 0, 70, false),  // global -> 70
		elem(4, domain.KindImage, 2, 1, true),    // overlay -> 10001
		{ID: 5, Kind: domain.KindImage, Placement: domain.GlobalPlacement{}, IsActive: false},
	})
	if len(slots) != 4 {
		t.Fatalf("inactive element must be skipped, got %d slots", len(slots))
	}
	order := []int64{1, 3, 2, 4}
	for i, want := range order {
		if slots[i].Element.ID != want {
			t.Fatalf("paint order wrong at %d: got %d want %d", i, slots[i].Element.ID, want)
		}
	}
}
