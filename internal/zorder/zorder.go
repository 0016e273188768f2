/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package zorder decides which render surface an element lives on and its
// effective stacking index. Three surfaces exist: the per-page content flow,
// a global floating layer for unbound elements, and an always-on-top overlay
// for locked elements. Locked multiline text is the one exception, it stays
// in the page flow as read-only long-form content.
package zorder

import (
	"sort"

	"pagedesigner/internal/domain"
)

type Layer int

const (
	// LayerPageFlow renders inside the owning page's content flow.
	LayerPageFlow Layer = iota
	// LayerGlobal renders in the floating layer with no page affinity.
	LayerGlobal
	// LayerOverlay renders above everything; position is re-derived from
	// the owning page's live rectangle on every scroll and resize.
	LayerOverlay
)

func (l Layer) String() string {
	switch l {
	case LayerPageFlow:
		return "page-flow"
	case LayerGlobal:
		return "global"
	case LayerOverlay:
		return "overlay"
	}
	return "unknown"
}

const (
	overlayBoost   = 10000
	rightPageBoost = 100
)

// Slot is the resolved render assignment of one element.
type Slot struct {
	Element    domain.PlacedElement
	Layer      Layer
	Page       int // owning page, 0 for global
	EffectiveZ int
}

// TracksPage reports whether the slot's viewport position must be
// recomputed from the owning page's rectangle while scrolling. True only
// for locked page-bound elements lifted into the overlay.
func (s Slot) TracksPage() bool {
	return s.Layer == LayerOverlay && s.Page != 0
}

// rightHand reports whether a page renders on the right side of a spread.
// Page 1 is a right-hand page, as in a printed book.
func rightHand(page int) bool { return page%2 == 1 }

// Resolve assigns one element to its layer and effective z-index.
func Resolve(el domain.PlacedElement) Slot {
	page, bound := el.PageNumber()
	s := Slot{Element: el, Page: page}

	if el.IsLocked && !(bound && el.Kind == domain.KindMultilineText) {
		s.Layer = LayerOverlay
		s.EffectiveZ = el.ZIndex + overlayBoost
		return s
	}
	if !bound {
		s.Layer = LayerGlobal
		s.EffectiveZ = el.ZIndex
		return s
	}
	s.Layer = LayerPageFlow
	s.EffectiveZ = el.ZIndex
	if rightHand(page) {
		s.EffectiveZ += rightPageBoost
	}
	return s
}

// ResolveAll resolves every active element and returns the slots in paint
// order (lowest effective z first, id as the tie-breaker so ordering is
// deterministic).
func ResolveAll(elements []domain.PlacedElement) []Slot {
	slots := make([]Slot, 0, len(elements))
	for _, el := range elements {
		if !el.IsActive {
			continue
		}
		slots = append(slots, Resolve(el))
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].EffectiveZ != slots[j].EffectiveZ {
			return slots[i].EffectiveZ < slots[j].EffectiveZ
		}
		return slots[i].Element.ID < slots[j].Element.ID
	})
	return slots
}
