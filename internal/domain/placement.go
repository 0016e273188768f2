/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Placement is a closed sum over the two coordinate spaces an element can
// live in. Consumers must handle both cases in a type switch; there is no
// "maybe page-bound" middle ground.
//
//	switch p := el.Placement.(type) {
//	case domain.GlobalPlacement:  // viewport pixels
//	case domain.PagePlacement:    // pixels from the page's top-left corner
//	}
type Placement interface {
	// Coordinates returns the position in the placement's own space.
	Coordinates() (x, y int)
	// At returns a placement of the same kind at the given coordinates.
	At(x, y int) Placement

	sealed()
}

// GlobalPlacement positions an element in viewport pixels, floating over
// every page and unaffected by page layout.
type GlobalPlacement struct {
	X, Y int
}

func (p GlobalPlacement) Coordinates() (int, int) { return p.X, p.Y }
func (p GlobalPlacement) At(x, y int) Placement   { return GlobalPlacement{X: x, Y: y} }
func (GlobalPlacement) sealed()                   {}

// PagePlacement binds an element's origin to one page's top-left corner.
// Coordinates are page-local pixels and may be negative (an element may sit
// partially behind the page border).
type PagePlacement struct {
	Page int
	X, Y int
}

func (p PagePlacement) Coordinates() (int, int) { return p.X, p.Y }
func (p PagePlacement) At(x, y int) Placement   { return PagePlacement{Page: p.Page, X: x, Y: y} }
func (PagePlacement) sealed()                   {}
