/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gesture

import (
	"testing"
	"time"

	"pagedesigner/internal/vector"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMachine() (*Machine, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	return NewMachine(DefaultConfig(), clk.now), clk
}

func pageTarget() Target {
	return Target{
		ID: 7, PageBound: true,
		Position: vector.Pt{X: 40, Y: 40},
		Size:     vector.Size{W: 200, H: 120},
		PageSize: vector.Size{W: 450, H: 650},
	}
}

func TestUnderThresholdIsClick(t *testing.T) {
	m, _ := newTestMachine()
	m.PointerDown(ButtonPrimary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	if ef := m.PointerMove(vector.Pt{X: 563, Y: 158}, vector.Pt{X: 63, Y: 58}); ef.Kind != EffectNone {
		t.Fatalf("sub-threshold move must not mutate, got %v", ef.Kind)
	}
	ef := m.PointerUp(vector.Pt{X: 563, Y: 158}, vector.Pt{X: 63, Y: 58})
	if ef.Kind != EffectClick || ef.Target.ID != 7 {
		t.Fatalf("expected click outcome, got %+v", ef)
	}
	if m.State() != StateIdle {
		t.Fatalf("machine must return to idle after a click")
	}
}

func TestDragFollowsPointerWithCapturedOffset(t *testing.T) {
	m, _ := newTestMachine()
	// element page-local (40,40); pointer grabs it at local (60,60)
	m.PointerDown(ButtonPrimary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})

	ef := m.PointerMove(vector.Pt{X: 570, Y: 160}, vector.Pt{X: 70, Y: 60})
	if ef.Kind != EffectDragStart {
		t.Fatalf("threshold crossing must start the drag, got %v", ef.Kind)
	}

	// viewport delta (30,-10) from the down point
	ef = m.PointerMove(vector.Pt{X: 590, Y: 150}, vector.Pt{X: 90, Y: 50})
	if ef.Kind != EffectDragMove {
		t.Fatalf("expected drag move, got %v", ef.Kind)
	}
	if ef.Position.X != 70 || ef.Position.Y != 30 {
		t.Fatalf("anchor point jumped: %+v", ef.Position)
	}

	ef = m.PointerUp(vector.Pt{X: 590, Y: 150}, vector.Pt{X: 90, Y: 50})
	if ef.Kind != EffectSettle || ef.Position.X != 70 || ef.Position.Y != 30 {
		t.Fatalf("expected settle at final position, got %+v", ef)
	}
	if m.State() != StateSettling {
		t.Fatalf("expected settling state after drag")
	}
}

func TestDragClampsToPageBand(t *testing.T) {
	m, _ := newTestMachine()
	m.PointerDown(ButtonPrimary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	m.PointerMove(vector.Pt{X: 570, Y: 160}, vector.Pt{X: 70, Y: 60})

	ef := m.PointerMove(vector.Pt{X: -2000, Y: -2000}, vector.Pt{X: -2500, Y: -2100})
	if ef.Position.X != -200 || ef.Position.Y != -120 {
		t.Fatalf("expected clamp to fully-hidden corner, got %+v", ef.Position)
	}
}

func TestGlobalTargetNeverClamps(t *testing.T) {
	m, _ := newTestMachine()
	target := Target{ID: 3, Position: vector.Pt{X: 100, Y: 100}, Size: vector.Size{W: 50, H: 50}}
	m.PointerDown(ButtonPrimary, target, vector.Pt{X: 110, Y: 110}, vector.Pt{X: 110, Y: 110})
	m.PointerMove(vector.Pt{X: 120, Y: 110}, vector.Pt{X: 120, Y: 110})
	ef := m.PointerMove(vector.Pt{X: 5000, Y: 5000}, vector.Pt{X: 5000, Y: 5000})
	if ef.Position.X != 4990 || ef.Position.Y != 4990 {
		t.Fatalf("global drag must be unclamped, got %+v", ef.Position)
	}
}

func TestClickSuppressedAfterDrag(t *testing.T) {
	m, clk := newTestMachine()
	m.PointerDown(ButtonPrimary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	m.PointerMove(vector.Pt{X: 570, Y: 160}, vector.Pt{X: 70, Y: 60})
	m.PointerUp(vector.Pt{X: 570, Y: 160}, vector.Pt{X: 70, Y: 60})

	// an immediate follow-up tap must not open the editor
	m.PointerDown(ButtonPrimary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	ef := m.PointerUp(vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	if ef.Kind != EffectSelectOnly {
		t.Fatalf("click inside suppression window must be select-only, got %v", ef.Kind)
	}

	clk.advance(301 * time.Millisecond)
	m.PointerDown(ButtonPrimary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	ef = m.PointerUp(vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	if ef.Kind != EffectClick {
		t.Fatalf("click after the window must open the editor, got %v", ef.Kind)
	}
}

func TestSettlingDecaysToIdle(t *testing.T) {
	m, clk := newTestMachine()
	m.PointerDown(ButtonPrimary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	m.PointerMove(vector.Pt{X: 570, Y: 160}, vector.Pt{X: 70, Y: 60})
	m.PointerUp(vector.Pt{X: 570, Y: 160}, vector.Pt{X: 70, Y: 60})
	if m.State() != StateSettling {
		t.Fatalf("expected settling right after the drag")
	}
	clk.advance(301 * time.Millisecond)
	if m.State() != StateIdle {
		t.Fatalf("settling must decay to idle after the window")
	}
}

func TestLockedElementOnlyGivesFeedback(t *testing.T) {
	m, _ := newTestMachine()
	target := pageTarget()
	target.Locked = true
	ef := m.PointerDown(ButtonPrimary, target, vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	if ef.Kind != EffectLockedFeedback {
		t.Fatalf("expected locked feedback, got %v", ef.Kind)
	}
	if ef := m.PointerMove(vector.Pt{X: 700, Y: 700}, vector.Pt{X: 200, Y: 600}); ef.Kind != EffectNone {
		t.Fatalf("locked element must never move, got %v", ef.Kind)
	}
	ef = m.PointerUp(vector.Pt{X: 700, Y: 700}, vector.Pt{X: 200, Y: 600})
	if ef.Kind != EffectLockedRelease {
		t.Fatalf("expected feedback release on pointer-up, got %v", ef.Kind)
	}
}

func TestFixedLabelNeverDrags(t *testing.T) {
	m, _ := newTestMachine()
	label := Target{ID: 1, FixedPosition: true, Position: vector.Pt{X: 10, Y: 620}}
	m.PointerDown(ButtonPrimary, label, vector.Pt{X: 20, Y: 630}, vector.Pt{X: 20, Y: 630})
	if ef := m.PointerMove(vector.Pt{X: 300, Y: 100}, vector.Pt{X: 300, Y: 100}); ef.Kind != EffectNone {
		t.Fatalf("fixed label must stay armed, got %v", ef.Kind)
	}
	ef := m.PointerUp(vector.Pt{X: 300, Y: 100}, vector.Pt{X: 300, Y: 100})
	if ef.Kind != EffectClick {
		t.Fatalf("fixed label pointer-up must select, got %v", ef.Kind)
	}
}

func TestSecondaryButtonOpensMenuAndSuppresses(t *testing.T) {
	m, _ := newTestMachine()
	ef := m.PointerDown(ButtonSecondary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	if ef.Kind != EffectMenu {
		t.Fatalf("expected menu effect, got %v", ef.Kind)
	}
	// the trailing left-click artifact must not open the editor
	m.PointerDown(ButtonPrimary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	if ef := m.PointerUp(vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60}); ef.Kind != EffectSelectOnly {
		t.Fatalf("trailing click must be suppressed, got %v", ef.Kind)
	}
}

func TestMenuActionSuppressionWindow(t *testing.T) {
	m, clk := newTestMachine()
	m.SuppressClicks(DefaultConfig().MenuSuppress)

	m.PointerDown(ButtonPrimary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	if ef := m.PointerUp(vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60}); ef.Kind != EffectSelectOnly {
		t.Fatalf("click after a menu action must be suppressed, got %v", ef.Kind)
	}

	clk.advance(501 * time.Millisecond)
	m.PointerDown(ButtonPrimary, pageTarget(), vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60})
	if ef := m.PointerUp(vector.Pt{X: 560, Y: 160}, vector.Pt{X: 60, Y: 60}); ef.Kind != EffectClick {
		t.Fatalf("suppression must expire, got %v", ef.Kind)
	}
}
