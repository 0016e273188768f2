/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package gesture turns raw pointer events into click, drag and menu
// outcomes. A single gesture walks Idle -> Armed -> Dragging -> Settling and
// back; the machine itself never touches the element store, it only emits
// effects for the session to apply. All timing (click suppression after a
// drag, suppression after a context menu) runs off an injectable clock so
// tests never sleep.
package gesture

import (
	"time"

	"pagedesigner/internal/vector"
)

type State int

const (
	StateIdle State = iota
	StateArmed
	StateDragging
	StateSettling
	StateLockedFeedback
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateDragging:
		return "dragging"
	case StateSettling:
		return "settling"
	case StateLockedFeedback:
		return "locked-feedback"
	}
	return "unknown"
}

type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Target describes what the pointer went down on. Position and sizes are in
// the target's own coordinate space (page-local for page-bound elements,
// viewport for global ones). FixedPosition marks targets that may be
// selected but never dragged, such as the footer and page-number labels.
type Target struct {
	ID            int64
	Locked        bool
	FixedPosition bool
	PageBound     bool
	Position      vector.Pt
	Size          vector.Size
	PageSize      vector.Size
}

// EffectKind tells the session what a pointer event amounted to.
type EffectKind int

const (
	EffectNone EffectKind = iota
	// EffectClick selects the target and opens its property view.
	EffectClick
	// EffectSelectOnly draws the selection outline without opening an
	// editor. Emitted for locked targets and for suppressed clicks that
	// still land on a target.
	EffectSelectOnly
	// EffectLockedFeedback shows the blocking indicator near the pointer.
	EffectLockedFeedback
	// EffectLockedRelease hides the blocking indicator.
	EffectLockedRelease
	// EffectDragStart closes any open property editor.
	EffectDragStart
	// EffectDragMove carries the next optimistic position for the target.
	EffectDragMove
	// EffectSettle carries the final position; the session schedules the
	// persistence write for it.
	EffectSettle
	// EffectMenu opens the context menu for the target.
	EffectMenu
)

type Effect struct {
	Kind     EffectKind
	Target   Target
	Position vector.Pt
}

// Config carries the interaction tunables. All values have working defaults
// via DefaultConfig; zero values would make every touch a drag.
type Config struct {
	ThresholdPx     float32
	ClickSuppress   time.Duration
	MenuSuppress    time.Duration
	FeedbackTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ThresholdPx:     5,
		ClickSuppress:   300 * time.Millisecond,
		MenuSuppress:    500 * time.Millisecond,
		FeedbackTimeout: 300 * time.Millisecond,
	}
}

// Machine is the per-surface interaction state machine. Not safe for
// concurrent use; all events arrive on the UI thread.
type Machine struct {
	cfg Config
	now func() time.Time

	state  State
	target Target

	downViewport vector.Pt
	downLocal    vector.Pt
	dragOffset   vector.Pt
	lastPosition vector.Pt

	suppressUntil time.Time
}

func NewMachine(cfg Config, now func() time.Time) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{cfg: cfg, now: now}
}

// State reports the current machine state. Settling decays to Idle once the
// click-suppression window has passed; the decay is lazy, there is no timer.
func (m *Machine) State() State {
	if m.state == StateSettling && m.now().After(m.suppressUntil) {
		m.state = StateIdle
	}
	return m.state
}

// Dragging reports whether a drag is in progress.
func (m *Machine) Dragging() bool { return m.state == StateDragging }

// TargetID returns the id of the element under the current gesture, or 0.
func (m *Machine) TargetID() int64 {
	if m.state == StateIdle {
		return 0
	}
	return m.target.ID
}

// SuppressClicks opens a suppression window, used by context-menu actions
// so the click artifact trailing a menu selection does not reopen editors.
func (m *Machine) SuppressClicks(d time.Duration) {
	until := m.now().Add(d)
	if until.After(m.suppressUntil) {
		m.suppressUntil = until
	}
}

func (m *Machine) suppressed() bool {
	return m.now().Before(m.suppressUntil)
}

// PointerDown starts a gesture. viewport is the raw pointer position and
// local is the same point in the target's own coordinate space; for global
// targets they are equal.
func (m *Machine) PointerDown(btn Button, t Target, viewport, local vector.Pt) Effect {
	if btn == ButtonSecondary {
		// never a drag; menu opens and a trailing click is suppressed
		m.SuppressClicks(m.cfg.FeedbackTimeout)
		return Effect{Kind: EffectMenu, Target: t}
	}
	if t.Locked && !t.FixedPosition {
		m.state = StateLockedFeedback
		m.target = t
		return Effect{Kind: EffectLockedFeedback, Target: t}
	}
	m.state = StateArmed
	m.target = t
	m.downViewport = viewport
	m.downLocal = local
	return Effect{Kind: EffectNone, Target: t}
}

// PointerMove advances a gesture. local is the pointer position converted
// into the target's own coordinate space; for global targets it equals
// viewport.
func (m *Machine) PointerMove(viewport, local vector.Pt) Effect {
	switch m.state {
	case StateArmed:
		if m.target.FixedPosition {
			return Effect{Kind: EffectNone, Target: m.target}
		}
		d := viewport.Sub(m.downViewport)
		if abs(d.X) <= m.cfg.ThresholdPx && abs(d.Y) <= m.cfg.ThresholdPx {
			return Effect{Kind: EffectNone, Target: m.target}
		}
		// threshold crossed: the grab offset is anchored at the down
		// point in element space so the grabbed spot stays under the
		// pointer for the whole drag
		m.dragOffset = m.downLocal.Sub(m.target.Position)
		m.state = StateDragging
		m.lastPosition = m.target.Position
		return Effect{Kind: EffectDragStart, Target: m.target}
	case StateDragging:
		pos := local.Sub(m.dragOffset)
		if m.target.PageBound {
			pos = vector.ClampDrag(pos, m.target.Size, m.target.PageSize)
		}
		m.lastPosition = pos
		return Effect{Kind: EffectDragMove, Target: m.target, Position: pos}
	}
	return Effect{Kind: EffectNone}
}

// PointerUp ends a gesture.
func (m *Machine) PointerUp(viewport, local vector.Pt) Effect {
	switch m.state {
	case StateLockedFeedback:
		m.state = StateIdle
		return Effect{Kind: EffectLockedRelease, Target: m.target}
	case StateArmed:
		m.state = StateIdle
		t := m.target
		if m.suppressed() {
			return Effect{Kind: EffectSelectOnly, Target: t}
		}
		if t.Locked {
			return Effect{Kind: EffectSelectOnly, Target: t}
		}
		return Effect{Kind: EffectClick, Target: t}
	case StateDragging:
		m.state = StateSettling
		m.SuppressClicks(m.cfg.ClickSuppress)
		return Effect{Kind: EffectSettle, Target: m.target, Position: m.lastPosition}
	}
	return Effect{Kind: EffectNone}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
