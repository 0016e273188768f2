/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package session owns one editing session: the element store, the gesture
// machine, the coordinate transformer and the reconciler, wired together
// behind the Editor. The surrounding UI feeds pointer events in and renders
// from snapshots; everything else (optimistic mutation, debounced
// persistence, z-order input) happens here.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/gesture"
	applog "pagedesigner/internal/log"
	"pagedesigner/internal/reconcile"
	"pagedesigner/internal/store"
	"pagedesigner/internal/textstyle"
	"pagedesigner/internal/transform"
	"pagedesigner/internal/vector"
)

// Backend is the slice of the storage API the session consumes.
type Backend interface {
	ListElements(ctx context.Context, all bool) ([]domain.PlacedElement, error)
	CreateElement(ctx context.Context, draft domain.PlacedElement) (domain.PlacedElement, error)
	UpdateElement(ctx context.Context, id int64, patch domain.ElementPatch) error
	DeleteElement(ctx context.Context, id int64) error
}

// Snapshot is the read-only design-mode state other views adapt their own
// click handling to.
type Snapshot struct {
	State      gesture.State
	SelectedID int64
	EditorOpen bool
	Dragging   bool
	LockedHint bool // locked-feedback indicator is showing
}

// Options carries the session tunables.
type Options struct {
	Gesture       gesture.Config
	Reconcile     reconcile.Config
	DefaultPage   vector.Size
	MenuSuppress  time.Duration
	Admin         bool
	Clock         func() time.Time
	Timers        reconcile.TimerFactory
	OnNotify      func(msg string) // non-blocking notifications
	OnMutated     func()           // reload hook for other views
}

// Editor is the session facade.
type Editor struct {
	backend Backend
	log     *slog.Logger

	Store       *store.ElementStore
	Transformer *transform.Transformer
	Machine     *gesture.Machine
	Reconciler  *reconcile.Reconciler

	opts Options

	mu          sync.Mutex
	selectedID  int64
	editorOpen  bool
	lockedHint  bool
	subscribers []func(Snapshot)
}

// New builds a session editor. metrics supplies live page rectangles; the
// UI layer implements it.
func New(backend Backend, metrics transform.PageMetrics, opts Options) *Editor {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.OnNotify == nil {
		opts.OnNotify = func(string) {}
	}
	if opts.OnMutated == nil {
		opts.OnMutated = func() {}
	}
	if opts.MenuSuppress == 0 {
		opts.MenuSuppress = opts.Gesture.MenuSuppress
	}
	if opts.DefaultPage.W == 0 {
		opts.DefaultPage = vector.Size{W: 450, H: 650}
	}

	e := &Editor{
		backend:     backend,
		log:         applog.WithComponent("session"),
		Store:       store.NewElementStore(),
		Transformer: transform.New(metrics),
		Machine:     gesture.NewMachine(opts.Gesture, opts.Clock),
		opts:        opts,
	}
	e.Reconciler = reconcile.New(backend, opts.Reconcile, opts.Timers, func(id int64, err error) {
		e.log.Warn("element write failed", slog.Int64("id", id), slog.Any("err", err))
		opts.OnNotify(fmt.Sprintf("saving element %d failed, will retry on next change", id))
	})
	return e
}

// Subscribe registers a snapshot listener, called after every state change.
func (e *Editor) Subscribe(fn func(Snapshot)) {
	e.mu.Lock()
	e.subscribers = append(e.subscribers, fn)
	e.mu.Unlock()
}

// State returns the current design-mode snapshot.
func (e *Editor) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() Snapshot {
	return Snapshot{
		State:      e.Machine.State(),
		SelectedID: e.selectedID,
		EditorOpen: e.editorOpen,
		Dragging:   e.Machine.Dragging(),
		LockedHint: e.lockedHint,
	}
}

func (e *Editor) publish() {
	e.mu.Lock()
	snap := e.snapshotLocked()
	subs := make([]func(Snapshot), len(e.subscribers))
	copy(subs, e.subscribers)
	e.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// Reload fetches a fresh element snapshot and re-applies pending local
// edits on top, so a racing background reload never reverts an in-flight
// change.
func (e *Editor) Reload(ctx context.Context) error {
	list, err := e.backend.ListElements(ctx, e.opts.Admin)
	if err != nil {
		return err
	}
	e.Store.ReplaceAll(list, e.Reconciler.Pending())
	e.publish()
	return nil
}

// target builds the gesture target for an element, converting its position
// into the element's own coordinate space.
func (e *Editor) target(el domain.PlacedElement) gesture.Target {
	x, y := el.Position()
	t := gesture.Target{
		ID:       el.ID,
		Locked:   el.IsLocked,
		Position: vector.Pt{X: float32(x), Y: float32(y)},
		Size:     vector.Size{W: float32(el.Width), H: float32(el.Height)},
	}
	if page, ok := el.PageNumber(); ok {
		t.PageBound = true
		t.PageSize = e.Transformer.PageSize(page, e.opts.DefaultPage)
	}
	return t
}

// localPoint converts a viewport point into the coordinate space of the
// element under the current gesture.
func (e *Editor) localPoint(el domain.PlacedElement, viewport vector.Pt) vector.Pt {
	page, ok := el.PageNumber()
	if !ok {
		return viewport
	}
	local, err := e.Transformer.ToLocal(page, viewport)
	if err != nil {
		// page momentarily unmounted; treat the viewport point as local
		// rather than aborting the gesture
		return viewport
	}
	return local
}

// PointerDown routes a pointer-down on an element into the gesture machine.
func (e *Editor) PointerDown(btn gesture.Button, id int64, viewport vector.Pt) {
	el, ok := e.Store.Get(id)
	if !ok {
		return
	}
	ef := e.Machine.PointerDown(btn, e.target(el), viewport, e.localPoint(el, viewport))
	e.applyEffect(ef)
}

// PointerMove advances the current gesture.
func (e *Editor) PointerMove(viewport vector.Pt) {
	id := e.Machine.TargetID()
	if id == 0 {
		return
	}
	el, ok := e.Store.Get(id)
	if !ok {
		return
	}
	ef := e.Machine.PointerMove(viewport, e.localPoint(el, viewport))
	e.applyEffect(ef)
}

// PointerUp finishes the current gesture.
func (e *Editor) PointerUp(viewport vector.Pt) {
	id := e.Machine.TargetID()
	if id == 0 {
		return
	}
	el, _ := e.Store.Get(id)
	ef := e.Machine.PointerUp(viewport, e.localPoint(el, viewport))
	e.applyEffect(ef)
}

func (e *Editor) applyEffect(ef gesture.Effect) {
	switch ef.Kind {
	case gesture.EffectClick:
		e.mu.Lock()
		e.selectedID = ef.Target.ID
		e.editorOpen = true
		e.mu.Unlock()
	case gesture.EffectSelectOnly:
		e.mu.Lock()
		e.selectedID = ef.Target.ID
		e.editorOpen = false
		e.mu.Unlock()
	case gesture.EffectLockedFeedback:
		e.mu.Lock()
		e.selectedID = ef.Target.ID
		e.editorOpen = false
		e.lockedHint = true
		e.mu.Unlock()
	case gesture.EffectLockedRelease:
		e.mu.Lock()
		e.lockedHint = false
		e.mu.Unlock()
	case gesture.EffectDragStart:
		e.mu.Lock()
		e.editorOpen = false
		e.mu.Unlock()
	case gesture.EffectDragMove:
		// optimistic, in-memory only; no scheduling per move
		e.Store.Apply(ef.Target.ID, domain.PositionPatch(
			vector.RoundPx(ef.Position.X), vector.RoundPx(ef.Position.Y)))
	case gesture.EffectSettle:
		patch := domain.PositionPatch(
			vector.RoundPx(ef.Position.X), vector.RoundPx(ef.Position.Y))
		e.Store.Apply(ef.Target.ID, patch)
		e.schedulePosition(ef.Target.ID, patch)
		e.mu.Lock()
		e.editorOpen = false
		e.selectedID = 0
		e.mu.Unlock()
	case gesture.EffectMenu:
		e.mu.Lock()
		e.selectedID = ef.Target.ID
		e.mu.Unlock()
	}
	if ef.Kind != gesture.EffectNone {
		e.publish()
	}
}

// schedulePosition persists a position change. Locked elements never get
// one, whatever path tried to produce it.
func (e *Editor) schedulePosition(id int64, patch domain.ElementPatch) {
	el, ok := e.Store.Get(id)
	if !ok || el.IsLocked {
		return
	}
	if !e.opts.Admin {
		return
	}
	e.Reconciler.Schedule(id, patch)
}

func (e *Editor) requireAdmin() error {
	if !e.opts.Admin {
		return domain.ErrUnauthorized
	}
	return nil
}

// Add creates a new element centered in the given viewport, immediately
// selected and unlocked, stacked above everything else.
func (e *Editor) Add(ctx context.Context, draft domain.PlacedElement, viewport vector.Size) (domain.PlacedElement, error) {
	if err := e.requireAdmin(); err != nil {
		return domain.PlacedElement{}, err
	}
	if draft.Placement == nil {
		x := vector.RoundPx((viewport.W - float32(draft.Width)) / 2)
		y := vector.RoundPx((viewport.H - float32(draft.Height)) / 2)
		draft.Placement = domain.GlobalPlacement{X: x, Y: y}
	}
	draft.IsActive = true
	draft.IsLocked = false
	draft.ZIndex = e.Store.MaxZIndex() + 1
	if draft.Scale == 0 {
		draft.Scale = 100
	}

	created, err := e.backend.CreateElement(ctx, draft)
	if err != nil {
		return domain.PlacedElement{}, err
	}
	e.Store.Put(created)
	e.mu.Lock()
	e.selectedID = created.ID
	e.editorOpen = true
	e.mu.Unlock()
	e.publish()
	e.opts.OnMutated()
	return created, nil
}

// Duplicate clones an element offset by +50/+50, same kind and content,
// new server-assigned id, selected and unlocked.
func (e *Editor) Duplicate(ctx context.Context, id int64) (domain.PlacedElement, error) {
	if err := e.requireAdmin(); err != nil {
		return domain.PlacedElement{}, err
	}
	src, ok := e.Store.Get(id)
	if !ok {
		return domain.PlacedElement{}, fmt.Errorf("element %d not found", id)
	}
	dup := src
	dup.ID = 0
	dup.IsLocked = false
	x, y := src.Position()
	dup.MoveTo(x+50, y+50)
	dup.ZIndex = e.Store.MaxZIndex() + 1

	created, err := e.backend.CreateElement(ctx, dup)
	if err != nil {
		return domain.PlacedElement{}, err
	}
	e.Store.Put(created)
	e.Machine.SuppressClicks(e.opts.MenuSuppress)
	e.mu.Lock()
	e.selectedID = created.ID
	e.editorOpen = false
	e.mu.Unlock()
	e.publish()
	e.opts.OnMutated()
	return created, nil
}

// RotateBy turns an element by the given degrees (the context menu uses
// +15/-15), wrapping into 0..359.
func (e *Editor) RotateBy(id int64, degrees int) error {
	if err := e.requireAdmin(); err != nil {
		return err
	}
	el, ok := e.Store.Get(id)
	if !ok {
		return fmt.Errorf("element %d not found", id)
	}
	next := ((el.Rotation+degrees)%360 + 360) % 360
	patch := domain.ElementPatch{Rotation: &next}
	e.Store.Apply(id, patch)
	e.Reconciler.Schedule(id, patch)
	e.Machine.SuppressClicks(e.opts.MenuSuppress)
	e.publish()
	return nil
}

// ToggleLock flips the lock flag. Locking moves the element to the overlay
// layer on the next render; unlocking returns it to its page flow.
func (e *Editor) ToggleLock(id int64) error {
	if err := e.requireAdmin(); err != nil {
		return err
	}
	el, ok := e.Store.Get(id)
	if !ok {
		return fmt.Errorf("element %d not found", id)
	}
	locked := !el.IsLocked
	patch := domain.ElementPatch{IsLocked: &locked}
	e.Store.Apply(id, patch)
	e.Reconciler.Schedule(id, patch)
	e.Machine.SuppressClicks(e.opts.MenuSuppress)
	e.publish()
	return nil
}

// SetActive toggles soft-delete visibility.
func (e *Editor) SetActive(id int64, active bool) error {
	if err := e.requireAdmin(); err != nil {
		return err
	}
	patch := domain.ElementPatch{IsActive: &active}
	if _, ok := e.Store.Apply(id, patch); !ok {
		return fmt.Errorf("element %d not found", id)
	}
	e.Reconciler.Schedule(id, patch)
	e.publish()
	return nil
}

// ApplyPatch is the property-panel entry point: any attribute except
// position-of-locked. Position fields on a locked element are refused.
func (e *Editor) ApplyPatch(id int64, patch domain.ElementPatch) error {
	if err := e.requireAdmin(); err != nil {
		return err
	}
	el, ok := e.Store.Get(id)
	if !ok {
		return fmt.Errorf("element %d not found", id)
	}
	if el.IsLocked && patch.TouchesPosition() {
		return &domain.ValidationError{Field: "position", Reason: "element is locked"}
	}
	e.Store.Apply(id, patch)
	e.Reconciler.Schedule(id, patch)
	e.publish()
	return nil
}

// Delete removes an element permanently and drops any pending writes for
// it.
func (e *Editor) Delete(ctx context.Context, id int64) error {
	if err := e.requireAdmin(); err != nil {
		return err
	}
	if err := e.backend.DeleteElement(ctx, id); err != nil {
		return err
	}
	e.Store.Remove(id)
	e.Reconciler.Forget(id)
	e.mu.Lock()
	if e.selectedID == id {
		e.selectedID = 0
		e.editorOpen = false
	}
	e.mu.Unlock()
	e.publish()
	e.opts.OnMutated()
	return nil
}

// ClearSelection drops the selection and closes any property editor.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	e.selectedID = 0
	e.editorOpen = false
	e.mu.Unlock()
	e.publish()
}

// Close flushes pending writes.
func (e *Editor) Close() {
	e.Reconciler.Flush()
}

// NewOverlay builds the text-style overlay sharing the session's timers and
// notification channel.
func (e *Editor) NewOverlay(backend textstyle.Backend) *textstyle.Overlay {
	return textstyle.New(backend, textstyle.Config{
		StyleDelay:   e.opts.Reconcile.PositionDelay,
		ContentDelay: e.opts.Reconcile.TextDelay,
	}, e.opts.Timers, func(page int, label domain.LabelType, err error) {
		e.log.Warn("style write failed",
			slog.Int("page", page), slog.String("label", string(label)), slog.Any("err", err))
		e.opts.OnNotify(fmt.Sprintf("saving %s style for page %d failed", label, page))
	})
}
