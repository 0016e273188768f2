/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package reconcile pushes optimistic local edits to the backend. Edits are
// buffered per element and debounced: position changes settle fast, text
// content waits out the typing burst. At most one write per element is in
// flight at any time; a failed write keeps the buffer so the next schedule
// resends the same fields. Timers come from an injectable factory so tests
// drive them by hand.
package reconcile

import (
	"context"
	"sync"
	"time"

	"pagedesigner/internal/domain"
)

// Writer is the slice of the backend the reconciler needs.
type Writer interface {
	UpdateElement(ctx context.Context, id int64, patch domain.ElementPatch) error
}

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// TimerFactory creates a timer that runs fn once after d.
type TimerFactory func(d time.Duration, fn func()) Timer

// AfterFunc is the production TimerFactory.
func AfterFunc(d time.Duration, fn func()) Timer { return time.AfterFunc(d, fn) }

// Config holds the debounce windows.
type Config struct {
	PositionDelay time.Duration
	TextDelay     time.Duration
}

func DefaultConfig() Config {
	return Config{PositionDelay: 100 * time.Millisecond, TextDelay: 1000 * time.Millisecond}
}

type entry struct {
	buffer   domain.ElementPatch
	timer    Timer
	inflight bool
}

// Reconciler debounces and dispatches element patches.
type Reconciler struct {
	writer   Writer
	cfg      Config
	newTimer TimerFactory
	onError  func(id int64, err error)

	mu      sync.Mutex
	entries map[int64]*entry
}

// New builds a reconciler. onError is invoked for failed writes and may be
// nil; it must not block, the session uses it to surface a non-fatal
// notification.
func New(writer Writer, cfg Config, newTimer TimerFactory, onError func(id int64, err error)) *Reconciler {
	if newTimer == nil {
		newTimer = AfterFunc
	}
	if onError == nil {
		onError = func(int64, error) {}
	}
	return &Reconciler{
		writer:   writer,
		cfg:      cfg,
		newTimer: newTimer,
		onError:  onError,
		entries:  make(map[int64]*entry),
	}
}

// Schedule merges patch into the element's pending buffer and restarts its
// debounce timer. The caller applies the patch to the element store itself;
// the reconciler only handles persistence.
func (r *Reconciler) Schedule(id int64, patch domain.ElementPatch) {
	if patch.IsZero() {
		return
	}
	delay := r.cfg.PositionDelay
	if patch.TextContent != nil {
		delay = r.cfg.TextDelay
	}

	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &entry{}
		r.entries[id] = e
	}
	e.buffer = e.buffer.Merge(patch)
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = r.newTimer(delay, func() { r.fire(id) })
	r.mu.Unlock()
}

// fire sends the accumulated buffer for one element. If a write is already
// in flight the buffer simply stays pending; flight completion reschedules.
func (r *Reconciler) fire(id int64) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || e.inflight || e.buffer.IsZero() {
		r.mu.Unlock()
		return
	}
	sending := e.buffer
	e.buffer = domain.ElementPatch{}
	e.inflight = true
	e.timer = nil
	r.mu.Unlock()

	err := r.writer.UpdateElement(context.Background(), id, sending)

	r.mu.Lock()
	e.inflight = false
	if err != nil {
		// resend the same fields on the next schedule, but let a newer
		// local edit win over the failed snapshot
		e.buffer = sending.Merge(e.buffer)
		r.mu.Unlock()
		r.onError(id, &domain.PersistenceError{Op: "update", ElementID: id, Err: err})
		return
	}
	if e.buffer.IsZero() {
		delete(r.entries, id)
		r.mu.Unlock()
		return
	}
	// edits accumulated while the write was in flight
	e.timer = r.newTimer(r.cfg.PositionDelay, func() { r.fire(id) })
	r.mu.Unlock()
}

// Pending snapshots the unsent buffers, keyed by element id. The session
// re-applies them on top of a fresh backend snapshot so a background reload
// cannot revert an in-flight edit.
func (r *Reconciler) Pending() map[int64]domain.ElementPatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int64]domain.ElementPatch, len(r.entries))
	for id, e := range r.entries {
		if !e.buffer.IsZero() {
			out[id] = e.buffer
		}
	}
	return out
}

// Forget drops any pending state for an element, used after delete.
func (r *Reconciler) Forget(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		if e.timer != nil {
			e.timer.Stop()
		}
		delete(r.entries, id)
	}
}

// Flush writes out every pending buffer immediately, skipping the debounce.
// Used on session shutdown. Errors are reported through onError.
func (r *Reconciler) Flush() {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.entries))
	for id, e := range r.entries {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.fire(id)
	}
}
