/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textstyle manages the style overrides of the four fixed page
// labels. It mirrors the element reconciler on a smaller scale: edits apply
// optimistically to a local cache and are debounced out to the backend per
// (page, label) key. The footer and page-number labels are stylable but
// positionally fixed; any position reaching them is stripped on write and
// forced back to unset on read.
package textstyle

import (
	"context"
	"sync"
	"time"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/reconcile"
)

// Backend is the slice of the storage API the overlay needs.
type Backend interface {
	GetTextStyle(ctx context.Context, page int, label domain.LabelType) (domain.TextStyleOverride, error)
	UpsertTextStyle(ctx context.Context, page int, label domain.LabelType, patch domain.StylePatch) error
	UpdatePageContent(ctx context.Context, page int, title, body *string) error
}

// Config holds the debounce windows for style and content writes.
type Config struct {
	StyleDelay   time.Duration
	ContentDelay time.Duration
}

func DefaultConfig() Config {
	return Config{StyleDelay: 100 * time.Millisecond, ContentDelay: 1000 * time.Millisecond}
}

type key struct {
	page  int
	label domain.LabelType
}

type styleEntry struct {
	buffer domain.StylePatch
	timer  reconcile.Timer
}

type contentEntry struct {
	title, body *string
	timer       reconcile.Timer
}

// Overlay is the text-style state machine for fixed labels.
type Overlay struct {
	backend  Backend
	cfg      Config
	newTimer reconcile.TimerFactory
	onError  func(page int, label domain.LabelType, err error)

	mu      sync.Mutex
	styles  map[key]domain.TextStyleOverride
	pending map[key]*styleEntry
	content map[int]*contentEntry
}

func New(backend Backend, cfg Config, newTimer reconcile.TimerFactory, onError func(int, domain.LabelType, error)) *Overlay {
	if newTimer == nil {
		newTimer = reconcile.AfterFunc
	}
	if onError == nil {
		onError = func(int, domain.LabelType, error) {}
	}
	return &Overlay{
		backend:  backend,
		cfg:      cfg,
		newTimer: newTimer,
		onError:  onError,
		styles:   make(map[key]domain.TextStyleOverride),
		pending:  make(map[key]*styleEntry),
		content:  make(map[int]*contentEntry),
	}
}

// Load fetches the four label overrides of one page into the cache.
// Pending local edits stay on top of whatever the backend returns.
func (o *Overlay) Load(ctx context.Context, page int) error {
	labels := []domain.LabelType{domain.LabelTitle, domain.LabelBody, domain.LabelFooterInfo, domain.LabelPageIndex}
	for _, label := range labels {
		ov, err := o.backend.GetTextStyle(ctx, page, label)
		if err != nil {
			return err
		}
		k := key{page, label}
		ov = ov.Normalized()
		o.mu.Lock()
		if e, ok := o.pending[k]; ok {
			e.buffer.Apply(&ov)
		}
		o.styles[k] = ov
		o.mu.Unlock()
	}
	return nil
}

// Adopt replaces the cached overrides with a fresh backend snapshot and
// re-applies any still-pending edits on top.
func (o *Overlay) Adopt(overrides []domain.TextStyleOverride) {
	o.mu.Lock()
	defer o.mu.Unlock()
	next := make(map[key]domain.TextStyleOverride, len(overrides))
	for _, ov := range overrides {
		k := key{ov.Page, ov.Label}
		ov = ov.Normalized()
		if e, ok := o.pending[k]; ok {
			e.buffer.Apply(&ov)
		}
		next[k] = ov
	}
	o.styles = next
}

// Style returns the override for one label, normalized; a zero override
// with the key filled in when none is stored.
func (o *Overlay) Style(page int, label domain.LabelType) domain.TextStyleOverride {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ov, ok := o.styles[key{page, label}]; ok {
		return ov.Normalized()
	}
	return domain.TextStyleOverride{Page: page, Label: label}
}

// ScheduleStyle applies a style patch optimistically and debounces the
// upsert. Positions submitted for fixed labels are dropped before anything
// is stored or sent.
func (o *Overlay) ScheduleStyle(page int, label domain.LabelType, patch domain.StylePatch) {
	if label.PositionFixed() {
		patch.PositionX = nil
		patch.PositionY = nil
	}

	k := key{page, label}
	o.mu.Lock()
	ov, ok := o.styles[k]
	if !ok {
		ov = domain.TextStyleOverride{Page: page, Label: label}
	}
	patch.Apply(&ov)
	o.styles[k] = ov

	e, ok := o.pending[k]
	if !ok {
		e = &styleEntry{}
		o.pending[k] = e
	}
	e.buffer = e.buffer.Merge(patch)
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = o.newTimer(o.cfg.StyleDelay, func() { o.fireStyle(k) })
	o.mu.Unlock()
}

// ResetPosition forces a label's position override back to unset, the only
// position write the fixed labels accept.
func (o *Overlay) ResetPosition(page int, label domain.LabelType) {
	o.ScheduleStyle(page, label, domain.StylePatch{ResetPosition: true})
}

func (o *Overlay) fireStyle(k key) {
	o.mu.Lock()
	e, ok := o.pending[k]
	if !ok {
		o.mu.Unlock()
		return
	}
	sending := e.buffer
	delete(o.pending, k)
	o.mu.Unlock()

	if err := o.backend.UpsertTextStyle(context.Background(), k.page, k.label, sending); err != nil {
		o.mu.Lock()
		ne, ok := o.pending[k]
		if !ok {
			ne = &styleEntry{}
			o.pending[k] = ne
		}
		ne.buffer = sending.Merge(ne.buffer)
		o.mu.Unlock()
		o.onError(k.page, k.label, err)
	}
}

// ScheduleContent buffers a page's title/body text and debounces the write
// behind the typing burst.
func (o *Overlay) ScheduleContent(page int, title, body *string) {
	if title == nil && body == nil {
		return
	}
	o.mu.Lock()
	e, ok := o.content[page]
	if !ok {
		e = &contentEntry{}
		o.content[page] = e
	}
	if title != nil {
		e.title = title
	}
	if body != nil {
		e.body = body
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = o.newTimer(o.cfg.ContentDelay, func() { o.fireContent(page) })
	o.mu.Unlock()
}

func (o *Overlay) fireContent(page int) {
	o.mu.Lock()
	e, ok := o.content[page]
	if !ok {
		o.mu.Unlock()
		return
	}
	title, body := e.title, e.body
	delete(o.content, page)
	o.mu.Unlock()

	if err := o.backend.UpdatePageContent(context.Background(), page, title, body); err != nil {
		o.mu.Lock()
		if ne, ok := o.content[page]; ok {
			if ne.title == nil {
				ne.title = title
			}
			if ne.body == nil {
				ne.body = body
			}
		} else {
			o.content[page] = &contentEntry{title: title, body: body}
		}
		o.mu.Unlock()
		o.onError(page, domain.LabelBody, err)
	}
}

// DuplicateStyle copies one label's typography to a set of target pages.
// Content and position overrides do not travel. Writes are immediate, the
// action is explicit and rare.
func (o *Overlay) DuplicateStyle(ctx context.Context, srcPage int, label domain.LabelType, targets []int) error {
	src := o.Style(srcPage, label)
	for _, page := range targets {
		if page == srcPage {
			continue
		}
		dup := src.CopyStyleTo(page)
		patch := domain.StylePatch{
			FontFamily: strPtr(dup.FontFamily),
			FontSize:   intPtr(dup.FontSize),
			FontWeight: strPtr(dup.FontWeight),
			FontStyle:  strPtr(dup.FontStyle),
			Color:      strPtr(dup.Color),
		}
		if err := o.backend.UpsertTextStyle(ctx, page, label, patch); err != nil {
			return err
		}
		o.mu.Lock()
		o.styles[key{page, label}] = dup
		o.mu.Unlock()
	}
	return nil
}

// PendingStyles snapshots the unsent style buffers for reload re-apply.
func (o *Overlay) PendingStyles() map[int]map[domain.LabelType]domain.StylePatch {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[int]map[domain.LabelType]domain.StylePatch)
	for k, e := range o.pending {
		byLabel, ok := out[k.page]
		if !ok {
			byLabel = make(map[domain.LabelType]domain.StylePatch)
			out[k.page] = byLabel
		}
		byLabel[k.label] = e.buffer
	}
	return out
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
