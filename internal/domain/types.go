/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain defines the data model shared by the canvas engine, the
// persistence layer and the storage backend: placed elements, their placement
// sum type, text-style overrides for the fixed page labels, and patches.
package domain

import (
	"encoding/json"
	"fmt"
)

// Kind identifies what a placed element renders as. Immutable after creation.
type Kind string

const (
	KindImage         Kind = "image"
	KindAnimatedImage Kind = "animated-image"
	KindText          Kind = "text"
	KindMultilineText Kind = "multiline-text"
)

// IsText reports whether the kind carries text content instead of a URL.
func (k Kind) IsText() bool { return k == KindText || k == KindMultilineText }

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindImage, KindAnimatedImage, KindText, KindMultilineText:
		return true
	}
	return false
}

// TextAttrs are the typography attributes of text-bearing elements.
type TextAttrs struct {
	FontFamily string `json:"font_family,omitempty"`
	FontSize   int    `json:"font_size,omitempty"`
	FontWeight string `json:"font_weight,omitempty"`
	FontStyle  string `json:"font_style,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Effects are the optional visual effects any element may carry.
type Effects struct {
	Opacity       float64 `json:"opacity"`
	BlurRadius    int     `json:"blur,omitempty"`
	GlowColor     string  `json:"glow_color,omitempty"`
	GlowIntensity int     `json:"glow_intensity,omitempty"`
	ShadowColor   string  `json:"shadow_color,omitempty"`
	ShadowBlur    int     `json:"shadow_blur,omitempty"`
	ShadowOffsetX int     `json:"shadow_x,omitempty"`
	ShadowOffsetY int     `json:"shadow_y,omitempty"`
}

// DefaultEffects returns the neutral effect set (fully opaque, no filters).
func DefaultEffects() Effects { return Effects{Opacity: 1.0} }

// PlacedElement is a visual object on the canvas. The Element Store owns the
// canonical copy during an edit session; storage holds the durable copy.
type PlacedElement struct {
	// ID is the server-assigned identity; zero until first persisted.
	ID        int64
	Kind      Kind
	Placement Placement
	// Rotation is in degrees, 0–359.
	Rotation int
	Width    int
	Height   int
	ZIndex   int
	// Scale is a rendering percentage, 100 = natural size.
	Scale    int
	IsActive bool
	IsLocked bool

	// URL is set for image and animated-image kinds.
	URL string
	// TextContent is set for text and multiline-text kinds.
	TextContent string
	Text        TextAttrs
	Effects     Effects
}

// Position returns the element's coordinates in its own coordinate space
// (viewport pixels when global, page-local pixels when page-bound).
func (e *PlacedElement) Position() (x, y int) {
	return e.Placement.Coordinates()
}

// MoveTo replaces the element's coordinates, preserving its placement kind.
func (e *PlacedElement) MoveTo(x, y int) {
	e.Placement = e.Placement.At(x, y)
}

// PageNumber returns the bound page and true, or 0 and false for global elements.
func (e *PlacedElement) PageNumber() (int, bool) {
	if p, ok := e.Placement.(PagePlacement); ok {
		return p.Page, true
	}
	return 0, false
}

// wireElement is the flat JSON shape shared with the storage API.
type wireElement struct {
	ID          int64   `json:"id,omitempty"`
	Type        Kind    `json:"type"`
	URL         string  `json:"url,omitempty"`
	PositionX   int     `json:"position_x"`
	PositionY   int     `json:"position_y"`
	PageNumber  *int    `json:"page_number"`
	Rotation    int     `json:"rotation"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ZIndex      int     `json:"z_index"`
	Scale       int     `json:"scale,omitempty"`
	IsActive    bool    `json:"is_active"`
	IsLocked    bool    `json:"is_locked"`
	TextContent string  `json:"text_content,omitempty"`
	FontFamily  string  `json:"font_family,omitempty"`
	FontSize    int     `json:"font_size,omitempty"`
	FontWeight  string  `json:"font_weight,omitempty"`
	FontStyle   string  `json:"font_style,omitempty"`
	Color       string  `json:"color,omitempty"`
	Opacity     float64 `json:"opacity"`
	Blur        int     `json:"blur,omitempty"`
	GlowColor   string  `json:"glow_color,omitempty"`
	GlowIntens  int     `json:"glow_intensity,omitempty"`
	ShadowColor string  `json:"shadow_color,omitempty"`
	ShadowBlur  int     `json:"shadow_blur,omitempty"`
	ShadowX     int     `json:"shadow_x,omitempty"`
	ShadowY     int     `json:"shadow_y,omitempty"`
}

// MarshalJSON flattens the placement union into the wire fields
// (position_x/position_y plus a nullable page_number).
func (e PlacedElement) MarshalJSON() ([]byte, error) {
	x, y := e.Placement.Coordinates()
	w := wireElement{
		ID:          e.ID,
		Type:        e.Kind,
		URL:         e.URL,
		PositionX:   x,
		PositionY:   y,
		Rotation:    e.Rotation,
		Width:       e.Width,
		Height:      e.Height,
		ZIndex:      e.ZIndex,
		Scale:       e.Scale,
		IsActive:    e.IsActive,
		IsLocked:    e.IsLocked,
		TextContent: e.TextContent,
		FontFamily:  e.Text.FontFamily,
		FontSize:    e.Text.FontSize,
		FontWeight:  e.Text.FontWeight,
		FontStyle:   e.Text.FontStyle,
		Color:       e.Text.Color,
		Opacity:     e.Effects.Opacity,
		Blur:        e.Effects.BlurRadius,
		GlowColor:   e.Effects.GlowColor,
		GlowIntens:  e.Effects.GlowIntensity,
		ShadowColor: e.Effects.ShadowColor,
		ShadowBlur:  e.Effects.ShadowBlur,
		ShadowX:     e.Effects.ShadowOffsetX,
		ShadowY:     e.Effects.ShadowOffsetY,
	}
	if p, ok := e.Placement.(PagePlacement); ok {
		n := p.Page
		w.PageNumber = &n
	}
	return json.Marshal(w)
}

// UnmarshalJSON rebuilds the placement union from the wire fields.
func (e *PlacedElement) UnmarshalJSON(data []byte) error {
	var w wireElement
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.ID = w.ID
	e.Kind = w.Type
	e.URL = w.URL
	if w.PageNumber != nil {
		e.Placement = PagePlacement{Page: *w.PageNumber, X: w.PositionX, Y: w.PositionY}
	} else {
		e.Placement = GlobalPlacement{X: w.PositionX, Y: w.PositionY}
	}
	e.Rotation = w.Rotation
	e.Width = w.Width
	e.Height = w.Height
	e.ZIndex = w.ZIndex
	e.Scale = w.Scale
	e.IsActive = w.IsActive
	e.IsLocked = w.IsLocked
	e.TextContent = w.TextContent
	e.Text = TextAttrs{
		FontFamily: w.FontFamily,
		FontSize:   w.FontSize,
		FontWeight: w.FontWeight,
		FontStyle:  w.FontStyle,
		Color:      w.Color,
	}
	e.Effects = Effects{
		Opacity:       w.Opacity,
		BlurRadius:    w.Blur,
		GlowColor:     w.GlowColor,
		GlowIntensity: w.GlowIntens,
		ShadowColor:   w.ShadowColor,
		ShadowBlur:    w.ShadowBlur,
		ShadowOffsetX: w.ShadowX,
		ShadowOffsetY: w.ShadowY,
	}
	return nil
}

// ValidateDraft checks the invariants a new element must satisfy before it is
// offered to storage. Kind-dependent content rules per the storage contract.
func ValidateDraft(e *PlacedElement) error {
	if !e.Kind.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown kind %q", e.Kind)}
	}
	if e.Kind.IsText() {
		if e.TextContent == "" {
			return &ValidationError{Field: "text_content", Reason: "required for text kinds"}
		}
	} else if e.URL == "" {
		return &ValidationError{Field: "url", Reason: fmt.Sprintf("required for %s elements", e.Kind)}
	}
	if e.Width < 1 || e.Height < 1 {
		return &ValidationError{Field: "width", Reason: "dimensions must be at least 1px"}
	}
	if e.Rotation < 0 || e.Rotation > 359 {
		return &ValidationError{Field: "rotation", Reason: "must be within 0 and 359 degrees"}
	}
	if e.Effects.Opacity < 0 || e.Effects.Opacity > 1 {
		return &ValidationError{Field: "opacity", Reason: "must be between 0 and 1"}
	}
	return nil
}

// LabelType names one of the four fixed per-page document labels.
type LabelType string

const (
	LabelTitle      LabelType = "title"
	LabelBody       LabelType = "body"
	LabelFooterInfo LabelType = "footer-info"
	LabelPageIndex  LabelType = "page-index"
)

// Valid reports whether l is one of the four known labels.
func (l LabelType) Valid() bool {
	switch l {
	case LabelTitle, LabelBody, LabelFooterInfo, LabelPageIndex:
		return true
	}
	return false
}

// PositionFixed reports whether the label is visually fixed: stylable, but any
// stored position override is ignored and forced back to unset on read.
func (l LabelType) PositionFixed() bool {
	return l == LabelFooterInfo || l == LabelPageIndex
}

// TextStyleOverride is a style (and for title/body an optional position)
// applied to one fixed label on one page. Unique per (Page, Label).
type TextStyleOverride struct {
	Page  int       `json:"page_number"`
	Label LabelType `json:"element_type"`

	FontFamily string `json:"font_family,omitempty"`
	FontSize   int    `json:"font_size,omitempty"`
	FontWeight string `json:"font_weight,omitempty"`
	FontStyle  string `json:"font_style,omitempty"`
	Color      string `json:"color,omitempty"`

	// PositionX/PositionY override the default in-flow position when both are
	// set. nil means "default position".
	PositionX *int `json:"position_x"`
	PositionY *int `json:"position_y"`
}

// Normalized returns a copy with the position override stripped for labels
// that never accept one. Every read of an override goes through this.
func (o TextStyleOverride) Normalized() TextStyleOverride {
	if o.Label.PositionFixed() {
		o.PositionX = nil
		o.PositionY = nil
	}
	return o
}

// CopyStyleTo returns an override carrying only o's typography, keyed to the
// target page. Positions and content are deliberately not duplicated.
func (o TextStyleOverride) CopyStyleTo(page int) TextStyleOverride {
	return TextStyleOverride{
		Page:       page,
		Label:      o.Label,
		FontFamily: o.FontFamily,
		FontSize:   o.FontSize,
		FontWeight: o.FontWeight,
		FontStyle:  o.FontStyle,
		Color:      o.Color,
	}
}
