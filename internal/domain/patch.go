/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "encoding/json"

// ElementPatch is a partial update to a placed element. nil fields are left
// untouched. The same patch value serves both the optimistic in-memory apply
// and the wire PATCH body, so the two can never drift apart.
type ElementPatch struct {
	PositionX *int
	PositionY *int
	Rotation  *int
	Width     *int
	Height    *int
	ZIndex    *int
	Scale     *int
	IsActive  *bool
	IsLocked  *bool

	URL         *string
	TextContent *string
	FontFamily  *string
	FontSize    *int
	FontWeight  *string
	FontStyle   *string
	Color       *string

	Opacity       *float64
	BlurRadius    *int
	GlowColor     *string
	GlowIntensity *int
	ShadowColor   *string
	ShadowBlur    *int
	ShadowOffsetX *int
	ShadowOffsetY *int

	// PageNumber rebinds the element to a page; DetachPage makes it global.
	// Setting both is a caller bug; DetachPage wins.
	PageNumber *int
	DetachPage bool
}

// PositionPatch builds the minimal patch a settled drag produces.
func PositionPatch(x, y int) ElementPatch {
	return ElementPatch{PositionX: &x, PositionY: &y}
}

// TextPatch builds the patch a content keystroke burst produces.
func TextPatch(content string) ElementPatch {
	return ElementPatch{TextContent: &content}
}

// IsZero reports whether the patch carries no change at all.
func (p ElementPatch) IsZero() bool {
	return p == ElementPatch{}
}

// TouchesPosition reports whether the patch mutates positionX/positionY.
func (p ElementPatch) TouchesPosition() bool {
	return p.PositionX != nil || p.PositionY != nil
}

// Merge folds a later patch into p; later non-nil fields win.
func (p ElementPatch) Merge(later ElementPatch) ElementPatch {
	out := p
	if later.PositionX != nil {
		out.PositionX = later.PositionX
	}
	if later.PositionY != nil {
		out.PositionY = later.PositionY
	}
	if later.Rotation != nil {
		out.Rotation = later.Rotation
	}
	if later.Width != nil {
		out.Width = later.Width
	}
	if later.Height != nil {
		out.Height = later.Height
	}
	if later.ZIndex != nil {
		out.ZIndex = later.ZIndex
	}
	if later.Scale != nil {
		out.Scale = later.Scale
	}
	if later.IsActive != nil {
		out.IsActive = later.IsActive
	}
	if later.IsLocked != nil {
		out.IsLocked = later.IsLocked
	}
	if later.URL != nil {
		out.URL = later.URL
	}
	if later.TextContent != nil {
		out.TextContent = later.TextContent
	}
	if later.FontFamily != nil {
		out.FontFamily = later.FontFamily
	}
	if later.FontSize != nil {
		out.FontSize = later.FontSize
	}
	if later.FontWeight != nil {
		out.FontWeight = later.FontWeight
	}
	if later.FontStyle != nil {
		out.FontStyle = later.FontStyle
	}
	if later.Color != nil {
		out.Color = later.Color
	}
	if later.Opacity != nil {
		out.Opacity = later.Opacity
	}
	if later.BlurRadius != nil {
		out.BlurRadius = later.BlurRadius
	}
	if later.GlowColor != nil {
		out.GlowColor = later.GlowColor
	}
	if later.GlowIntensity != nil {
		out.GlowIntensity = later.GlowIntensity
	}
	if later.ShadowColor != nil {
		out.ShadowColor = later.ShadowColor
	}
	if later.ShadowBlur != nil {
		out.ShadowBlur = later.ShadowBlur
	}
	if later.ShadowOffsetX != nil {
		out.ShadowOffsetX = later.ShadowOffsetX
	}
	if later.ShadowOffsetY != nil {
		out.ShadowOffsetY = later.ShadowOffsetY
	}
	if later.PageNumber != nil {
		out.PageNumber = later.PageNumber
		out.DetachPage = false
	}
	if later.DetachPage {
		out.DetachPage = true
		out.PageNumber = nil
	}
	return out
}

// Apply mutates the element in place. Placement changes preserve the current
// coordinates unless the patch also carries a position.
func (p ElementPatch) Apply(e *PlacedElement) {
	x, y := e.Position()
	if p.PositionX != nil {
		x = *p.PositionX
	}
	if p.PositionY != nil {
		y = *p.PositionY
	}
	switch {
	case p.DetachPage:
		e.Placement = GlobalPlacement{X: x, Y: y}
	case p.PageNumber != nil:
		e.Placement = PagePlacement{Page: *p.PageNumber, X: x, Y: y}
	default:
		e.MoveTo(x, y)
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
	if p.Width != nil {
		e.Width = *p.Width
	}
	if p.Height != nil {
		e.Height = *p.Height
	}
	if p.ZIndex != nil {
		e.ZIndex = *p.ZIndex
	}
	if p.Scale != nil {
		e.Scale = *p.Scale
	}
	if p.IsActive != nil {
		e.IsActive = *p.IsActive
	}
	if p.IsLocked != nil {
		e.IsLocked = *p.IsLocked
	}
	if p.URL != nil {
		e.URL = *p.URL
	}
	if p.TextContent != nil {
		e.TextContent = *p.TextContent
	}
	if p.FontFamily != nil {
		e.Text.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		e.Text.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		e.Text.FontWeight = *p.FontWeight
	}
	if p.FontStyle != nil {
		e.Text.FontStyle = *p.FontStyle
	}
	if p.Color != nil {
		e.Text.Color = *p.Color
	}
	if p.Opacity != nil {
		e.Effects.Opacity = *p.Opacity
	}
	if p.BlurRadius != nil {
		e.Effects.BlurRadius = *p.BlurRadius
	}
	if p.GlowColor != nil {
		e.Effects.GlowColor = *p.GlowColor
	}
	if p.GlowIntensity != nil {
		e.Effects.GlowIntensity = *p.GlowIntensity
	}
	if p.ShadowColor != nil {
		e.Effects.ShadowColor = *p.ShadowColor
	}
	if p.ShadowBlur != nil {
		e.Effects.ShadowBlur = *p.ShadowBlur
	}
	if p.ShadowOffsetX != nil {
		e.Effects.ShadowOffsetX = *p.ShadowOffsetX
	}
	if p.ShadowOffsetY != nil {
		e.Effects.ShadowOffsetY = *p.ShadowOffsetY
	}
}

// Fields returns the wire representation of the patch: only the touched
// fields, keyed by their storage names. DetachPage emits an explicit null.
func (p ElementPatch) Fields() map[string]any {
	m := map[string]any{}
	put := func(key string, v any) { m[key] = v }
	if p.PositionX != nil {
		put("position_x", *p.PositionX)
	}
	if p.PositionY != nil {
		put("position_y", *p.PositionY)
	}
	if p.Rotation != nil {
		put("rotation", *p.Rotation)
	}
	if p.Width != nil {
		put("width", *p.Width)
	}
	if p.Height != nil {
		put("height", *p.Height)
	}
	if p.ZIndex != nil {
		put("z_index", *p.ZIndex)
	}
	if p.Scale != nil {
		put("scale", *p.Scale)
	}
	if p.IsActive != nil {
		put("is_active", *p.IsActive)
	}
	if p.IsLocked != nil {
		put("is_locked", *p.IsLocked)
	}
	if p.URL != nil {
		put("url", *p.URL)
	}
	if p.TextContent != nil {
		put("text_content", *p.TextContent)
	}
	if p.FontFamily != nil {
		put("font_family", *p.FontFamily)
	}
	if p.FontSize != nil {
		put("font_size", *p.FontSize)
	}
	if p.FontWeight != nil {
		put("font_weight", *p.FontWeight)
	}
	if p.FontStyle != nil {
		put("font_style", *p.FontStyle)
	}
	if p.Color != nil {
		put("color", *p.Color)
	}
	if p.Opacity != nil {
		put("opacity", *p.Opacity)
	}
	if p.BlurRadius != nil {
		put("blur", *p.BlurRadius)
	}
	if p.GlowColor != nil {
		put("glow_color", *p.GlowColor)
	}
	if p.GlowIntensity != nil {
		put("glow_intensity", *p.GlowIntensity)
	}
	if p.ShadowColor != nil {
		put("shadow_color", *p.ShadowColor)
	}
	if p.ShadowBlur != nil {
		put("shadow_blur", *p.ShadowBlur)
	}
	if p.ShadowOffsetX != nil {
		put("shadow_x", *p.ShadowOffsetX)
	}
	if p.ShadowOffsetY != nil {
		put("shadow_y", *p.ShadowOffsetY)
	}
	switch {
	case p.DetachPage:
		put("page_number", nil)
	case p.PageNumber != nil:
		put("page_number", *p.PageNumber)
	}
	return m
}

// MarshalJSON emits the wire patch body.
func (p ElementPatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Fields())
}

// StylePatch is a partial update to a text-style override.
type StylePatch struct {
	FontFamily *string
	FontSize   *int
	FontWeight *string
	FontStyle  *string
	Color      *string

	PositionX *int
	PositionY *int
	// ResetPosition clears the stored override back to the default in-flow
	// position; it always wins over PositionX/PositionY.
	ResetPosition bool
}

// Merge folds a later style patch into p.
func (p StylePatch) Merge(later StylePatch) StylePatch {
	out := p
	if later.FontFamily != nil {
		out.FontFamily = later.FontFamily
	}
	if later.FontSize != nil {
		out.FontSize = later.FontSize
	}
	if later.FontWeight != nil {
		out.FontWeight = later.FontWeight
	}
	if later.FontStyle != nil {
		out.FontStyle = later.FontStyle
	}
	if later.Color != nil {
		out.Color = later.Color
	}
	if later.PositionX != nil {
		out.PositionX = later.PositionX
		out.ResetPosition = false
	}
	if later.PositionY != nil {
		out.PositionY = later.PositionY
		out.ResetPosition = false
	}
	if later.ResetPosition {
		out.ResetPosition = true
		out.PositionX = nil
		out.PositionY = nil
	}
	return out
}

// Apply mutates the override in place. Position writes against a fixed label
// are dropped here, mirroring the server-side rule.
func (p StylePatch) Apply(o *TextStyleOverride) {
	if p.FontFamily != nil {
		o.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		o.FontSize = *p.FontSize
	}
	if p.FontWeight != nil {
		o.FontWeight = *p.FontWeight
	}
	if p.FontStyle != nil {
		o.FontStyle = *p.FontStyle
	}
	if p.Color != nil {
		o.Color = *p.Color
	}
	if p.ResetPosition {
		o.PositionX = nil
		o.PositionY = nil
	} else if !o.Label.PositionFixed() {
		if p.PositionX != nil {
			v := *p.PositionX
			o.PositionX = &v
		}
		if p.PositionY != nil {
			v := *p.PositionY
			o.PositionY = &v
		}
	}
}

// Fields returns the wire representation of the style patch.
func (p StylePatch) Fields() map[string]any {
	m := map[string]any{}
	if p.FontFamily != nil {
		m["font_family"] = *p.FontFamily
	}
	if p.FontSize != nil {
		m["font_size"] = *p.FontSize
	}
	if p.FontWeight != nil {
		m["font_weight"] = *p.FontWeight
	}
	if p.FontStyle != nil {
		m["font_style"] = *p.FontStyle
	}
	if p.Color != nil {
		m["color"] = *p.Color
	}
	if p.ResetPosition {
		m["position_x"] = nil
		m["position_y"] = nil
	} else {
		if p.PositionX != nil {
			m["position_x"] = *p.PositionX
		}
		if p.PositionY != nil {
			m["position_y"] = *p.PositionY
		}
	}
	return m
}

// MarshalJSON emits the wire patch body.
func (p StylePatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Fields())
}

// decInt decodes a JSON number, coercing floats to integers the way the
// storage layer does.
func decInt(v json.RawMessage) (*int, error) {
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return nil, err
	}
	n := int(f)
	return &n, nil
}

func decStr(v json.RawMessage) (*string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func decBool(v json.RawMessage) (*bool, error) {
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func isNull(v json.RawMessage) bool { return string(v) == "null" }

// UnmarshalJSON parses a wire patch body back into its typed form. Explicit
// nulls carry meaning: a null page_number detaches the element. Unknown
// fields are ignored.
func (p *ElementPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := ElementPatch{}
	var err error
	for key, v := range raw {
		if isNull(v) {
			if key == "page_number" {
				out.DetachPage = true
			}
			continue
		}
		switch key {
		case "position_x":
			out.PositionX, err = decInt(v)
		case "position_y":
			out.PositionY, err = decInt(v)
		case "rotation":
			out.Rotation, err = decInt(v)
		case "width":
			out.Width, err = decInt(v)
		case "height":
			out.Height, err = decInt(v)
		case "z_index":
			out.ZIndex, err = decInt(v)
		case "scale":
			out.Scale, err = decInt(v)
		case "page_number":
			out.PageNumber, err = decInt(v)
		case "is_active":
			out.IsActive, err = decBool(v)
		case "is_locked":
			out.IsLocked, err = decBool(v)
		case "url":
			out.URL, err = decStr(v)
		case "text_content":
			out.TextContent, err = decStr(v)
		case "font_family":
			out.FontFamily, err = decStr(v)
		case "font_size":
			out.FontSize, err = decInt(v)
		case "font_weight":
			out.FontWeight, err = decStr(v)
		case "font_style":
			out.FontStyle, err = decStr(v)
		case "color":
			out.Color, err = decStr(v)
		case "opacity":
			var f float64
			if err = json.Unmarshal(v, &f); err == nil {
				out.Opacity = &f
			}
		case "blur":
			out.BlurRadius, err = decInt(v)
		case "glow_color":
			out.GlowColor, err = decStr(v)
		case "glow_intensity":
			out.GlowIntensity, err = decInt(v)
		case "shadow_color":
			out.ShadowColor, err = decStr(v)
		case "shadow_blur":
			out.ShadowBlur, err = decInt(v)
		case "shadow_x":
			out.ShadowOffsetX, err = decInt(v)
		case "shadow_y":
			out.ShadowOffsetY, err = decInt(v)
		}
		if err != nil {
			return &ValidationError{Field: key, Reason: err.Error()}
		}
	}
	*p = out
	return nil
}

// UnmarshalJSON parses a wire style patch. Null positions mean "reset to
// the default in-flow position".
func (p *StylePatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := StylePatch{}
	var err error
	for key, v := range raw {
		if isNull(v) {
			if key == "position_x" || key == "position_y" {
				out.ResetPosition = true
				out.PositionX = nil
				out.PositionY = nil
			}
			continue
		}
		switch key {
		case "font_family":
			out.FontFamily, err = decStr(v)
		case "font_size":
			out.FontSize, err = decInt(v)
		case "font_weight":
			out.FontWeight, err = decStr(v)
		case "font_style":
			out.FontStyle, err = decStr(v)
		case "color":
			out.Color, err = decStr(v)
		case "position_x":
			if !out.ResetPosition {
				out.PositionX, err = decInt(v)
			}
		case "position_y":
			if !out.ResetPosition {
				out.PositionY, err = decInt(v)
			}
		}
		if err != nil {
			return &ValidationError{Field: key, Reason: err.Error()}
		}
	}
	*p = out
	return nil
}
