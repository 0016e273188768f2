package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestElementJSONRoundTripPageBound(t *testing.T) {
	el := PlacedElement{
		ID:        7,
		Kind:      KindImage,
		Placement: PagePlacement{Page: 2, X: 40, Y: 40},
		Rotation:  15,
		Width:     200,
		Height:    120,
		ZIndex:    6,
		Scale:     100,
		IsActive:  true,
		URL:       "/assets/img/cover.png",
		Effects:   DefaultEffects(),
	}
	b, err := json.Marshal(el)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"page_number":2`) {
		t.Fatalf("expected page_number in wire form, got %s", b)
	}
	var back PlacedElement
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	p, ok := back.Placement.(PagePlacement)
	if !ok {
		t.Fatalf("expected PagePlacement, got %T", back.Placement)
	}
	if p.Page != 2 || p.X != 40 || p.Y != 40 {
		t.Fatalf("placement mismatch: %+v", p)
	}
}

func TestElementJSONGlobalHasNullPage(t *testing.T) {
	el := PlacedElement{Kind: KindText, Placement: GlobalPlacement{X: 10, Y: 20}, TextContent: "hi", Width: 100, Height: 30, Effects: DefaultEffects()}
	b, err := json.Marshal(el)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"page_number":null`) {
		t.Fatalf("global element must carry an explicit null page_number: %s", b)
	}
	var back PlacedElement
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := back.Placement.(GlobalPlacement); !ok {
		t.Fatalf("expected GlobalPlacement, got %T", back.Placement)
	}
}

func TestMoveToPreservesPlacementKind(t *testing.T) {
	el := PlacedElement{Placement: PagePlacement{Page: 3, X: 1, Y: 2}}
	el.MoveTo(70, 30)
	p, ok := el.Placement.(PagePlacement)
	if !ok {
		t.Fatalf("MoveTo changed placement kind to %T", el.Placement)
	}
	if p.Page != 3 || p.X != 70 || p.Y != 30 {
		t.Fatalf("unexpected placement after MoveTo: %+v", p)
	}

	g := PlacedElement{Placement: GlobalPlacement{X: 5, Y: 5}}
	g.MoveTo(-10, 400)
	if _, ok := g.Placement.(GlobalPlacement); !ok {
		t.Fatalf("MoveTo changed global placement kind to %T", g.Placement)
	}
}

func TestValidateDraftKindRules(t *testing.T) {
	img := PlacedElement{Kind: KindImage, Placement: GlobalPlacement{}, Width: 10, Height: 10, Effects: DefaultEffects()}
	if err := ValidateDraft(&img); err == nil {
		t.Fatalf("image without url must fail validation")
	}
	img.URL = "/assets/x.png"
	if err := ValidateDraft(&img); err != nil {
		t.Fatalf("valid image rejected: %v", err)
	}

	txt := PlacedElement{Kind: KindMultilineText, Placement: GlobalPlacement{}, Width: 10, Height: 10, Effects: DefaultEffects()}
	if err := ValidateDraft(&txt); err == nil {
		t.Fatalf("text without content must fail validation")
	}
	txt.TextContent = "lorem"
	if err := ValidateDraft(&txt); err != nil {
		t.Fatalf("valid text rejected: %v", err)
	}
}

func TestValidateDraftRanges(t *testing.T) {
	el := PlacedElement{Kind: KindImage, URL: "u", Placement: GlobalPlacement{}, Width: 0, Height: 10, Effects: DefaultEffects()}
	if err := ValidateDraft(&el); err == nil {
		t.Fatalf("zero width must fail")
	}
	el.Width = 10
	el.Rotation = 360
	if err := ValidateDraft(&el); err == nil {
		t.Fatalf("rotation 360 must fail")
	}
	el.Rotation = 0
	el.Effects.Opacity = 1.5
	if err := ValidateDraft(&el); err == nil {
		t.Fatalf("opacity above 1 must fail")
	}
}

func TestFixedLabelsNormalizeToUnsetPosition(t *testing.T) {
	x, y := 12, 34
	for _, label := range []LabelType{LabelFooterInfo, LabelPageIndex} {
		o := TextStyleOverride{Page: 1, Label: label, PositionX: &x, PositionY: &y}
		n := o.Normalized()
		if n.PositionX != nil || n.PositionY != nil {
			t.Fatalf("%s must read back with unset position, got %+v", label, n)
		}
	}
	// title keeps its override
	o := TextStyleOverride{Page: 1, Label: LabelTitle, PositionX: &x, PositionY: &y}
	n := o.Normalized()
	if n.PositionX == nil || *n.PositionX != 12 {
		t.Fatalf("title override must survive normalization")
	}
}

func TestCopyStyleToDropsContentAndPosition(t *testing.T) {
	x := 9
	src := TextStyleOverride{Page: 1, Label: LabelTitle, FontFamily: "Spectral", FontSize: 21, Color: "#222", PositionX: &x}
	dup := src.CopyStyleTo(4)
	if dup.Page != 4 || dup.Label != LabelTitle {
		t.Fatalf("wrong key on duplicate: %+v", dup)
	}
	if dup.FontFamily != "Spectral" || dup.FontSize != 21 || dup.Color != "#222" {
		t.Fatalf("typography not copied: %+v", dup)
	}
	if dup.PositionX != nil || dup.PositionY != nil {
		t.Fatalf("position must not be duplicated")
	}
}
