/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"pagedesigner/internal/domain"
)

func sampleElements() []domain.PlacedElement {
	return []domain.PlacedElement{
		{
			ID: 1, Kind: domain.KindText,
			Placement:   domain.PagePlacement{Page: 2, X: 40, Y: 40},
			Width:       200, Height: 120, ZIndex: 3, IsActive: true,
			TextContent: "hello",
			Effects:     domain.DefaultEffects(),
		},
		{
			ID: 2, Kind: domain.KindImage,
			Placement: domain.GlobalPlacement{X: 10, Y: 10},
			Width:     64, Height: 64, ZIndex: 1, IsActive: true,
			URL:       "https://example.test/a.png",
			Rotation:  15,
			Effects:   domain.DefaultEffects(),
		},
	}
}

func TestWriteProofProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	err := WriteProof(&buf, sampleElements(), ProofOptions{Title: "layout proof"})
	if err != nil {
		t.Fatalf("WriteProof: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "%PDF") {
		t.Fatalf("output is not a PDF, starts with %q", out[:min(len(out), 8)])
	}
}

func TestWriteProofWithoutContentFails(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteProof(&buf, nil, ProofOptions{}); err == nil {
		t.Fatalf("expected an error for an empty export")
	}
}

func TestWriteProofEmbedsImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), A: 255})
		}
	}
	loader := func(url string) (image.Image, error) { return img, nil }

	var buf bytes.Buffer
	err := WriteProof(&buf, sampleElements(), ProofOptions{Assets: loader})
	if err != nil {
		t.Fatalf("WriteProof with assets: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "%PDF") {
		t.Fatalf("output is not a PDF")
	}
}

func TestDownscaleBoundsLongerEdge(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	got := Downscale(src, 200)
	b := got.Bounds()
	if b.Dx() != 200 || b.Dy() != 50 {
		t.Fatalf("expected 200x50, got %dx%d", b.Dx(), b.Dy())
	}

	small := image.NewRGBA(image.Rect(0, 0, 30, 20))
	if Downscale(small, 200) != small {
		t.Fatalf("images within bounds must pass through untouched")
	}
}
