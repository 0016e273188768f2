/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a layout proof of the placed elements: one PDF page
// per book page, elements drawn in paint order with their frames, rotation
// and content hints. Meant for review away from the live canvas, not for
// pixel-faithful output.
package export

import (
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"pagedesigner/internal/domain"
	"pagedesigner/internal/zorder"
)

// AssetLoader resolves an element URL to a decoded image. Optional; when
// nil, image elements are drawn as labeled frames.
type AssetLoader func(url string) (image.Image, error)

// ProofOptions controls the proof sheet. Page dimensions are in canvas
// pixels and map 1:1 to PDF points.
type ProofOptions struct {
	PageWidth  float64
	PageHeight float64
	Pages      []int // if empty, every page that has content
	Title      string
	Assets     AssetLoader
	// ThumbMaxPx bounds embedded image thumbnails; 0 means 512.
	ThumbMaxPx int
}

// WriteProof renders the proof sheet to w.
func WriteProof(w io.Writer, elements []domain.PlacedElement, opt ProofOptions) error {
	if opt.PageWidth <= 0 || opt.PageHeight <= 0 {
		opt.PageWidth, opt.PageHeight = 450, 650
	}
	if opt.ThumbMaxPx <= 0 {
		opt.ThumbMaxPx = 512
	}

	slots := zorder.ResolveAll(elements)
	pages := opt.Pages
	if len(pages) == 0 {
		pages = contentPages(slots)
	}
	if len(pages) == 0 {
		return fmt.Errorf("nothing to export")
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: opt.PageWidth, Ht: opt.PageHeight},
		OrientationStr: "",
	})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	pdf.SetFont("Helvetica", "", 9)

	for _, page := range pages {
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: opt.PageWidth, Ht: opt.PageHeight})
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.3)
		pdf.Rect(0, 0, opt.PageWidth, opt.PageHeight, "D")
		pdf.SetTextColor(120, 120, 120)
		pdf.Text(6, 12, fmt.Sprintf("page %d", page))

		for _, s := range slots {
			if !slotOnPage(s, page) {
				continue
			}
			drawSlot(pdf, s, opt)
		}
	}
	return pdf.Output(w)
}

// slotOnPage decides which elements appear on a proof page: the page's own
// flow, plus global and overlay elements which float over every page.
func slotOnPage(s zorder.Slot, page int) bool {
	switch s.Layer {
	case zorder.LayerPageFlow:
		return s.Page == page
	case zorder.LayerOverlay:
		return s.Page == 0 || s.Page == page
	default:
		return true
	}
}

func contentPages(slots []zorder.Slot) []int {
	seen := map[int]bool{}
	for _, s := range slots {
		if s.Page > 0 {
			seen[s.Page] = true
		}
	}
	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

func drawSlot(pdf *gofpdf.Fpdf, s zorder.Slot, opt ProofOptions) {
	el := s.Element
	x, y := el.Position()
	fx, fy := float64(x), float64(y)
	w, h := float64(el.Width), float64(el.Height)

	if el.Rotation != 0 {
		pdf.TransformBegin()
		pdf.TransformRotate(-float64(el.Rotation), fx+w/2, fy+h/2)
		defer pdf.TransformEnd()
	}

	switch {
	case el.Kind.IsText():
		pdf.SetDrawColor(150, 150, 220)
		pdf.SetLineWidth(0.3)
		pdf.Rect(fx, fy, w, h, "D")
		pdf.SetTextColor(40, 40, 40)
		pdf.ClipRect(fx, fy, w, h, false)
		pdf.Text(fx+2, fy+10, el.TextContent)
		pdf.ClipEnd()
	default:
		drawn := false
		if opt.Assets != nil && el.URL != "" {
			if img, err := opt.Assets(el.URL); err == nil {
				name := fmt.Sprintf("el-%d", el.ID)
				if embedThumb(pdf, name, img, opt.ThumbMaxPx) {
					pdf.ImageOptions(name, fx, fy, w, h, false,
						gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
					drawn = true
				}
			}
		}
		if !drawn {
			pdf.SetDrawColor(100, 100, 100)
			pdf.SetLineWidth(0.4)
			pdf.Rect(fx, fy, w, h, "D")
			pdf.Line(fx, fy, fx+w, fy+h)
			pdf.Line(fx+w, fy, fx, fy+h)
			pdf.SetTextColor(90, 90, 90)
			pdf.Text(fx+2, fy+h-3, el.URL)
		}
	}

	if el.IsLocked {
		pdf.SetTextColor(200, 60, 60)
		pdf.Text(fx+2, fy-2, "locked")
	}
}
