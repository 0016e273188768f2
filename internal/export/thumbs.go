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
	"image/png"

	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"
)

// Downscale resizes img so its longer edge is at most maxPx, preserving the
// aspect ratio. Images already within bounds are returned unchanged.
func Downscale(img image.Image, maxPx int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxPx && h <= maxPx {
		return img
	}
	if w >= h {
		h = h * maxPx / w
		w = maxPx
	} else {
		w = w * maxPx / h
		h = maxPx
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// embedThumb registers a downscaled PNG rendition of img under name.
// Returns false when encoding fails; the caller falls back to a frame.
func embedThumb(pdf *gofpdf.Fpdf, name string, img image.Image, maxPx int) bool {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Downscale(img, maxPx)); err != nil {
		return false
	}
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &buf)
	return pdf.Ok()
}
