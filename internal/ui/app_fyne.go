//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"pagedesigner/internal/backend"
	"pagedesigner/internal/crash"
	"pagedesigner/internal/domain"
	"pagedesigner/internal/gesture"
	"pagedesigner/internal/journal"
	applog "pagedesigner/internal/log"
	"pagedesigner/internal/reconcile"
	"pagedesigner/internal/session"
	"pagedesigner/internal/vector"
	"pagedesigner/internal/zorder"
)

// Run starts the Fyne-based designer shell.
func Run(opts RunOptions) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	fyneApp := app.NewWithID("pagedesigner")
	w := fyneApp.NewWindow("Page Designer")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	ecfg := opts.Config.Editor
	pageSize := vector.Size{W: float32(ecfg.PageWidthPx), H: float32(ecfg.PageHeightPx)}
	if pageSize.W <= 0 || pageSize.H <= 0 {
		pageSize = vector.Size{W: 450, H: 650}
	}
	spread := NewSpreadLayout(pageSize, 24)
	spread.SetOrigin(vector.Pt{X: 20, Y: 20})

	timeout := time.Duration(opts.Config.Backend.TimeoutMs) * time.Millisecond
	client := backend.NewClient(opts.Config.Backend.BaseURL, opts.Token, timeout)

	status := widget.NewLabel("Ready")
	setStatus := func(msg string) {
		fyne.Do(func() { status.SetText(msg) })
	}

	gcfg := gesture.DefaultConfig()
	if ecfg.DragThresholdPx > 0 {
		gcfg.ThresholdPx = float32(ecfg.DragThresholdPx)
	}
	if ecfg.ClickSuppressionMs > 0 {
		gcfg.ClickSuppress = time.Duration(ecfg.ClickSuppressionMs) * time.Millisecond
	}
	if ecfg.MenuSuppressionMs > 0 {
		gcfg.MenuSuppress = time.Duration(ecfg.MenuSuppressionMs) * time.Millisecond
	}
	rcfg := reconcile.Config{}
	if ecfg.PositionDebounceMs > 0 {
		rcfg.PositionDelay = time.Duration(ecfg.PositionDebounceMs) * time.Millisecond
	}
	if ecfg.TextDebounceMs > 0 {
		rcfg.TextDelay = time.Duration(ecfg.TextDebounceMs) * time.Millisecond
	}

	ed := session.New(sessionBackend{client}, spread, session.Options{
		Gesture:     gcfg,
		Reconcile:   rcfg,
		DefaultPage: pageSize,
		Admin:       opts.Admin,
		OnNotify:    setStatus,
	})
	overlay := ed.NewOverlay(client)

	var jr *journal.Journal
	if opts.JournalDir != "" {
		j, err := journal.Open(opts.JournalDir)
		if err != nil {
			l.Warn("journal unavailable", slog.Any("err", err))
		} else {
			jr = j
		}
	}

	defer func() { crash.Recover(crash.Report{Dir: opts.JournalDir, State: pendingDump(ed)}) }()

	dc := newDesignCanvas(ed, spread, w)
	scroll := container.NewScroll(dc)

	reload := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if pages, err := client.ListPages(ctx); err == nil {
			spread.SetPageCount(len(pages))
		}
		if err := ed.Reload(ctx); err != nil {
			l.Warn("reload failed", slog.Any("err", err))
			setStatus(fmt.Sprintf("Reload failed: %v", err))
			return
		}
		if styles, err := client.ListTextStyles(ctx); err == nil {
			overlay.Adopt(styles)
		}
		// re-schedule edits journaled by a previous run that never reached
		// the backend
		if jr != nil {
			if pending, err := jr.PendingElements(ctx); err == nil {
				for id, p := range pending {
					ed.Reconciler.Schedule(id, p)
				}
			}
			if styles, err := jr.PendingStyles(ctx); err == nil {
				for page, m := range styles {
					for label, p := range m {
						overlay.ScheduleStyle(page, label, p)
					}
				}
			}
			if err := jr.Clear(ctx); err != nil {
				l.Warn("journal clear failed", slog.Any("err", err))
			}
		}
		setStatus(fmt.Sprintf("Loaded %d elements", ed.Store.Len()))
		fyne.Do(dc.Refresh)
	}

	props := newPropertyPanel(ed, w)
	labels := newLabelPanel(overlay, client, w)
	right := container.NewVBox(
		widget.NewLabel("Element"), props.root, widget.NewSeparator(),
		widget.NewLabel("Page labels"), labels.root,
	)

	toolbar := container.NewHBox(
		widget.NewButton("Add text", func() { showAddText(ed, dc, w) }),
		widget.NewButton("Add image", func() { showAddImage(ed, dc, w) }),
		widget.NewButton("Reload", func() { go reload() }),
		layout.NewSpacer(),
		status,
	)

	ed.Subscribe(func(snap session.Snapshot) {
		fyne.Do(func() {
			dc.Refresh()
			props.showFor(snap.SelectedID)
		})
	})

	w.SetContent(container.NewBorder(toolbar, nil, nil, right, scroll))
	w.SetCloseIntercept(func() {
		ed.Close()
		if jr != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			for id, p := range ed.Reconciler.Pending() {
				if err := jr.RecordElement(ctx, id, p); err != nil {
					l.Warn("journal element failed", slog.Int64("id", id), slog.Any("err", err))
				}
			}
			for page, m := range overlay.PendingStyles() {
				for label, p := range m {
					if err := jr.RecordStyle(ctx, page, label, p); err != nil {
						l.Warn("journal style failed", slog.Int("page", page), slog.Any("err", err))
					}
				}
			}
			cancel()
			_ = jr.Close()
		}
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		w.Close()
	})

	go reload()
	w.ShowAndRun()
	return nil
}

// pendingDump describes unflushed element patches for the crash report.
func pendingDump(ed *session.Editor) func() []byte {
	return func() []byte {
		out := ""
		for id, p := range ed.Reconciler.Pending() {
			out += fmt.Sprintf("element %d: %v\n", id, p.Fields())
		}
		return []byte(out)
	}
}

// designCanvas renders the spreads and feeds raw pointer events into the
// session. It owns no state beyond a render epoch; selection, gestures and
// element data all live in the editor.
type designCanvas struct {
	widget.BaseWidget
	ed     *session.Editor
	spread *SpreadLayout
	win    fyne.Window
}

func newDesignCanvas(ed *session.Editor, spread *SpreadLayout, win fyne.Window) *designCanvas {
	c := &designCanvas{ed: ed, spread: spread, win: win}
	c.ExtendBaseWidget(c)
	return c
}

func (c *designCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &designRenderer{c: c}
	r.rebuild()
	return r
}

func (c *designCanvas) MouseDown(ev *desktop.MouseEvent) {
	p := vector.Pt{X: ev.Position.X, Y: ev.Position.Y}
	btn := gesture.ButtonPrimary
	if ev.Button == desktop.MouseButtonSecondary {
		btn = gesture.ButtonSecondary
	}
	slots := zorder.ResolveAll(c.ed.Store.Active())
	el, ok := HitTest(c.ed.Transformer, slots, p)
	if !ok {
		c.ed.ClearSelection()
		c.Refresh()
		return
	}
	c.ed.PointerDown(btn, el.ID, p)
	if btn == gesture.ButtonSecondary {
		c.showMenu(el, ev.AbsolutePosition)
	}
	c.Refresh()
}

func (c *designCanvas) MouseUp(ev *desktop.MouseEvent) {
	c.ed.PointerUp(vector.Pt{X: ev.Position.X, Y: ev.Position.Y})
	c.Refresh()
}

func (c *designCanvas) MouseIn(*desktop.MouseEvent) {}

func (c *designCanvas) MouseMoved(ev *desktop.MouseEvent) {
	c.ed.PointerMove(vector.Pt{X: ev.Position.X, Y: ev.Position.Y})
	if c.ed.State().Dragging {
		c.Refresh()
	}
}

func (c *designCanvas) MouseOut() {}

func (c *designCanvas) showMenu(el domain.PlacedElement, at fyne.Position) {
	lockLabel := "Lock"
	if el.IsLocked {
		lockLabel = "Unlock"
	}
	run := func(op string, fn func() error) func() {
		return func() {
			if err := fn(); err != nil {
				dialog.ShowError(fmt.Errorf("%s: %w", op, err), c.win)
			}
			c.Refresh()
		}
	}
	ctx := context.Background()
	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Duplicate", run("duplicate", func() error {
			_, err := c.ed.Duplicate(ctx, el.ID)
			return err
		})),
		fyne.NewMenuItem("Rotate +15", run("rotate", func() error { return c.ed.RotateBy(el.ID, 15) })),
		fyne.NewMenuItem("Rotate -15", run("rotate", func() error { return c.ed.RotateBy(el.ID, -15) })),
		fyne.NewMenuItem(lockLabel, run("lock", func() error { return c.ed.ToggleLock(el.ID) })),
		fyne.NewMenuItem("Hide", run("hide", func() error { return c.ed.SetActive(el.ID, false) })),
		fyne.NewMenuItem("Delete", func() {
			dialog.ShowConfirm("Delete element", "Permanently delete this element?", func(yes bool) {
				if !yes {
					return
				}
				if err := c.ed.Delete(ctx, el.ID); err != nil {
					dialog.ShowError(err, c.win)
				}
				c.Refresh()
			}, c.win)
		}),
	)
	widget.ShowPopUpMenuAtPosition(menu, c.win.Canvas(), at)
}

type designRenderer struct {
	c       *designCanvas
	objects []fyne.CanvasObject
}

func (r *designRenderer) Layout(fyne.Size) { r.rebuild() }

func (r *designRenderer) MinSize() fyne.Size {
	sz := r.c.spread.ContentSize()
	return fyne.NewSize(sz.W+40, sz.H+40)
}

func (r *designRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.c)
}

func (r *designRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *designRenderer) Destroy() {}

var (
	pageFill     = color.White
	pageBorder   = color.NRGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	textBorder   = color.NRGBA{R: 0x55, G: 0x55, B: 0xcc, A: 0xff}
	imageFill    = color.NRGBA{R: 0xe8, G: 0xe8, B: 0xf0, A: 0xff}
	selectBorder = color.NRGBA{R: 0xff, G: 0x99, B: 0x00, A: 0xff}
	lockBorder   = color.NRGBA{R: 0xcc, G: 0x33, B: 0x33, A: 0xff}
)

func (r *designRenderer) rebuild() {
	var objs []fyne.CanvasObject

	for page := 1; page <= r.c.spread.Count(); page++ {
		rect, ok := r.c.spread.PageRect(page)
		if !ok {
			break
		}
		bg := canvas.NewRectangle(pageFill)
		bg.StrokeColor = pageBorder
		bg.StrokeWidth = 1
		bg.Move(fyne.NewPos(rect.X, rect.Y))
		bg.Resize(fyne.NewSize(rect.W, rect.H))
		objs = append(objs, bg)
	}

	snap := r.c.ed.State()
	for _, s := range zorder.ResolveAll(r.c.ed.Store.Active()) {
		el := s.Element
		vp, err := r.c.ed.Transformer.ToViewport(el.Placement)
		if err != nil {
			continue
		}
		box := canvas.NewRectangle(color.Transparent)
		if !el.Kind.IsText() {
			box.FillColor = imageFill
		}
		box.StrokeColor = textBorder
		box.StrokeWidth = 1
		if el.IsLocked {
			box.StrokeColor = lockBorder
		}
		if el.ID == snap.SelectedID {
			box.StrokeColor = selectBorder
			box.StrokeWidth = 2
		}
		box.Move(fyne.NewPos(vp.X, vp.Y))
		box.Resize(fyne.NewSize(float32(el.Width), float32(el.Height)))
		objs = append(objs, box)

		label := el.URL
		if el.Kind.IsText() {
			label = el.TextContent
		}
		txt := canvas.NewText(label, color.Black)
		txt.TextSize = 12
		if el.Text.FontSize > 0 {
			txt.TextSize = float32(el.Text.FontSize)
		}
		txt.Move(fyne.NewPos(vp.X+4, vp.Y+4))
		objs = append(objs, txt)
	}

	r.objects = objs
}

// propertyPanel edits the selected element's attributes through the session
// so locked-position rules and debounced persistence apply unchanged.
type propertyPanel struct {
	ed   *session.Editor
	win  fyne.Window
	root fyne.CanvasObject

	id       int64
	rotation *widget.Entry
	scale    *widget.Entry
	zindex   *widget.Entry
	text     *widget.Entry
	opacity  *widget.Entry
}

func newPropertyPanel(ed *session.Editor, win fyne.Window) *propertyPanel {
	p := &propertyPanel{
		ed: ed, win: win,
		rotation: widget.NewEntry(),
		scale:    widget.NewEntry(),
		zindex:   widget.NewEntry(),
		text:     widget.NewEntry(),
		opacity:  widget.NewEntry(),
	}
	apply := widget.NewButton("Apply", p.apply)
	p.root = container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Rotation", p.rotation),
			widget.NewFormItem("Scale %", p.scale),
			widget.NewFormItem("Z-index", p.zindex),
			widget.NewFormItem("Text", p.text),
			widget.NewFormItem("Opacity", p.opacity),
		),
		apply,
	)
	return p
}

func (p *propertyPanel) showFor(id int64) {
	if id == p.id {
		return
	}
	p.id = id
	el, ok := p.ed.Store.Get(id)
	if !ok {
		p.rotation.SetText("")
		p.scale.SetText("")
		p.zindex.SetText("")
		p.text.SetText("")
		p.opacity.SetText("")
		return
	}
	p.rotation.SetText(strconv.Itoa(el.Rotation))
	p.scale.SetText(strconv.Itoa(el.Scale))
	p.zindex.SetText(strconv.Itoa(el.ZIndex))
	p.text.SetText(el.TextContent)
	p.opacity.SetText(strconv.FormatFloat(el.Effects.Opacity, 'f', -1, 64))
}

func (p *propertyPanel) apply() {
	if p.id == 0 {
		return
	}
	patch := domain.ElementPatch{}
	if v, err := strconv.Atoi(p.rotation.Text); err == nil {
		patch.Rotation = &v
	}
	if v, err := strconv.Atoi(p.scale.Text); err == nil {
		patch.Scale = &v
	}
	if v, err := strconv.Atoi(p.zindex.Text); err == nil {
		patch.ZIndex = &v
	}
	if p.text.Text != "" {
		t := p.text.Text
		patch.TextContent = &t
	}
	if v, err := strconv.ParseFloat(p.opacity.Text, 64); err == nil {
		patch.Opacity = &v
	}
	if err := p.ed.ApplyPatch(p.id, patch); err != nil {
		dialog.ShowError(err, p.win)
	}
}

// labelPanel edits the four fixed page labels: typography for all of them,
// content for title and body.
type labelPanel struct {
	root fyne.CanvasObject
}

// overlayAPI is what the panel needs from the text-style overlay.
type overlayAPI interface {
	Style(page int, label domain.LabelType) domain.TextStyleOverride
	ScheduleStyle(page int, label domain.LabelType, patch domain.StylePatch)
	ScheduleContent(page int, title, body *string)
	DuplicateStyle(ctx context.Context, srcPage int, label domain.LabelType, targets []int) error
}

func newLabelPanel(ov overlayAPI, client *backend.Client, win fyne.Window) *labelPanel {
	pageEntry := widget.NewEntry()
	pageEntry.SetText("1")
	labelSel := widget.NewSelect([]string{
		string(domain.LabelTitle), string(domain.LabelBody),
		string(domain.LabelFooterInfo), string(domain.LabelPageIndex),
	}, nil)
	labelSel.SetSelected(string(domain.LabelTitle))

	fontSize := widget.NewEntry()
	colorEntry := widget.NewEntry()
	title := widget.NewEntry()
	body := widget.NewMultiLineEntry()

	currentPage := func() int {
		n, err := strconv.Atoi(pageEntry.Text)
		if err != nil || n < 1 {
			return 1
		}
		return n
	}
	currentLabel := func() domain.LabelType { return domain.LabelType(labelSel.Selected) }

	applyStyle := widget.NewButton("Apply style", func() {
		patch := domain.StylePatch{}
		if v, err := strconv.Atoi(fontSize.Text); err == nil {
			patch.FontSize = &v
		}
		if colorEntry.Text != "" {
			c := colorEntry.Text
			patch.Color = &c
		}
		ov.ScheduleStyle(currentPage(), currentLabel(), patch)
	})
	applyContent := widget.NewButton("Apply content", func() {
		var t, b *string
		if title.Text != "" {
			v := title.Text
			t = &v
		}
		if body.Text != "" {
			v := body.Text
			b = &v
		}
		ov.ScheduleContent(currentPage(), t, b)
	})
	copyAll := widget.NewButton("Copy style to all pages", func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			pages, err := client.ListPages(ctx)
			if err != nil {
				fyne.Do(func() { dialog.ShowError(err, win) })
				return
			}
			targets := make([]int, 0, len(pages))
			for _, p := range pages {
				targets = append(targets, p.PageNumber)
			}
			if err := ov.DuplicateStyle(ctx, currentPage(), currentLabel(), targets); err != nil {
				fyne.Do(func() { dialog.ShowError(err, win) })
			}
		}()
	})

	root := container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Page", pageEntry),
			widget.NewFormItem("Label", labelSel),
			widget.NewFormItem("Font size", fontSize),
			widget.NewFormItem("Color", colorEntry),
		),
		applyStyle, copyAll,
		widget.NewForm(
			widget.NewFormItem("Title", title),
			widget.NewFormItem("Body", body),
		),
		applyContent,
	)
	return &labelPanel{root: root}
}

func showAddText(ed *session.Editor, dc *designCanvas, win fyne.Window) {
	content := widget.NewEntry()
	dialog.ShowForm("Add text element", "Add", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Text", content)},
		func(ok bool) {
			if !ok || content.Text == "" {
				return
			}
			draft := domain.PlacedElement{
				Kind: domain.KindText, TextContent: content.Text,
				Width: 200, Height: 60, Effects: domain.DefaultEffects(),
			}
			addDraft(ed, dc, win, draft)
		}, win)
}

func showAddImage(ed *session.Editor, dc *designCanvas, win fyne.Window) {
	url := widget.NewEntry()
	dialog.ShowForm("Add image element", "Add", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("URL", url)},
		func(ok bool) {
			if !ok || url.Text == "" {
				return
			}
			draft := domain.PlacedElement{
				Kind: domain.KindImage, URL: url.Text,
				Width: 200, Height: 200, Effects: domain.DefaultEffects(),
			}
			addDraft(ed, dc, win, draft)
		}, win)
}

func addDraft(ed *session.Editor, dc *designCanvas, win fyne.Window, draft domain.PlacedElement) {
	sz := dc.Size()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_, err := ed.Add(ctx, draft, vector.Size{W: sz.Width, H: sz.Height})
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, win)
			}
			dc.Refresh()
		})
	}()
}
