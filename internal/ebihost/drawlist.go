// Package ebihost adapts the widget's host interfaces to Ebitengine: a
// buffered draw list flushed in layer order, and per-frame input capture.
package ebihost

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/rollwerk/pianoroll/internal/host"
)

var uiFace font.Face = basicfont.Face7x13

type command struct {
	draw func(dst *ebiten.Image)
	clip *image.Rectangle
}

// DrawList records widget draw commands per layer and replays them onto an
// Ebitengine image in z order.
type DrawList struct {
	layers    [4][]command
	current   host.Layer
	clipStack []image.Rectangle
}

// NewDrawList returns an empty recorder.
func NewDrawList() *DrawList {
	return &DrawList{}
}

// Reset drops all recorded commands; call it at the start of each frame.
func (d *DrawList) Reset() {
	for i := range d.layers {
		d.layers[i] = d.layers[i][:0]
	}
	d.current = host.LayerBackground
	d.clipStack = d.clipStack[:0]
}

func (d *DrawList) add(draw func(dst *ebiten.Image)) {
	cmd := command{draw: draw}
	if n := len(d.clipStack); n > 0 {
		clip := d.clipStack[n-1]
		cmd.clip = &clip
	}
	d.layers[d.current] = append(d.layers[d.current], cmd)
}

func (d *DrawList) SetLayer(layer host.Layer) {
	if layer < host.LayerBackground || layer > host.LayerPlayhead {
		return
	}
	d.current = layer
}

func (d *DrawList) FillRect(x1, y1, x2, y2 float64, col color.NRGBA, cornerRadius float64) {
	// Corner radius is cosmetic; the vector package has no rounded rect
	// primitive, so small radii just render square.
	d.add(func(dst *ebiten.Image) {
		vector.DrawFilledRect(dst, float32(x1), float32(y1), float32(x2-x1), float32(y2-y1), col, true)
	})
}

func (d *DrawList) StrokeRect(x1, y1, x2, y2 float64, col color.NRGBA, thickness float64) {
	d.add(func(dst *ebiten.Image) {
		vector.StrokeRect(dst, float32(x1), float32(y1), float32(x2-x1), float32(y2-y1), float32(thickness), col, true)
	})
}

func (d *DrawList) Line(x1, y1, x2, y2 float64, col color.NRGBA, thickness float64) {
	d.add(func(dst *ebiten.Image) {
		vector.StrokeLine(dst, float32(x1), float32(y1), float32(x2), float32(y2), float32(thickness), col, true)
	})
}

func (d *DrawList) FillTriangle(x1, y1, x2, y2, x3, y3 float64, col color.NRGBA) {
	d.add(func(dst *ebiten.Image) {
		var path vector.Path
		path.MoveTo(float32(x1), float32(y1))
		path.LineTo(float32(x2), float32(y2))
		path.LineTo(float32(x3), float32(y3))
		path.Close()

		vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
		r, g, b, a := col.RGBA()
		for i := range vs {
			vs[i].ColorR = float32(r) / 0xffff
			vs[i].ColorG = float32(g) / 0xffff
			vs[i].ColorB = float32(b) / 0xffff
			vs[i].ColorA = float32(a) / 0xffff
		}
		op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
		dst.DrawTriangles(vs, is, whiteSubImage(), op)
	})
}

func (d *DrawList) FillCircle(cx, cy, radius float64, col color.NRGBA) {
	d.add(func(dst *ebiten.Image) {
		vector.DrawFilledCircle(dst, float32(cx), float32(cy), float32(radius), col, true)
	})
}

func (d *DrawList) Text(x, y float64, col color.NRGBA, s string) {
	d.add(func(dst *ebiten.Image) {
		// text.Draw positions by baseline.
		ascent := uiFace.Metrics().Ascent.Ceil()
		text.Draw(dst, s, uiFace, int(x), int(y)+ascent, col)
	})
}

func (d *DrawList) PushClip(x1, y1, x2, y2 float64) {
	r := image.Rect(int(x1), int(y1), int(x2), int(y2))
	if n := len(d.clipStack); n > 0 {
		r = r.Intersect(d.clipStack[n-1])
	}
	d.clipStack = append(d.clipStack, r)
}

func (d *DrawList) PopClip() {
	if n := len(d.clipStack); n > 0 {
		d.clipStack = d.clipStack[:n-1]
	}
}

func (d *DrawList) TextSize(s string) (float64, float64) {
	w := font.MeasureString(uiFace, s)
	m := uiFace.Metrics()
	return float64(w.Ceil()), float64((m.Ascent + m.Descent).Ceil())
}

// Flush replays all recorded commands onto dst in layer order.
func (d *DrawList) Flush(dst *ebiten.Image) {
	for _, layer := range d.layers {
		for _, cmd := range layer {
			target := dst
			if cmd.clip != nil {
				clipped := dst.SubImage(*cmd.clip)
				sub, ok := clipped.(*ebiten.Image)
				if !ok {
					continue
				}
				target = sub
			}
			cmd.draw(target)
		}
	}
}

var whiteImage *ebiten.Image

// whiteSubImage is the 1x1 source used for DrawTriangles fills.
func whiteSubImage() *ebiten.Image {
	if whiteImage == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		whiteImage = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteImage
}
