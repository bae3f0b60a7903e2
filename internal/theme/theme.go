// Package theme holds the colour palette of the piano roll and the clip
// colour derivation used by Bitwig-style hosts, where one clip colour tints
// notes, borders, and selection shades.
package theme

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme is the full palette consumed by the renderer.
type Theme struct {
	Background color.NRGBA
	WhiteKey   color.NRGBA
	BlackKey   color.NRGBA

	GridLine        color.NRGBA
	BeatLine        color.NRGBA
	BarLine         color.NRGBA
	SubdivisionLine color.NRGBA

	NoteFill           color.NRGBA
	NoteBorder         color.NRGBA
	SelectedNoteFill   color.NRGBA
	SelectedNoteBorder color.NRGBA
	SelectedNoteInner  color.NRGBA
	NoteLabelText      color.NRGBA

	RulerBackground   color.NRGBA
	RulerText         color.NRGBA
	RulerClipBoundary color.NRGBA

	PlaybackStartMarker color.NRGBA
	CueMarker           color.NRGBA

	LoopRegionFill        color.NRGBA
	LoopRegionHoverFill   color.NRGBA
	LoopRegionHandleHover color.NRGBA

	SelectionRectFill   color.NRGBA
	SelectionRectBorder color.NRGBA

	SpotlightFill color.NRGBA
	SpotlightEdge color.NRGBA

	Playhead color.NRGBA

	DragPreviewMove      color.NRGBA
	DragPreviewDuplicate color.NRGBA

	CCLaneBackground color.NRGBA
	CCLaneBorder     color.NRGBA
	CCCurve          color.NRGBA
	CCPoint          color.NRGBA

	ScrollbarTrack color.NRGBA
	ScrollbarThumb color.NRGBA
}

func gray(v uint8) color.NRGBA {
	return color.NRGBA{R: v, G: v, B: v, A: 255}
}

// Default is the dark palette.
func Default() Theme {
	return Theme{
		Background: gray(26),
		WhiteKey:   gray(46),
		BlackKey:   gray(31),

		GridLine:        gray(46),
		BeatLine:        gray(66),
		BarLine:         gray(82),
		SubdivisionLine: gray(51),

		NoteFill:           color.NRGBA{R: 61, G: 148, B: 245, A: 255},
		NoteBorder:         color.NRGBA{R: 61, G: 148, B: 245, A: 255},
		SelectedNoteFill:   color.NRGBA{R: 250, G: 209, B: 64, A: 255},
		SelectedNoteBorder: color.NRGBA{R: 250, G: 209, B: 64, A: 255},
		SelectedNoteInner:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		NoteLabelText:      gray(230),

		RulerBackground:   gray(38),
		RulerText:         gray(230),
		RulerClipBoundary: gray(199),

		PlaybackStartMarker: color.NRGBA{R: 0, G: 150, B: 255, A: 255},
		CueMarker:           color.NRGBA{R: 0, G: 150, B: 255, A: 255},

		LoopRegionFill:        color.NRGBA{R: 255, G: 204, B: 0, A: 89},
		LoopRegionHoverFill:   color.NRGBA{R: 255, G: 204, B: 0, A: 140},
		LoopRegionHandleHover: color.NRGBA{R: 255, G: 230, B: 128, A: 255},

		SelectionRectFill:   color.NRGBA{R: 255, G: 255, B: 255, A: 26},
		SelectionRectBorder: color.NRGBA{R: 255, G: 255, B: 255, A: 77},

		SpotlightFill: color.NRGBA{R: 255, G: 255, B: 255, A: 13},
		SpotlightEdge: color.NRGBA{R: 255, G: 255, B: 255, A: 230},

		Playhead: color.NRGBA{R: 255, G: 255, B: 0, A: 255},

		DragPreviewMove:      color.NRGBA{R: 79, G: 120, B: 199, A: 179},
		DragPreviewDuplicate: color.NRGBA{R: 79, G: 199, B: 120, A: 179},

		CCLaneBackground: gray(20),
		CCLaneBorder:     gray(64),
		CCCurve:          color.NRGBA{R: 89, G: 191, B: 242, A: 255},
		CCPoint:          color.NRGBA{R: 255, G: 255, B: 255, A: 255},

		ScrollbarTrack: gray(36),
		ScrollbarThumb: gray(102),
	}
}

func toColorful(c color.NRGBA) colorful.Color {
	out, _ := colorful.MakeColor(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
	return out
}

func toNRGBA(c colorful.Color, alpha uint8) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

// ApplyClipColor derives note and drag-preview colours from one clip colour: the
// plain fill is the clip colour, the selected fill is a lightened variant,
// borders are darkened, and the selection inner border stays near white.
func (t *Theme) ApplyClipColor(clip color.NRGBA) {
	base := toColorful(clip)
	white := colorful.Color{R: 1, G: 1, B: 1}
	black := colorful.Color{R: 0, G: 0, B: 0}

	t.NoteFill = clip
	t.SelectedNoteFill = toNRGBA(base.BlendLab(white, 0.35), 255)
	t.NoteBorder = toNRGBA(base.BlendLab(black, 0.30), 255)
	t.SelectedNoteBorder = t.NoteBorder
	t.SelectedNoteInner = toNRGBA(base.BlendLab(white, 0.85), 255)
	t.DragPreviewMove = toNRGBA(base, 179)
	t.DragPreviewDuplicate = toNRGBA(base.BlendLab(white, 0.25), 179)
}

// LightFromClipColor builds a light palette tinted by the clip colour. Key
// rows and grid lines move to light grays, ruler text flips to dark, and
// note colours derive from the clip colour as in ApplyClipColor.
func LightFromClipColor(clip color.NRGBA) Theme {
	t := Default()
	base := toColorful(clip)
	white := colorful.Color{R: 1, G: 1, B: 1}

	t.Background = toNRGBA(base.BlendLab(white, 0.92), 255)
	t.WhiteKey = gray(245)
	t.BlackKey = gray(222)
	t.GridLine = gray(214)
	t.BeatLine = gray(196)
	t.BarLine = gray(168)
	t.SubdivisionLine = t.GridLine
	t.RulerBackground = toNRGBA(base.BlendLab(white, 0.80), 255)
	t.RulerText = gray(0)
	t.NoteLabelText = gray(38)
	t.CCLaneBackground = gray(235)
	t.CCLaneBorder = gray(180)
	t.ScrollbarTrack = gray(225)
	t.ScrollbarThumb = gray(150)

	t.ApplyClipColor(clip)
	return t
}
