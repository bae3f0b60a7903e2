package theme

import (
	"fmt"
	"image/color"
	"io/fs"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// File is the on-disk theme document. All fields are optional hex colours
// ("#rrggbb"); unset fields keep the base palette's value.
type File struct {
	Base string `yaml:"base"` // "dark" (default) or "light"

	ClipColor string `yaml:"clip_color"`

	Background string `yaml:"background"`
	WhiteKey   string `yaml:"white_key"`
	BlackKey   string `yaml:"black_key"`

	GridLine string `yaml:"grid_line"`
	BeatLine string `yaml:"beat_line"`
	BarLine  string `yaml:"bar_line"`

	NoteFill         string `yaml:"note_fill"`
	SelectedNoteFill string `yaml:"selected_note_fill"`

	RulerBackground string `yaml:"ruler_background"`
	RulerText       string `yaml:"ruler_text"`

	Playhead string `yaml:"playhead"`
}

// Load reads a theme file from fsys and resolves it against the base
// palette.
func Load(fsys fs.FS, name string) (Theme, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return Theme{}, fmt.Errorf("could not open: %v", err)
	}
	defer f.Close()
	var doc File
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return Theme{}, fmt.Errorf("could not decode: %v", err)
	}
	return doc.Resolve()
}

// Resolve turns the document into a Theme.
func (d *File) Resolve() (Theme, error) {
	var t Theme
	switch d.Base {
	case "", "dark":
		t = Default()
		if d.ClipColor != "" {
			clip, err := parseHex(d.ClipColor)
			if err != nil {
				return Theme{}, fmt.Errorf("clip_color: %v", err)
			}
			t.ApplyClipColor(clip)
		}
	case "light":
		clip := Default().NoteFill
		if d.ClipColor != "" {
			var err error
			clip, err = parseHex(d.ClipColor)
			if err != nil {
				return Theme{}, fmt.Errorf("clip_color: %v", err)
			}
		}
		t = LightFromClipColor(clip)
	default:
		return Theme{}, fmt.Errorf("unknown base theme %q", d.Base)
	}

	overrides := []struct {
		value string
		dst   *color.NRGBA
	}{
		{d.Background, &t.Background},
		{d.WhiteKey, &t.WhiteKey},
		{d.BlackKey, &t.BlackKey},
		{d.GridLine, &t.GridLine},
		{d.BeatLine, &t.BeatLine},
		{d.BarLine, &t.BarLine},
		{d.NoteFill, &t.NoteFill},
		{d.SelectedNoteFill, &t.SelectedNoteFill},
		{d.RulerBackground, &t.RulerBackground},
		{d.RulerText, &t.RulerText},
		{d.Playhead, &t.Playhead},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		c, err := parseHex(o.value)
		if err != nil {
			return Theme{}, err
		}
		*o.dst = c
	}
	return t, nil
}

func parseHex(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("could not parse colour %q: %v", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}
