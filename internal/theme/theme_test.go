package theme

import (
	"image/color"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func luminance(c color.NRGBA) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

func TestApplyClipColor(t *testing.T) {
	th := Default()
	clip := color.NRGBA{R: 200, G: 60, B: 40, A: 255}
	th.ApplyClipColor(clip)

	assert.Equal(t, clip, th.NoteFill)
	assert.Greater(t, luminance(th.SelectedNoteFill), luminance(th.NoteFill), "selected fill is lighter")
	assert.Less(t, luminance(th.NoteBorder), luminance(th.NoteFill), "border is darker")
	assert.Equal(t, th.NoteBorder, th.SelectedNoteBorder)
}

func TestLightFromClipColor(t *testing.T) {
	th := LightFromClipColor(color.NRGBA{R: 60, G: 120, B: 220, A: 255})
	assert.Greater(t, luminance(th.Background), luminance(Default().Background))
	assert.Equal(t, uint8(0), th.RulerText.R, "ruler text flips to dark")
}

func TestLoadThemeFile(t *testing.T) {
	fsys := fstest.MapFS{
		"theme.yaml": &fstest.MapFile{Data: []byte(
			"base: dark\nclip_color: \"#3d94f5\"\nplayhead: \"#ff0000\"\n")},
	}
	th, err := Load(fsys, "theme.yaml")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x3d, G: 0x94, B: 0xf5, A: 255}, th.NoteFill)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, th.Playhead)
}

func TestLoadThemeErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"badbase.yaml":  &fstest.MapFile{Data: []byte("base: sepia\n")},
		"badcolor.yaml": &fstest.MapFile{Data: []byte("background: \"nope\"\n")},
		"badyaml.yaml":  &fstest.MapFile{Data: []byte(": : :\n")},
	}
	_, err := Load(fsys, "missing.yaml")
	assert.Error(t, err)
	_, err = Load(fsys, "badbase.yaml")
	assert.Error(t, err)
	_, err = Load(fsys, "badcolor.yaml")
	assert.Error(t, err)
	_, err = Load(fsys, "badyaml.yaml")
	assert.Error(t, err)
}
