package main

import (
	"flag"
	"log"
	"os"

	"github.com/rollwerk/pianoroll/internal/ebihost"
	"github.com/rollwerk/pianoroll/internal/theme"
	"github.com/rollwerk/pianoroll/internal/version"
	"github.com/rollwerk/pianoroll/internal/widget"
)

var (
	i             = flag.String("i", "", "clip file to open (PPR1 text format)")
	o             = flag.String("o", "", "clip file Ctrl+S writes to (defaults to -i)")
	themeFile     = flag.String("theme", "", "theme file (YAML)")
	layout        = flag.String("layout", "default", "layout preset: default, compact, spacious")
	showVersion   = flag.Bool("version", false, "print version and exit")
	loopBars      = flag.Int("loop_bars", 0, "enable a loop region over the first N bars")
	showCrosshair = flag.Bool("debug_crosshair", false, "show the debug cursor crosshair")
)

func main() {
	flag.Parse()

	if *showVersion {
		log.Printf("pianoroll %s", version.Version())
		return
	}

	var cfg widget.Config
	switch *layout {
	case "default":
		cfg = widget.DefaultConfig()
	case "compact":
		cfg = widget.CompactConfig()
	case "spacious":
		cfg = widget.SpaciousConfig()
	default:
		log.Printf("unknown layout %q", *layout)
		os.Exit(1)
	}

	savePath := *o
	if savePath == "" {
		savePath = *i
	}

	app := ebihost.NewApp(cfg, *i, savePath)

	if *themeFile != "" {
		t, err := theme.Load(os.DirFS("."), *themeFile)
		if err != nil {
			log.Printf("could not load theme: %v", err)
			os.Exit(1)
		}
		app.Widget.SetTheme(t)
	}

	if *loopBars > 0 {
		tpb := int64(cfg.TicksPerBeat)
		app.Widget.SetLoopEnabled(true)
		app.Widget.SetLoopRange(0, int64(*loopBars)*int64(cfg.BeatsPerMeasure)*tpb)
	}

	app.Widget.SetShowDebugCrosshair(*showCrosshair)
	app.Widget.SetPlaybackStartTick(0)

	if err := app.Run("pianoroll"); err != nil {
		log.Printf("Failed to run: %v", err)
		os.Exit(1)
	}
}
