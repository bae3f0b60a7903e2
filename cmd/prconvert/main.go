// prconvert converts clips between the PPR1 text format and Standard MIDI
// Files, in either direction based on file extensions.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rollwerk/pianoroll/internal/codec"
	"github.com/rollwerk/pianoroll/internal/model"
)

var (
	i   = flag.String("i", "", "input file name (.ppr or .mid)")
	o   = flag.String("o", "", "output file name (.ppr or .mid)")
	tpb = flag.Int("ticks_per_beat", 480, "ticks per beat for MIDI output")
)

func kind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi", ".smf":
		return "smf"
	default:
		return "ppr"
	}
}

func main() {
	flag.Parse()
	if *i == "" || *o == "" {
		log.Printf("need both -i and -o")
		os.Exit(1)
	}

	in, err := os.Open(*i)
	if err != nil {
		log.Printf("Failed to open %q: %v", *i, err)
		os.Exit(1)
	}
	defer in.Close()

	notes := model.NewNoteStore()
	var lanes []*model.ControlLane
	outTPB := *tpb

	switch kind(*i) {
	case "smf":
		var fileTPB int
		lanes, fileTPB, err = codec.DecodeSMF(in, notes)
		if err == nil {
			outTPB = fileTPB
		}
	default:
		lanes, err = codec.Decode(in, notes)
	}
	if err != nil {
		log.Printf("Failed to read %q: %v", *i, err)
		os.Exit(1)
	}

	out, err := os.Create(*o)
	if err != nil {
		log.Printf("Failed to create %q: %v", *o, err)
		os.Exit(1)
	}
	defer out.Close()

	switch kind(*o) {
	case "smf":
		err = codec.EncodeSMF(out, notes, lanes, outTPB)
	default:
		err = codec.Encode(out, notes, lanes)
	}
	if err != nil {
		log.Printf("Failed to write %q: %v", *o, err)
		os.Exit(1)
	}

	log.Printf("converted %d notes, %d cc lanes", notes.Len(), len(lanes))
}
