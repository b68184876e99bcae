package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/inertial_nav/internal/app"
)

func main() {
	dbPath := flag.String("db", "./trail.db", "path to the trail database")
	session := flag.String("session", "", "session ID to plot; empty picks the latest")
	out := flag.String("out", "trail.png", "output image (.png, .svg, .pdf)")
	flag.Parse()

	if err := app.RunTrailPlot(*dbPath, *session, *out); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
