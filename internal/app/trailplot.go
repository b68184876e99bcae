package app

import (
	"fmt"
	"log"

	"github.com/relabs-tech/inertial_nav/internal/trail"
)

// RunTrailPlot renders session from the trail database at dbPath to out. An empty
// session picks the most recent one.
func RunTrailPlot(dbPath, session, out string) error {
	db, err := trail.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if session == "" {
		ids, err := db.Sessions()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("trailplot: no sessions in %s", dbPath)
		}
		session = ids[0]
	}

	samples, err := db.Samples(session)
	if err != nil {
		return err
	}
	log.Printf("trailplot: session %s has %d samples", session, len(samples))

	if err := trail.Plot(samples, "Session "+session, out); err != nil {
		return err
	}
	log.Printf("trailplot: wrote %s", out)
	return nil
}
