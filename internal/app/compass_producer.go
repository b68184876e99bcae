package app

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/inertial_nav/internal/config"
)

// parseHeading extracts an absolute heading from an HDT or HDG sentence.
// HDG headings are corrected by deviation and, when present, variation.
func parseHeading(line string) (CompassFix, bool) {
	line = strings.TrimSpace(line)

	// NMEA sentences usually start with '$'
	if !strings.HasPrefix(line, "$") {
		return CompassFix{}, false
	}

	sentence, err := nmea.Parse(line)
	if err != nil {
		// noisy compass or partial sentences
		return CompassFix{}, false
	}

	var fix CompassFix
	switch sentence.DataType() {
	case nmea.TypeHDT:
		m := sentence.(nmea.HDT)
		fix = CompassFix{HeadingDeg: m.Heading, True: true, Sentence: nmea.TypeHDT}

	case nmea.TypeHDG:
		m := sentence.(nmea.HDG)
		heading := m.Heading + signed(m.Deviation, m.DeviationDirection)
		fix = CompassFix{HeadingDeg: heading, Sentence: nmea.TypeHDG}
		if m.VariationDirection != "" {
			fix.HeadingDeg += signed(m.Variation, m.VariationDirection)
			fix.True = true
		}

	default:
		// ignore other sentence types
		return CompassFix{}, false
	}

	fix.HeadingDeg = math.Mod(fix.HeadingDeg, 360)
	if fix.HeadingDeg < 0 {
		fix.HeadingDeg += 360
	}
	return fix, true
}

func signed(v float64, dir string) float64 {
	if dir == nmea.West {
		return -v
	}
	return v
}

// streamHeadings reads NMEA lines from r and hands every heading to publish until
// r fails.
func streamHeadings(r io.Reader, now func() time.Time, publish func(CompassFix)) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if fix, ok := parseHeading(line); ok {
				fix.Time = now()
				publish(fix)
			}
		}
		if err != nil {
			return err
		}
	}
}

// RunCompassProducer opens the compass serial port, parses NMEA heading sentences
// and publishes absolute headings for the navigator to calibrate against.
func RunCompassProducer() error {
	cfg := config.Get()

	client, err := connectMQTT("compass", cfg.MQTTBroker, cfg.MQTTClientIDCompass)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	serialOpts := serial.OpenOptions{
		PortName:              cfg.CompassSerialPort,
		BaudRate:              uint(cfg.CompassBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("compass: open %s: %w", cfg.CompassSerialPort, err)
	}
	defer port.Close()
	log.Printf("compass: serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	publish := commandPublisher(client)
	err = streamHeadings(port, time.Now, func(fix CompassFix) {
		if err := publish(cfg.TopicCompass, fix); err != nil {
			log.Printf("compass: %v", err)
			return
		}
		log.Printf("compass: published heading %.1f° (%s, true=%t)", fix.HeadingDeg, fix.Sentence, fix.True)
	})
	return fmt.Errorf("compass: read error: %w", err)
}
