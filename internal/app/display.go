package app

import (
	"fmt"
	"image"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/inertial_nav/internal/config"
)

// lineChars is how many Face7x13 glyphs fit on a 128 px row.
const lineChars = 18

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	pose         PoseMessage
	havePose     bool
	guidance     GuidanceMessage
	haveGuidance bool

	// last announcement, kept on screen across quiet ticks
	instruction string
}

func (d *DisplayData) setPose(m PoseMessage) {
	d.mu.Lock()
	d.pose = m
	d.havePose = true
	d.mu.Unlock()
}

func (d *DisplayData) setGuidance(m GuidanceMessage) {
	d.mu.Lock()
	d.guidance = m
	d.haveGuidance = true
	if m.Instruction != "" {
		d.instruction = m.Instruction
	}
	d.mu.Unlock()
}

type oled struct {
	bus i2c.BusCloser
	dev *ssd1306.Dev
}

func openOLED(busName string) (*oled, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", busName, err)
	}
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("failed to initialize display on bus %q: %w", busName, err)
	}
	return &oled{bus: bus, dev: dev}, nil
}

func (o *oled) show(img *image1bit.VerticalLSB) error {
	return o.dev.Draw(o.dev.Bounds(), img, image.Point{})
}

func (o *oled) Close() error {
	return o.bus.Close()
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	left, err := openOLED(cfg.DisplayLeftI2CBus)
	if err != nil {
		return err
	}
	defer left.Close()
	log.Printf("display: left display initialized on bus %q", cfg.DisplayLeftI2CBus)

	var right *oled
	if cfg.DisplayRightI2CBus != "" {
		right, err = openOLED(cfg.DisplayRightI2CBus)
		if err != nil {
			return err
		}
		defer right.Close()
		log.Printf("display: right display initialized on bus %q", cfg.DisplayRightI2CBus)
	}

	// Show splash screens
	if err := left.show(renderLines("Inertial Nav", "Waiting for", "navigator")); err != nil {
		log.Printf("display: error showing left splash: %v", err)
	}
	if right != nil {
		if err := right.show(renderLines("Relabs Tech", "Dead reckoning", "guidance")); err != nil {
			log.Printf("display: error showing right splash: %v", err)
		}
	}

	data := &DisplayData{}

	client, err := connectMQTT("display", cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, "display", cfg.TopicPose, data.setPose); err != nil {
		return err
	}
	if err := subscribeJSON(client, "display", cfg.TopicGuidance, data.setGuidance); err != nil {
		return err
	}

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		poseImg := renderPose(data.pose, data.havePose)
		guidanceImg := renderGuidance(data.guidance, data.instruction, data.haveGuidance)
		data.mu.RUnlock()

		if right == nil {
			// One screen: guidance matters more than coordinates.
			if err := left.show(guidanceImg); err != nil {
				log.Printf("display: error updating display: %v", err)
			}
			continue
		}
		if err := left.show(poseImg); err != nil {
			log.Printf("display: error updating left display: %v", err)
		}
		if err := right.show(guidanceImg); err != nil {
			log.Printf("display: error updating right display: %v", err)
		}
	}

	return nil
}

// renderLines draws up to five text rows on a blank 128x64 frame.
func renderLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	for i, line := range lines {
		if i >= 5 {
			break
		}
		drawer.Dot = fixed.P(0, 13*i+11)
		drawer.DrawBytes([]byte(line))
	}
	return img
}

func renderPose(m PoseMessage, haveData bool) *image1bit.VerticalLSB {
	if !haveData {
		return renderLines("", "Position", "Waiting...")
	}
	return renderLines(
		fmt.Sprintf("X: %7.2f m", m.X),
		fmt.Sprintf("Y: %7.2f m", m.Y),
		fmt.Sprintf("H: %6.1f deg", m.HeadingDeg),
		fmt.Sprintf("Steps: %d", m.Stats.Accepted),
		fmt.Sprintf("Conf: %.1f", m.Confidence),
	)
}

func renderGuidance(m GuidanceMessage, instruction string, haveData bool) *image1bit.VerticalLSB {
	if !haveData {
		return renderLines("", "Guidance", "Waiting...")
	}
	lines := []string{
		m.State.String(),
		fmt.Sprintf("Dist: %.1f m", m.Distance),
	}
	return renderLines(append(lines, wrapText(instruction, lineChars)...)...)
}

// wrapText breaks s into rows of at most width runes on word boundaries. Words
// longer than width are cut.
func wrapText(s string, width int) []string {
	var lines []string
	var cur string
	for _, word := range strings.Fields(s) {
		for len(word) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case cur == "":
			cur = word
		case len(cur)+1+len(word) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
