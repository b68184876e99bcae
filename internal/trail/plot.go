package trail

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Plot draws the walked path, the targets and the guidance events of samples
// and saves the figure to path (format from the extension, e.g. .png or .svg).
func Plot(samples []Sample, title, path string) error {
	if len(samples) == 0 {
		return fmt.Errorf("trail: nothing to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	walked := make(plotter.XYs, 0, len(samples))
	var targets, events plotter.XYs
	for i, s := range samples {
		walked = append(walked, plotter.XY{X: s.Pose.X, Y: s.Pose.Y})
		if s.Target && (i == 0 || !samples[i-1].Target || samples[i-1].TargetX != s.TargetX || samples[i-1].TargetY != s.TargetY) {
			targets = append(targets, plotter.XY{X: s.TargetX, Y: s.TargetY})
		}
		if s.Guidance.Event != "" {
			events = append(events, plotter.XY{X: s.Pose.X, Y: s.Pose.Y})
		}
	}

	line, err := plotter.NewLine(walked)
	if err != nil {
		return fmt.Errorf("trail: path line: %w", err)
	}
	line.Width = vg.Points(1.5)
	line.Color = color.RGBA{B: 200, A: 255}
	p.Add(line)
	p.Legend.Add("path", line)

	if len(targets) > 0 {
		sc, err := plotter.NewScatter(targets)
		if err != nil {
			return fmt.Errorf("trail: targets: %w", err)
		}
		sc.GlyphStyle.Shape = draw.CrossGlyph{}
		sc.GlyphStyle.Radius = vg.Points(5)
		sc.GlyphStyle.Color = color.RGBA{R: 200, A: 255}
		p.Add(sc)
		p.Legend.Add("target", sc)
	}

	if len(events) > 0 {
		sc, err := plotter.NewScatter(events)
		if err != nil {
			return fmt.Errorf("trail: events: %w", err)
		}
		sc.GlyphStyle.Radius = vg.Points(2.5)
		sc.GlyphStyle.Color = color.RGBA{G: 150, A: 255}
		p.Add(sc)
		p.Legend.Add("guidance event", sc)
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("trail: save %s: %w", path, err)
	}
	return nil
}
