package tracker

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Curve tracks the learning curve of the training phase: the length of
// each training episode and the moving average over the reward window.
// The curve is saved as a PNG (gonum/plot) or an interactive HTML page
// (go-echarts) depending on the extension of the file name.
type Curve struct {
	filename string
	lengths  []float64
	averages []float64
}

// NewCurve returns a new Curve which saves to filename. The extension
// must be one of .png or .html.
func NewCurve(filename string) (*Curve, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".html":
	default:
		return nil, fmt.Errorf("newCurve: unsupported file extension "+
			"\n\twant(.png or .html) \n\thave(%v)", filepath.Ext(filename))
	}
	return &Curve{filename: filename}, nil
}

// Track records the episode if it is a training episode
func (c *Curve) Track(e Episode) error {
	if e.Phase != Training {
		return nil
	}
	c.lengths = append(c.lengths, float64(e.Steps))
	c.averages = append(c.averages, e.MovingAverage)
	return nil
}

// Save writes the learning curve to disk
func (c *Curve) Save() error {
	if strings.ToLower(filepath.Ext(c.filename)) == ".html" {
		return c.saveHTML()
	}
	return c.savePNG()
}

func (c *Curve) savePNG() error {
	p := plot.New()
	p.Title.Text = "Learning Progress"
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Steps"

	lengths, err := plotter.NewLine(c.points(c.lengths))
	if err != nil {
		return fmt.Errorf("save: could not create line plotter: %w", err)
	}
	lengths.Color = color.RGBA{R: 160, G: 160, B: 160, A: 255}

	averages, err := plotter.NewLine(c.points(c.averages))
	if err != nil {
		return fmt.Errorf("save: could not create line plotter: %w", err)
	}
	averages.Color = color.RGBA{R: 200, A: 255}
	averages.Width = vg.Points(1.5)

	p.Add(lengths, averages)
	p.Legend.Add("Episode steps", lengths)
	p.Legend.Add("Moving average", averages)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, c.filename); err != nil {
		return fmt.Errorf("save: could not save plot: %w", err)
	}
	return nil
}

func (c *Curve) points(ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(ys))
	for i := range ys {
		pts[i].X = float64(i)
		pts[i].Y = ys[i]
	}
	return pts
}

func (c *Curve) saveHTML() error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Learning Progress",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Steps"}),
	)

	episodes := make([]string, len(c.lengths))
	lengths := make([]opts.LineData, len(c.lengths))
	averages := make([]opts.LineData, len(c.averages))
	for i := range c.lengths {
		episodes[i] = strconv.Itoa(i)
		lengths[i] = opts.LineData{Value: c.lengths[i]}
		averages[i] = opts.LineData{Value: c.averages[i]}
	}

	line.SetXAxis(episodes).
		AddSeries("Episode steps", lengths).
		AddSeries("Moving average", averages)

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(c.filename)
	if err != nil {
		return fmt.Errorf("save: could not create chart file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("save: could not render chart: %w", err)
	}
	return nil
}
