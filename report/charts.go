package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/nao1215/moviestat/aggregate"
	"github.com/nao1215/moviestat/domain/model"
)

// Chart formats accepted by Charts.
const (
	ChartPNG = "png"
	ChartSVG = "svg"
)

// Chart names, used as file base names.
const (
	ChartRuntimeRevenue   = "runtime_revenue"
	ChartBudgetRevenue    = "budget_revenue"
	ChartRuntimeHist      = "runtime_hist"
	ChartRuntimeBox       = "runtime_box"
	ChartGenresProfitable = "genres_profitable"
	ChartProfitByYear     = "profit_by_year"
	ChartGenreByYear      = "genre_by_year"
	ChartCorrelation      = "correlation"
)

// ErrUnsupportedChartFormat is returned for a chart format other than png or svg.
var ErrUnsupportedChartFormat = errors.New("moviestat: unsupported chart format")

const (
	chartWidth  = 8 * vg.Inch
	chartHeight = 5 * vg.Inch
	histBins    = 35
)

var (
	pointColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	barColor   = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	kdeColor   = color.RGBA{R: 200, G: 40, B: 40, A: 255}
)

// chart builds one plot. A nil plot means the feed was empty.
type chart struct {
	name  string
	build func() (*plot.Plot, error)
}

// Charts renders every chart into dir as <name>.<format> and returns the
// written paths in render order. Charts whose feed is empty are skipped.
func Charts(dir string, movies model.Movies, a *model.Analysis, format string) ([]string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != ChartPNG && format != ChartSVG {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChartFormat, format)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	charts := []chart{
		{ChartRuntimeRevenue, func() (*plot.Plot, error) {
			return scatterPlot(movies, model.ColumnRuntime, model.ColumnRevenue,
				"Relationship Between Runtime and Revenue", "Runtime (minutes)", "Revenue (dollars)")
		}},
		{ChartBudgetRevenue, func() (*plot.Plot, error) {
			return scatterPlot(movies, model.ColumnBudget, model.ColumnRevenue,
				"Correlation between Budget and Revenue", "Budget (dollars)", "Revenue (dollars)")
		}},
		{ChartRuntimeHist, func() (*plot.Plot, error) { return runtimeHistogram(movies) }},
		{ChartRuntimeBox, func() (*plot.Plot, error) { return runtimeBoxPlot(movies) }},
		{ChartGenresProfitable, func() (*plot.Plot, error) { return tallyBarChart(a.ProfitableGenres) }},
		{ChartProfitByYear, func() (*plot.Plot, error) { return profitByYearLine(a.ProfitByYear) }},
		{ChartGenreByYear, func() (*plot.Plot, error) { return genreByYearBars(a.GenreByYear) }},
		{ChartCorrelation, func() (*plot.Plot, error) { return correlationHeatMap(a.Matrix) }},
	}

	var written []string
	for _, c := range charts {
		p, err := c.build()
		if err != nil {
			return written, fmt.Errorf("chart %s: %w", c.name, err)
		}
		if p == nil {
			continue
		}
		path := filepath.Join(dir, c.name+"."+format)
		w, h := chartWidth, chartHeight
		if c.name == ChartCorrelation {
			w, h = 7*vg.Inch, 7*vg.Inch
		}
		if err := p.Save(w, h, path); err != nil {
			return written, fmt.Errorf("failed to save chart %s: %w", c.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func scatterPlot(movies model.Movies, x, y, title, xLabel, yLabel string) (*plot.Plot, error) {
	xs, ys, err := aggregate.Pairs(movies, x, y)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, nil
	}

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = pointColor
	s.GlyphStyle.Radius = vg.Points(1.5)

	p := newPlot(title, xLabel, yLabel)
	p.Add(plotter.NewGrid(), s)
	return p, nil
}

// runtimeHistogram draws a density histogram with a Gaussian kernel density
// estimate on top. The bandwidth follows Silverman's rule of thumb.
func runtimeHistogram(movies model.Movies) (*plot.Plot, error) {
	values, err := aggregate.Values(movies, model.ColumnRuntime)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	h, err := plotter.NewHist(plotter.Values(values), histBins)
	if err != nil {
		return nil, err
	}
	h.Normalize(1)
	h.FillColor = barColor

	p := newPlot("Distribution of Movie Runtimes", "Runtime (minutes)", "Density")
	p.Add(h)

	if len(values) > 1 {
		std := stat.StdDev(values, nil)
		if std > 0 {
			bandwidth := 1.06 * std * math.Pow(float64(len(values)), -0.2)
			kde := plotter.NewFunction(func(x float64) float64 {
				sum := 0.0
				for _, v := range values {
					sum += distuv.Normal{Mu: v, Sigma: bandwidth}.Prob(x)
				}
				return sum / float64(len(values))
			})
			kde.Samples = 200
			kde.Color = kdeColor
			kde.Width = vg.Points(1.5)
			p.Add(kde)
		}
	}
	return p, nil
}

func runtimeBoxPlot(movies model.Movies) (*plot.Plot, error) {
	values, err := aggregate.Values(movies, model.ColumnRuntime)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	box, err := plotter.NewBoxPlot(vg.Points(60), 0, plotter.Values(values))
	if err != nil {
		return nil, err
	}
	box.FillColor = barColor

	p := newPlot("Box Plot of Movie Runtimes", "", "Runtime (minutes)")
	p.Add(box)
	p.NominalX("runtime")
	return p, nil
}

// tallyBarChart draws a horizontal bar chart with the largest count on top.
func tallyBarChart(tally []model.TokenCount) (*plot.Plot, error) {
	if len(tally) == 0 {
		return nil, nil
	}

	values := make(plotter.Values, len(tally))
	names := make([]string, len(tally))
	for i, tc := range tally {
		// NominalY puts the first name at the bottom
		j := len(tally) - 1 - i
		values[j] = float64(tc.Count)
		names[j] = tc.Token
	}

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = barColor

	p := newPlot("Most Frequent Genres of Profitable Movies", "Movies", "")
	p.Add(bars)
	p.NominalY(names...)
	return p, nil
}

func profitByYearLine(groups []model.GroupTotal) (*plot.Plot, error) {
	pts := make(plotter.XYs, 0, len(groups))
	for _, g := range groups {
		year, err := strconv.ParseFloat(g.Key, 64)
		if err != nil {
			continue
		}
		pts = append(pts, plotter.XY{X: year, Y: g.Total})
	}
	if len(pts) == 0 {
		return nil, nil
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, err
	}
	line.Color = pointColor
	points.GlyphStyle.Color = pointColor

	p := newPlot("Total Profits Earned by All Movies Over Release Years", "Release Year", "Total Profits Earned by Movies")
	p.Add(plotter.NewGrid(), line, points)
	return p, nil
}

// genreByYearBars draws the count of the most popular genre per year and
// labels every bar with the genre name.
func genreByYearBars(modes []model.GroupMode) (*plot.Plot, error) {
	if len(modes) == 0 {
		return nil, nil
	}

	values := make(plotter.Values, len(modes))
	years := make([]string, len(modes))
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(modes)),
		Labels: make([]string, len(modes)),
	}
	for i, m := range modes {
		values[i] = float64(m.Count)
		years[i] = m.Key
		labels.XYs[i] = plotter.XY{X: float64(i), Y: float64(m.Count)}
		labels.Labels[i] = m.Category
	}

	bars, err := plotter.NewBarChart(values, vg.Points(6))
	if err != nil {
		return nil, err
	}
	bars.Color = barColor

	names, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	for i := range names.TextStyle {
		names.TextStyle[i].Rotation = math.Pi / 2
	}

	p := newPlot("Most Popular Genres from Year to Year", "Release Year", "Count")
	p.Add(bars, names)
	p.NominalX(years...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	return p, nil
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with a fixed
// [-1, 1] range.
type corrGrid struct {
	cm model.CorrMatrix
}

func (g corrGrid) Dims() (c, r int)   { return len(g.cm.Columns), len(g.cm.Columns) }
func (g corrGrid) Z(c, r int) float64 { return g.cm.Values[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }
func (g corrGrid) Min() float64       { return -1 }
func (g corrGrid) Max() float64       { return 1 }

func correlationHeatMap(cm model.CorrMatrix) (*plot.Plot, error) {
	if len(cm.Columns) == 0 {
		return nil, nil
	}

	heat := plotter.NewHeatMap(corrGrid{cm: cm}, moreland.SmoothBlueRed().Palette(255))
	heat.NaN = color.Gray{Y: 200}

	n := len(cm.Columns)
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, 0, n*n),
		Labels: make([]string, 0, n*n),
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			text := "n/a"
			if v := cm.Values[r][c]; !math.IsNaN(v) {
				text = strconv.FormatFloat(v, 'f', 2, 64)
			}
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			labels.Labels = append(labels.Labels, text)
		}
	}
	annotations, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}

	p := newPlot("Correlation Matrix", "", "")
	p.Add(heat, annotations)
	p.NominalX(slices.Clone(cm.Columns)...)
	p.NominalY(slices.Clone(cm.Columns)...)
	return p, nil
}
