package fincast

import (
	"io"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineIndicator generates an echart line chart for one indicator showing the
// regularized history followed by each composed scenario curve with its
// bound envelope.
func LineIndicator(ir *IndicatorResult) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: ir.IndicatorCode,
			},
		),
	)

	var periods []time.Time
	if ir.History != nil {
		periods = append(periods, ir.History.Periods()...)
	}
	if ir.Trend != nil {
		periods = append(periods, ir.Trend.Periods()...)
	}
	histLen := 0
	if ir.History != nil {
		histLen = len(ir.History.Points)
	}

	pad := func(vals []float64, offset int) []opts.LineData {
		data := make([]opts.LineData, 0, len(periods))
		for i := 0; i < offset; i++ {
			data = append(data, opts.LineData{Value: "-"})
		}
		for _, v := range vals {
			data = append(data, opts.LineData{Value: v})
		}
		for i := offset + len(vals); i < len(periods); i++ {
			data = append(data, opts.LineData{Value: "-"})
		}
		return data
	}

	line = line.SetXAxis(periods)
	if ir.History != nil {
		line = line.AddSeries("Historical", pad(ir.History.Values(), 0))
	}
	for i := range ir.Curves {
		c := &ir.Curves[i]
		line = line.AddSeries(c.Scenario, pad(c.Estimates(), histLen)).
			AddSeries(c.Scenario+" upper", pad(c.Uppers(), histLen)).
			AddSeries(c.Scenario+" lower", pad(c.Lowers(), histLen))
	}
	return line
}

// RenderPage writes an HTML page with one chart per successful indicator.
func RenderPage(w io.Writer, res *Results) error {
	page := components.NewPage()
	for i := range res.Indicators {
		ir := &res.Indicators[i]
		if ir.Err != "" {
			continue
		}
		page.AddCharts(LineIndicator(ir))
	}
	return page.Render(w)
}

// PlotResults renders the results page to a file path.
func PlotResults(path string, res *Results) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return RenderPage(file, res)
}
