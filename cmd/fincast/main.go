// Command fincast runs a batch forecast over a unified dataset CSV and
// exports scenario curves, milestone estimates, and charts.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/selamanalytics/fincast"
	"github.com/selamanalytics/fincast/config"
	"github.com/selamanalytics/fincast/dataset"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	dataPath := flag.String("data", "", "unified dataset csv path")
	outDir := flag.String("out", "out", "output directory for forecast tables")
	plot := flag.Bool("plot", false, "render an html chart page alongside the tables")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg)

	if *dataPath == "" {
		log.Fatal().Msg("missing -data path")
	}

	if err := run(cfg, log, *dataPath, *outDir, *plot); err != nil {
		log.Fatal().Err(err).Msg("forecast run failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var w = zerolog.New(os.Stderr)
	if cfg.Logging.Format == "console" {
		w = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return w.Level(level).With().Timestamp().Logger()
}

func run(cfg *config.Config, log zerolog.Logger, dataPath, outDir string, plot bool) error {
	file, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("unable to open dataset, %w", err)
	}
	defer file.Close()

	ds, err := dataset.ReadCSV(file)
	if err != nil {
		return fmt.Errorf("unable to read dataset, %w", err)
	}
	log.Info().
		Int("observations", len(ds.Observations)).
		Int("events", len(ds.Events)).
		Int("impact_links", len(ds.ImpactLinks)).
		Msg("dataset loaded")

	in, err := ds.Input()
	if err != nil {
		return fmt.Errorf("unable to convert dataset, %w", err)
	}

	opt, err := cfg.Options()
	if err != nil {
		return err
	}
	f, err := fincast.New(opt)
	if err != nil {
		return err
	}

	res, err := f.Run(in)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	for i := range res.Indicators {
		ir := &res.Indicators[i]
		if ir.Err != "" {
			log.Warn().
				Str("indicator", ir.IndicatorCode).
				Str("error", ir.Err).
				Msg("indicator skipped")
			continue
		}

		path := filepath.Join(outDir, ir.IndicatorCode+"_forecast.csv")
		if err := exportCurves(path, ir); err != nil {
			return fmt.Errorf("unable to export %s, %w", ir.IndicatorCode, err)
		}

		ev := log.Info().
			Str("indicator", ir.IndicatorCode).
			Float64("mape", ir.Scores.MAPE).
			Str("table", path)
		for _, m := range ir.Milestones {
			key := fmt.Sprintf("%s_%.0f", m.Scenario, m.Milestone.Threshold)
			if m.Milestone.Reached {
				ev = ev.Str(key, m.Milestone.Period.Format("2006-01"))
			} else {
				ev = ev.Str(key, "not reached")
			}
		}
		ev.Msg("indicator forecast complete")
	}

	if plot {
		path := filepath.Join(outDir, "forecasts.html")
		if err := fincast.PlotResults(path, res); err != nil {
			return fmt.Errorf("unable to render charts, %w", err)
		}
		log.Info().Str("charts", path).Msg("chart page rendered")
	}

	if failed := res.Failed(); len(failed) > 0 {
		log.Warn().Int("failed", len(failed)).Msg("run completed partially")
	}
	return nil
}

func exportCurves(path string, ir *fincast.IndicatorResult) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"indicator_code", "scenario", "period", "value", "lower", "upper"}); err != nil {
		return err
	}
	for _, c := range ir.Curves {
		for _, p := range c.Points {
			row := []string{
				ir.IndicatorCode,
				c.Scenario,
				p.Period.Format("2006-01-02"),
				strconv.FormatFloat(p.Value, 'f', 4, 64),
				strconv.FormatFloat(p.Lower, 'f', 4, 64),
				strconv.FormatFloat(p.Upper, 'f', 4, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
