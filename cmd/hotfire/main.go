package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/banshee-data/hotfire.report/internal/config"
	"github.com/banshee-data/hotfire.report/internal/db"
	"github.com/banshee-data/hotfire.report/internal/monitoring"
	"github.com/banshee-data/hotfire.report/internal/render"
	"github.com/banshee-data/hotfire.report/internal/telemetry"
	"github.com/banshee-data/hotfire.report/internal/version"
)

var (
	logPath     = flag.String("log", "telem-data.log", "Telemetry log to analyse")
	configPath  = flag.String("config", "", "Analysis config (.json, .yaml); stand defaults when empty")
	pngPath     = flag.String("png", "", "Write a PNG plot to this path")
	htmlPath    = flag.String("html", "", "Write an interactive HTML chart to this path")
	dbPath      = flag.String("db", "", "Record the run in this SQLite database")
	title       = flag.String("title", "Igniter hot fire", "Chart title")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

type outputs struct {
	png   string
	html  string
	db    string
	title string
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("hotfire"))
		return
	}

	cfg := config.DefaultAnalysisConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadAnalysisConfig(*configPath); err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	out := outputs{png: *pngPath, html: *htmlPath, db: *dbPath, title: *title}
	if err := analyze(*logPath, cfg, out); err != nil {
		log.Fatal(err)
	}
}

func analyze(path string, cfg *config.AnalysisConfig, out outputs) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	opts := cfg.ToTelemetry()
	res, err := telemetry.Analyze(bytes.NewReader(src), opts, cfg.GetPlotChannels())
	if err != nil {
		var pe *telemetry.ParseError
		if errors.As(err, &pe) && pe.Text != "" {
			monitoring.Logf("offending line: %q", pe.Text)
		}
		return fmt.Errorf("%s: %w", path, err)
	}

	monitoring.Logf("%s: %s records, %s idle baseline samples", path,
		humanize.Comma(int64(res.Records)), humanize.Comma(int64(res.Bias.Samples)))
	if res.Anchor.Fallback {
		monitoring.Warnf("no Idle->Prefire transition found; window placed on fallback anchor %d", res.Anchor.Index)
	} else {
		monitoring.Logf("ignition anchor at record %d", res.Anchor.Index)
	}
	monitoring.Logf("analysis window [%d, %d), %d phase segments", res.Window.Start, res.Window.End, len(res.Segments))
	for _, idx := range opts.BiasChannels {
		monitoring.Logf("bias %-14s %+.4f %s", opts.Channels[idx].Name, res.Bias.Values[idx], opts.Channels[idx].Unit)
	}
	for _, s := range res.Summaries() {
		monitoring.Logf("%-14s peak %.2f %s at %+.3fs, min %.2f, mean %.2f", s.Name, s.Peak, s.Unit, s.PeakTime, s.Min, s.Mean)
	}

	colors, err := render.NewStateColors(cfg.GetStateColors(), cfg.GetDefaultColor())
	if err != nil {
		return fmt.Errorf("plot colors: %w", err)
	}
	style := render.Style{Title: out.title, Colors: colors, Alpha: cfg.GetAlpha()}

	if out.png != "" {
		if err := render.SavePNG(out.png, res, style); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", out.png)
	}
	if out.html != "" {
		if err := writeHTML(out.html, res, style); err != nil {
			return err
		}
		monitoring.Logf("wrote %s", out.html)
	}

	if out.db != "" {
		if err := recordRun(out.db, res, opts, path, src); err != nil {
			return err
		}
	}
	return nil
}

func writeHTML(path string, res *telemetry.Result, style render.Style) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render.HTML(f, res, style); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func recordRun(dbPath string, res *telemetry.Result, opts telemetry.Options, logPath string, src []byte) error {
	store, err := db.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	run := db.NewRun(res, opts, logPath, src)
	if prev, err := store.FindRunByHash(run.SourceHash); err == nil {
		monitoring.Logf("log previously analysed as run %s at %s", prev.ID, prev.CreatedAt.Format("2006-01-02 15:04:05"))
	} else if !errors.Is(err, db.ErrRunNotFound) {
		return err
	}

	id, err := store.RecordRun(run)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	monitoring.Logf("recorded run %s", id)
	return nil
}
