package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/banshee-data/hotfire.report/internal/capture"
	"github.com/banshee-data/hotfire.report/internal/monitoring"
	"github.com/banshee-data/hotfire.report/internal/version"
)

var (
	port   = flag.String("port", "/dev/ttyACM0", "Serial port of the engine controller")
	baud   = flag.Int("baud", capture.DefaultBaudRate, "Baud rate")
	parity = flag.String("parity", "N", "Parity (N, E or O)")
	out    = flag.String("out", "telem-data.log", "Telemetry log to append to")

	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("capture"))
		return
	}

	p, err := capture.Open(*port, capture.PortOptions{BaudRate: *baud, Parity: *parity})
	if err != nil {
		log.Fatalf("failed to open serial port: %v", err)
	}

	f, err := os.OpenFile(*out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		p.Close()
		log.Fatalf("failed to open log: %v", err)
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitoring.Logf("recording %s to %s", *port, *out)
	stats, err := capture.NewRecorder(p, f).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("capture stopped: %v", err)
	}
	monitoring.Logf("recorded %s telemetry lines, skipped %s",
		humanize.Comma(int64(stats.Recorded)), humanize.Comma(int64(stats.Skipped)))
}
