// iodemo drives one EK1100 coupler with an EL1859 digital IO terminal:
// output channel 0 toggles every tick and the external image is reachable
// over Modbus-TCP. With -sim it runs against the in-memory bus.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fieldio/ecatplc/internal/beckhoff"
	"github.com/fieldio/ecatplc/internal/bridge/modbus"
	"github.com/fieldio/ecatplc/internal/config"
	"github.com/fieldio/ecatplc/internal/ecat"
	"github.com/fieldio/ecatplc/internal/image"
	"github.com/fieldio/ecatplc/internal/logging"
	"github.com/fieldio/ecatplc/internal/observability"
	"github.com/fieldio/ecatplc/internal/plc"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "iodemo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "TOML configuration file")
	sim := flag.Bool("sim", false, "run against a simulated bus")
	flag.Parse()

	logger := logging.Init("iodemo")

	cfg := config.Config{Name: "iodemo", CycleFreqHz: 2, ListenAddr: "0.0.0.0:5020"}
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	desc, err := image.Compose(cfg.Name,
		image.Member{Desc: image.MustCompile(beckhoff.EK1100())},
		image.Member{Desc: image.MustCompile(beckhoff.EL1859())},
	)
	if err != nil {
		return err
	}

	b := plc.NewBuilder(cfg.Name).
		MasterID(cfg.MasterID).
		CycleFreq(cfg.CycleFreqHz).
		WithServer(cfg.ListenAddr, modbus.New).
		WithExtern(make([]byte, 4)) // one float32 slot for remote clients
	if *sim {
		b.WithOpener(ecat.SimFromDescriptor(desc).Opener())
	}
	if cfg.DiagAddr != "" {
		observability.StartDiag(cfg.DiagAddr, cfg.Name)
	}

	p, err := b.Build(desc, cfg)
	if err != nil {
		return err
	}

	ioAt := desc.DeviceOffset(1)
	p.Run(func(img image.View, ext []byte) {
		io := beckhoff.NewEL1859View(img, ioAt)
		io.SetOutput(0, io.Outputs()&1 == 0)
		logger.Debug().Uint8("input", img.Uint8(ioAt)).Msg("tick")
	})
	return nil
}
