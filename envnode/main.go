package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/envnode/pkg/config"
	"github.com/itohio/envnode/pkg/console"
	"github.com/itohio/envnode/pkg/device"
	"github.com/itohio/envnode/pkg/node"
	"github.com/itohio/envnode/pkg/store"
	"github.com/itohio/envnode/pkg/uplink"
)

func main() {
	var (
		configFlag = flag.String("config", "envnode.yaml", "Configuration file path")
		portFlag   = flag.String("p", "", "Serial console port override (e.g., COM3 or /dev/ttyUSB0); empty uses stdin/stdout")
		cyclesFlag = flag.Int("cycles", -1, "Number of wake cycles to run (0 = forever, overrides config)")
		listFlag   = flag.Bool("list", false, "List serial ports and exit")
		initFlag   = flag.Bool("init", false, "Write the effective configuration to the config file and exit")
	)
	flag.Parse()

	if *listFlag {
		ports, err := device.Ports()
		if err != nil {
			log.Fatalf("Failed to list serial ports: %v", err)
		}
		for _, p := range ports {
			fmt.Println(p.Name)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override console port if provided via command line
	if *portFlag != "" {
		cfg.Console.Port = *portFlag
	}

	// Override cycle count if provided via command line
	if *cyclesFlag >= 0 {
		cfg.Cycle.Count = *cyclesFlag
	}

	if *initFlag {
		if err := cfg.Save(*configFlag); err != nil {
			log.Fatalf("Failed to save configuration: %v", err)
		}
		return
	}

	if cfg.Storage.Size < store.Size {
		log.Fatalf("EEPROM image of %d bytes is too small; need at least %d", cfg.Storage.Size, store.Size)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port, closePort, err := openConsole(cfg.Console)
	if err != nil {
		log.Fatalf("Failed to open console: %v", err)
	}
	defer closePort()

	// the simulated hardware outlives a reset, like the real sensor and radio do
	hw := hardware{
		sensor:    device.NewMockSensor(&cfg.Mock),
		network:   device.NewMockNetwork(&cfg.Mock),
		sleeper:   newHostSleeper(ctx, cfg.Cycle.TimeScale),
		publisher: uplink.New(cfg.Upload.Timeout),
	}

	for cycle := 1; cfg.Cycle.Count == 0 || cycle <= cfg.Cycle.Count; cycle++ {
		if err := wake(ctx, cfg, port, hw); err != nil {
			if ctx.Err() != nil {
				log.Printf("Shutting down")
				return
			}
			log.Fatalf("Wake cycle %d failed: %v", cycle, err)
		}
		if ctx.Err() != nil {
			log.Printf("Shutting down")
			return
		}
	}
}

type hardware struct {
	sensor    device.Sensor
	network   device.Network
	sleeper   device.Sleeper
	publisher node.Publisher
}

// wake runs one cycle from a cold start: only the EEPROM image carries over.
func wake(ctx context.Context, cfg *config.Config, port console.Port, hw hardware) error {
	eeprom, err := store.OpenFile(cfg.Storage.Path, cfg.Storage.Size)
	if err != nil {
		return err
	}

	clock := device.NewSystemClock()
	out := console.NewLog(port, clock.Uptime)

	n := node.New(node.Deps{
		Console:   console.New(port),
		Log:       out,
		Store:     store.New(eeprom, out),
		Sensor:    hw.sensor,
		Network:   hw.network,
		Clock:     clock,
		Sleeper:   hw.sleeper,
		Publisher: hw.publisher,
	})
	return n.Run(ctx)
}

// openConsole opens the configured serial port, or stdin/stdout when none is set.
func openConsole(cfg config.ConsoleConfig) (console.Port, func(), error) {
	if cfg.Port == "" {
		return console.NewStreamPort(os.Stdin, os.Stdout), func() {}, nil
	}

	port, err := device.OpenSerial(cfg.Port, cfg.BaudRate)
	if err != nil {
		return nil, nil, err
	}
	return port, func() {
		if err := port.Close(); err != nil {
			log.Printf("Failed to close serial port: %v", err)
		}
	}, nil
}
