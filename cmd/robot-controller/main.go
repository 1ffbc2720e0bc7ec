package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"robot-controller/internal/core"
	"robot-controller/internal/hardware"
	"robot-controller/internal/logger"
	"robot-controller/internal/messaging"
)

func main() {
	// Service log level
	var serviceLogLevel int
	flag.IntVar(&serviceLogLevel, "log", 3, "Service log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")

	var mode string
	flag.StringVar(&mode, "mode", "timed", "Scheduler: iterative (one cycle per packet) or timed")
	period := flag.Duration("period", core.DefaultPeriod, "Timed scheduler period")

	var backend string
	flag.StringVar(&backend, "backend", "sim", "Driver station backend: sim or redis")
	redisHost := flag.String("redis-host", "127.0.0.1", "Redis host for the bench console")
	redisPort := flag.Int("redis-port", 6379, "Redis port for the bench console")

	lightChip := flag.Int("light-chip", hardware.DefaultLightChip, "GPIO chip of the status light")
	lightLine := flag.Int("light-line", -1, "GPIO line of the status light, negative to disable")

	flag.Parse()

	l := logger.NewProduction(logger.LogLevel(serviceLogLevel))
	defer l.Sync()

	if mode != "iterative" && mode != "timed" {
		l.Fatalf("Unknown scheduler mode %q", mode)
	}

	l.Infof("Starting robot controller...")

	cfg := core.DefaultConfig()
	cfg.Period = *period

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		station core.Station
		timing  core.Timing
		faults  core.FaultReporter
	)
	switch backend {
	case "sim":
		sim := hardware.NewSimStation()
		go runSimConsole(ctx, sim, cfg.Period)
		station = sim
		timing = hardware.NewSimTiming(nil, hardware.DefaultMaxAlarms)
	case "redis":
		bench := messaging.NewRedisStation(*redisHost, *redisPort, l)
		if err := bench.Connect(); err != nil {
			l.Fatalf("Failed to connect to bench console: %v", err)
		}
		station = bench
		faults = bench
		timing = hardware.NewLinuxTiming(hardware.DefaultMaxAlarms)
	default:
		l.Fatalf("Unknown backend %q", backend)
	}

	var light core.StatusLight
	if *lightLine >= 0 {
		gl, err := hardware.OpenGPIOLight(*lightChip, *lightLine, l)
		if err != nil {
			l.Warnf("Status light unavailable: %v", err)
		} else {
			light = gl
		}
	}

	controller := core.NewController(station, timing, light, l, cfg)
	if faults != nil {
		controller.SetFaultReporter(faults)
	}
	robot := newExampleRobot(controller.DriverStation(), l)

	var err error
	if mode == "iterative" {
		err = controller.RunEventDriven(ctx, robot)
	} else {
		err = controller.RunTimed(ctx, robot)
	}
	if err != nil {
		l.Errorf("Scheduler failed: %v", err)
	}

	l.Infof("Shutting down...")
	if serr := controller.Shutdown(); serr != nil {
		l.Errorf("Shutdown failed: %v", serr)
	}
	l.Infof("Shutdown complete")

	if err != nil {
		l.Sync()
		os.Exit(1)
	}
}
