package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"exerig/active"
	"exerig/config"
	"exerig/console"
	"exerig/core"
	"exerig/host/mcu"
	"exerig/host/serial"
	"exerig/motor"
	"exerig/sim"
)

var (
	device     = flag.String("device", serial.AutoDevice, "Serial device path, or auto")
	baud       = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	list       = flag.Bool("list", false, "List serial ports and exit")
	simulate   = flag.Bool("sim", false, "Run the controller against the simulated rig")
	configPath = flag.String("config", "", "JSON rig configuration (sim mode)")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case *list:
		err = listPorts()
	case *simulate:
		err = runSim(ctx, os.Stdin, os.Stdout)
	default:
		err = runDevice(ctx)
	}
	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listPorts() error {
	ports, err := serial.ListPorts()
	if err != nil {
		return fmt.Errorf("failed to list ports: %w", err)
	}
	if len(ports) == 0 {
		fmt.Println("No serial ports found")
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}

func loadConfig() (*config.RigConfig, error) {
	if *configPath == "" {
		return config.DefaultRigConfig(), nil
	}
	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", *configPath, err)
	}
	return cfg, nil
}

// runSim wires the controller, the console and the simulated rig into
// active objects driven by a wall-clock tick.
func runSim(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if *verbose {
		core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
		core.SetDebugEnabled(true)
		core.InitAsyncDebug()
	}
	active.SetFatalHandler(func(err error) {
		core.DumpTimingRing()
		fmt.Fprintf(os.Stderr, "Fatal: %v\n", err)
		os.Exit(2)
	})

	rig, err := sim.NewRig(cfg, [motor.NumAxes]sim.ShaftSetup{
		{EndStopAt: -120, RawOffset: 1000},
		{EndStopAt: -60, RawOffset: 3000},
	})
	if err != nil {
		return fmt.Errorf("failed to build simulated rig: %w", err)
	}

	// The console and the controller post to each other
	var motors active.Ref
	con := console.New(&motors, out)
	ui := active.New("ui", cfg.UIQueueLen, con)

	ctl, err := motor.NewController(cfg.Motor, rig.Hardware(), ui)
	if err != nil {
		return err
	}
	motorAO := motor.NewActive(ctl, cfg.MotorQueueLen)
	motors.Bind(motorAO)

	motorAO.Start(ctx)
	ui.Start(ctx)
	go active.RunTicker(ctx, time.Second/core.TickHz)

	fmt.Fprintln(out, "Simulated rig, type help (quit to exit)")
	done := make(chan error, 1)
	go func() { done <- con.Serve(ctx, quitReader(in)) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// quitReader ends the input stream at a quit line
func quitReader(in io.Reader) io.Reader {
	pr, pw := io.Pipe()
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := scanner.Text()
			if isQuit(line) {
				break
			}
			if _, err := io.WriteString(pw, line+"\n"); err != nil {
				return
			}
		}
		pw.CloseWithError(scanner.Err())
	}()
	return pr
}

func isQuit(line string) bool {
	switch strings.TrimSpace(line) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// runDevice forwards stdin lines to the rig firmware and prints replies
func runDevice(ctx context.Context) error {
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	mcuConn := mcu.NewMCU()
	fmt.Printf("Connecting to rig on %s...\n", *device)
	if err := mcuConn.ConnectWithConfig(cfg); err != nil {
		return err
	}
	defer mcuConn.Close()
	fmt.Println("Connected, type help (quit to exit)")

	go func() {
		err := mcuConn.ReadReplies(ctx, func(line string) {
			fmt.Println(line)
		})
		if err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "Error reading replies: %v\n", err)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if isQuit(line) {
			return nil
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "> %s\n", line)
		}
		if err := mcuConn.SendCommand(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
