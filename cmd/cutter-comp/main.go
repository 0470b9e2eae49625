// cutter-comp is a host-side G-code filter that applies cutter radius
// compensation. It reads a G-code stream from a file, stdin or a
// machine serial console, processes G40/G41/G42 mode changes through
// the compensation engine, and writes the compensated stream.
//
// Usage:
//
//	cutter-comp [options] [input.gcode]
//
// Options:
//
//	-config string  Host configuration file
//	-serial string  Read input from a serial device instead of a file
//	-baud int       Serial line rate (default 115200 or config value)
//	-output string  Output file (default: stdout)
//	-radius float   Default tool radius for G41/G42 without a D word
//	-loglevel string  Log level: debug, info, warn, error (default "info")
//	-logfile string   Log file path (default: stderr)
//
// Examples:
//
//	# Compensate a file to stdout
//	cutter-comp -radius 1.5 part.gcode
//
//	# Stream from a machine console
//	cutter-comp -config host.cfg -serial /dev/ttyUSB0 -output out.gcode
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"smoothie-go-migration/pkg/compensation"
	"smoothie-go-migration/pkg/config"
	"smoothie-go-migration/pkg/errors"
	"smoothie-go-migration/pkg/gcode"
	"smoothie-go-migration/pkg/log"
	"smoothie-go-migration/pkg/serial"
)

func main() {
	configFile := flag.String("config", "", "Host configuration file")
	serialDev := flag.String("serial", "", "Read input from a serial device")
	baud := flag.Int("baud", 0, "Serial line rate")
	outputFile := flag.String("output", "", "Output file (default: stdout)")
	radius := flag.Float64("radius", 0, "Default tool radius for G41/G42 without a D word")
	logLevel := flag.String("loglevel", "info", "Log level: debug, info, warn, error")
	logFile := flag.String("logfile", "", "Log file path (default: stderr)")
	flag.Parse()

	logger := log.New("cutter-comp")
	logger.SetLevel(log.ParseLevel(*logLevel))
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logger.SetWriter(f)
		logger.SetColorize(false)
	}

	settings := &config.Settings{Radius: 1.0, Side: "off", SerialBaud: 115200}
	if *configFile != "" {
		cfg, err := config.Load(*configFile)
		if err != nil {
			logger.Error("config load failed: %v", err)
			os.Exit(1)
		}
		settings, err = config.LoadSettings(cfg)
		if err != nil {
			logger.Error("config invalid: %v", err)
			os.Exit(1)
		}
		if err := cfg.CheckUnused(); err != nil {
			logger.Warn("%v", err)
		}
	}

	// Flags override config.
	if *radius > 0 {
		settings.Radius = *radius
	}
	if *serialDev != "" {
		settings.SerialPort = *serialDev
	}
	if *baud > 0 {
		settings.SerialBaud = *baud
	}

	input, inputName, err := openInput(settings, flag.Arg(0))
	if err != nil {
		logger.Error("input: %v", err)
		os.Exit(1)
	}
	defer input.Close()

	output := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			logger.Error("output: %v", err)
			os.Exit(1)
		}
		defer f.Close()
		output = f
	}

	logger.Info("streaming from %s, default radius %.4f", inputName, settings.Radius)

	proc := compensation.New(compensation.Config{
		DefaultRadius: settings.Radius,
		Logger:        logger,
	})
	switch settings.Side {
	case "left":
		proc.EnableLeft(0)
	case "right":
		proc.EnableRight(0)
	}

	if err := run(proc, input, output, logger); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// openInput selects the G-code source: a serial device when
// configured, else the named file, else stdin.
func openInput(settings *config.Settings, path string) (io.ReadCloser, string, error) {
	if settings.SerialPort != "" {
		port, err := serial.Open(serial.Config{
			Device:   settings.SerialPort,
			BaudRate: settings.SerialBaud,
		})
		if err != nil {
			return nil, "", err
		}
		return &consoleReader{port: port}, port.Device(), nil
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}
		return f, path, nil
	}
	return os.Stdin, "stdin", nil
}

// consoleReader keeps a serial stream alive across read timeouts: a
// quiet console is not end of input.
type consoleReader struct {
	port *serial.Port
}

func (r *consoleReader) Read(buf []byte) (int, error) {
	for {
		n, err := r.port.Read(buf)
		if err == serial.ErrTimeout {
			continue
		}
		return n, err
	}
}

func (r *consoleReader) Close() error {
	return r.port.Close()
}

// run pushes the input stream through the compensation engine line by
// line and writes every emitted command.
func run(proc *compensation.Preprocessor, input io.Reader, output io.Writer, logger *log.Logger) error {
	w := bufio.NewWriter(output)
	defer w.Flush()

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		cmd, err := gcode.Parse(scanner.Text())
		if err != nil {
			return err
		}
		if cmd == nil {
			continue
		}

		switch cmd.Name {
		case "G40":
			proc.Disable()
			if err := drain(proc, w, logger); err != nil {
				return err
			}
			continue
		case "G41", "G42":
			r, _, err := cmd.Float("D")
			if err != nil {
				return err
			}
			if cmd.Name == "G41" {
				proc.EnableLeft(r)
			} else {
				proc.EnableRight(r)
			}
			continue
		}

		// A full buffer means emissions are overdue; drain one
		// batch and retry.
		if !proc.Buffer(cmd) {
			if err := pump(proc, w, logger); err != nil {
				return err
			}
			if !proc.Buffer(cmd) {
				return errors.BufferFullError()
			}
		}
		if err := pump(proc, w, logger); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// End of program: flush whatever the lookahead still holds.
	if proc.Active() {
		logger.Warn("input ended with compensation active, draining %d moves", proc.Buffered())
		proc.Disable()
	}
	return drain(proc, w, logger)
}

// pump emits every move the engine is currently willing to resolve.
func pump(proc *compensation.Preprocessor, w io.Writer, logger *log.Logger) error {
	for {
		out, err := proc.Next()
		if err != nil {
			// A degenerate arc is dropped, not fatal: the
			// stream continues without that motion.
			if errors.Is(err, errors.ErrCompDegenerateArc) {
				logger.Error("%v", err)
				continue
			}
			return err
		}
		if out == nil {
			return nil
		}
		if _, err := fmt.Fprintln(w, out.Format()); err != nil {
			return err
		}
	}
}

// drain pumps until the buffer is empty. Used after G40 and at end of
// input, where deferral is no longer allowed.
func drain(proc *compensation.Preprocessor, w io.Writer, logger *log.Logger) error {
	for proc.Buffered() > 0 {
		if err := pump(proc, w, logger); err != nil {
			return err
		}
	}
	return nil
}
