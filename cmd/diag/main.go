// Diag runs the SX126x bring-up diagnostics and prints a summary.
// It exits with status 1 if any check fails.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/ecc1/serial"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ecc1/sx126x"
	"github.com/ecc1/sx126x/diag"
	"github.com/ecc1/sx126x/sx126xtest"
)

var (
	configFile = flag.String("config", "", "YAML `file` overriding the built-in wiring")
	logFile    = flag.String("logfile", "", "also write output to `file`, with rotation")
	console    = flag.String("console", "", "mirror output to serial `device`")
	baudRate   = flag.Int("baud", 115200, "serial console speed")
	pause      = flag.Duration("pause", diag.DefaultPause, "delay between checks")
	simulate   = flag.Bool("simulate", false, "run against a simulated radio")
	verbose    = flag.Bool("v", false, "trace every SPI frame")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	start := time.Now()
	out, closers, err := outputs()
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	log := logrus.New()
	log.Out = out
	log.Formatter = &diag.ElapsedFormatter{Start: start}
	if *verbose {
		log.Level = logrus.DebugLevel
	}
	if err != nil {
		log.Error(err)
		return 2
	}
	cfg := sx126x.DefaultConfig()
	if *configFile != "" {
		cfg, err = sx126x.LoadConfig(*configFile)
		if err != nil {
			log.Error(err)
			return 2
		}
	}
	printHeader(out, cfg)
	r := openRadio(cfg)
	if r.Error() != nil {
		log.Errorf("%s: %v", cfg.SPIDevice, r.Error())
		return 2
	}
	defer r.Close()
	r.SetLogger(log)

	s := diag.New(r, log)
	s.Pause = *pause
	report := s.Run()
	fmt.Fprintln(out)
	if _, err := report.WriteTo(out); err != nil {
		log.Error(err)
	}
	stats := r.Statistics()
	log.Infof("%d frames, %d bytes sent, %d bytes received", stats.Packets.Sent, stats.Bytes.Sent, stats.Bytes.Received)
	if !report.Passed() {
		return 1
	}
	return 0
}

// outputs returns stdout teed with the optional log file and serial console.
func outputs() (io.Writer, []io.Closer, error) {
	writers := []io.Writer{os.Stdout}
	var closers []io.Closer
	if *logFile != "" {
		f := &lumberjack.Logger{
			Filename:   *logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
		}
		writers = append(writers, f)
		closers = append(closers, f)
	}
	if *console != "" {
		port, err := serial.Open(*console, *baudRate)
		if err != nil {
			return io.MultiWriter(writers...), closers, err
		}
		writers = append(writers, serialWriter{port: port})
		closers = append(closers, port)
	}
	return io.MultiWriter(writers...), closers, nil
}

// serialWriter adapts a serial port to io.Writer.
type serialWriter struct {
	port *serial.Port
}

func (w serialWriter) Write(p []byte) (int, error) {
	if err := w.port.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func openRadio(cfg sx126x.Config) *sx126x.Radio {
	if !*simulate {
		return sx126x.Open(cfg)
	}
	chip := sx126xtest.NewChip()
	r := sx126x.New(chip, chip.ChipSelect(), chip.ResetLine(), chip.BusyLine())
	r.SetBusyTimeout(cfg.BusyTimeout())
	return r
}

func printHeader(w io.Writer, cfg sx126x.Config) {
	host, _ := os.Hostname()
	fmt.Fprintln(w, "SX126x BRING-UP DIAGNOSTICS")
	fmt.Fprintf(w, "  Host:        %s (%s/%s, %d CPUs, %s)\n", host, runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), runtime.Version())
	fmt.Fprintf(w, "  SPI device:  %s at %d Hz\n", cfg.SPIDevice, cfg.SPISpeed)
	fmt.Fprintf(w, "  NSS:         %s\n", pinName(cfg.ChipSelect))
	fmt.Fprintf(w, "  RESET:       %s\n", pinName(cfg.Reset))
	fmt.Fprintf(w, "  BUSY:        %s\n", pinName(cfg.Busy))
	fmt.Fprintf(w, "  DIO1:        %s\n", pinName(cfg.DIO1))
	if *simulate {
		fmt.Fprintln(w, "  (simulated radio)")
	}
	fmt.Fprintln(w)
}

func pinName(pin int) string {
	if pin < 0 {
		return "not connected"
	}
	return fmt.Sprintf("GPIO %d", pin)
}
