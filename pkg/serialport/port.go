// Package serialport opens the serial device connected to the trainer.
package serialport

import (
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"github.com/tarm/serial"
)

// Config is the serial port configuration (8N1).
type Config struct {
	Device      string        `yaml:"device"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

// Default values.
const (
	DefaultBaud        = 115200
	DefaultReadTimeout = 100 * time.Millisecond
)

// Port is an opened serial port.
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

// Open opens the port and discards any pending input.
// Reads return after ReadTimeout with no data, so callers must treat
// an empty read as idle.
func Open(c *Config) (Port, error) {
	if c.Device == "" {
		return nil, fmt.Errorf("serial device must be specified")
	}
	conf := &serial.Config{
		Name:        c.Device,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeout,
	}
	if conf.Baud == 0 {
		conf.Baud = DefaultBaud
	}
	if conf.ReadTimeout == 0 {
		conf.ReadTimeout = DefaultReadTimeout
	}
	port, err := serial.OpenPort(conf)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", c.Device, err)
	}
	if err := port.Flush(); err != nil {
		glog.Warningf("flush %s: %v", c.Device, err)
	}
	glog.Infof("serial %s opened at %d baud", c.Device, conf.Baud)
	return port, nil
}
