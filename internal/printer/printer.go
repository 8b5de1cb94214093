package printer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"go.bug.st/serial"
)

// Transport names accepted in PlatformOptions
const (
	TransportSocket = "socket"
	TransportSerial = "serial"
)

const DefaultBaudRate = 115200

// SerialDialer opens the printer as a serial port: a bound /dev/rfcommN on
// Linux or the Bluetooth COM port on Windows.
type SerialDialer struct {
	Port     string // overrides the device handle when set
	BaudRate int
}

// Dial implements Dialer
func (d SerialDialer) Dial(ctx context.Context, dev BluetoothDevice) (io.ReadWriteCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	portName := d.Port
	if portName == "" {
		portName = dev.Handle
	}
	if portName == "" {
		return nil, fmt.Errorf("no serial port for %s", dev)
	}

	baud := d.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(3 * time.Second); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", portName, err)
	}
	return port, nil
}

// ListSerialPorts returns the serial ports known to the system, sorted
func ListSerialPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}

// PlatformOptions selects how the host Bluetooth stack is reached
type PlatformOptions struct {
	Transport  string
	Channel    int
	SerialPort string
	BaudRate   int
	Logger     *slog.Logger
}

// Platform bundles the host's paired-device source, dialer and grants
type Platform struct {
	Source BondedSource
	Dialer Dialer
	Access Access
	closer func() error
}

// Close releases platform resources such as the D-Bus connection
func (p *Platform) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

func serialDialer(opts PlatformOptions) SerialDialer {
	return SerialDialer{Port: opts.SerialPort, BaudRate: opts.BaudRate}
}
