//go:build linux

package printer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// bluetoothctlSource lists paired devices through the bluetoothctl binary.
// It is used when BlueZ is not reachable over D-Bus from this process, and
// then also stands in for the adapter power checks.
type bluetoothctlSource struct {
	// run executes bluetoothctl with args; nil runs the real binary
	run func(ctx context.Context, args ...string) ([]byte, error)
}

func runBluetoothctl(ctx context.Context, args ...string) ([]byte, error) {
	path, err := exec.LookPath("bluetoothctl")
	if err != nil {
		return nil, err
	}
	return exec.CommandContext(ctx, path, args...).Output()
}

func (s bluetoothctlSource) output(ctx context.Context, args ...string) ([]byte, error) {
	if s.run == nil {
		return runBluetoothctl(ctx, args...)
	}
	return s.run(ctx, args...)
}

// BondedDevices implements BondedSource
func (s bluetoothctlSource) BondedDevices(ctx context.Context) ([]BluetoothDevice, error) {
	out, err := s.output(ctx, "devices", "Paired")
	if err != nil {
		return nil, fmt.Errorf("failed to list paired devices: %w", err)
	}
	return parseBluetoothctlDevices(string(out)), nil
}

func (s bluetoothctlSource) adapterPowered(ctx context.Context) (bool, error) {
	out, err := s.output(ctx, "show")
	if err != nil {
		return false, fmt.Errorf("bluetoothctl show: %w", err)
	}
	return parsePowered(string(out))
}

func (s bluetoothctlSource) setAdapterPowered(ctx context.Context, on bool) error {
	state := "off"
	if on {
		state = "on"
	}
	if _, err := s.output(ctx, "power", state); err != nil {
		return fmt.Errorf("bluetoothctl power %s: %w", state, err)
	}
	return nil
}

// parsePowered reads the "Powered: yes|no" line of bluetoothctl show
func parsePowered(out string) (bool, error) {
	for _, line := range strings.Split(out, "\n") {
		v, ok := strings.CutPrefix(strings.TrimSpace(line), "Powered:")
		if ok {
			return strings.TrimSpace(v) == "yes", nil
		}
	}
	return false, errors.New("no default controller")
}

// parseBluetoothctlDevices parses lines of the form
// "Device XX:XX:XX:XX:XX:XX DeviceName". Devices without a name are kept
// with an empty Name.
func parseBluetoothctlDevices(out string) []BluetoothDevice {
	var devices []BluetoothDevice
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Device ") {
			continue
		}
		parts := strings.SplitN(strings.TrimPrefix(line, "Device "), " ", 2)
		dev := BluetoothDevice{MAC: parts[0], Handle: parts[0]}
		if len(parts) == 2 {
			dev.Name = strings.TrimSpace(parts[1])
		}
		// bluetoothctl prints the address as the name when there is none
		if strings.EqualFold(strings.ReplaceAll(dev.Name, "-", ":"), dev.MAC) {
			dev.Name = ""
		}
		devices = append(devices, dev)
	}
	return devices
}

// fallbackSource tries each source in turn and returns the first success
type fallbackSource struct {
	sources []BondedSource
	log     *slog.Logger
}

func (f fallbackSource) BondedDevices(ctx context.Context) ([]BluetoothDevice, error) {
	var errs []error
	for _, s := range f.sources {
		devices, err := s.BondedDevices(ctx)
		if err == nil {
			return devices, nil
		}
		f.log.Debug("paired device source failed", "source", fmt.Sprintf("%T", s), "error", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrNotSupported
	}
	return nil, errors.Join(errs...)
}
