package printer

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNoDevicesFound   = errors.New("no paired printer found")
	ErrPermissionDenied = errors.New("bluetooth permission denied")
	ErrConnectionFailed = errors.New("failed to connect to printer")
	ErrNotConnected     = errors.New("printer not connected")
	ErrPrintIO          = errors.New("print failed")
	ErrBusy             = errors.New("connection manager busy")
	ErrClosed           = errors.New("connection manager closed")
	ErrNotSupported     = errors.New("operation not supported on this platform")
)

// TargetName is the name fragment every JK-80PL advertises
const TargetName = "JK-80PL"

// DefaultChannel is the RFCOMM channel SPP printers listen on
const DefaultChannel = 1

// SerialPortProfile is the well-known SPP service class UUID
var SerialPortProfile = uuid.MustParse("00001101-0000-1000-8000-00805F9B34FB")

// BluetoothDevice represents a paired Bluetooth device
type BluetoothDevice struct {
	Name   string
	MAC    string // hardware address, or COM port on Windows
	Handle string // BlueZ object path on Linux, COM port on Windows
	UUIDs  []uuid.UUID
}

// AdvertisesSPP reports whether the device lists the serial port profile.
// Devices with an unknown service list report false.
func (d BluetoothDevice) AdvertisesSPP() bool {
	for _, u := range d.UUIDs {
		if u == SerialPortProfile {
			return true
		}
	}
	return false
}

func (d BluetoothDevice) String() string {
	if d.Name == "" {
		return d.MAC
	}
	return d.Name + " (" + d.MAC + ")"
}

// MatchesName reports whether the device name contains target, ignoring case.
// Unnamed devices never match.
func (d BluetoothDevice) MatchesName(target string) bool {
	if d.Name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(d.Name), strings.ToLower(target))
}

// FilterCandidates keeps the devices whose name contains target.
// The input order is preserved.
func FilterCandidates(devices []BluetoothDevice, target string) []BluetoothDevice {
	out := make([]BluetoothDevice, 0, len(devices))
	for _, d := range devices {
		if d.MatchesName(target) {
			out = append(out, d)
		}
	}
	return out
}

// FindDevice picks a device by exact MAC or name fragment. An empty
// query selects the first device.
func FindDevice(devices []BluetoothDevice, query string) (BluetoothDevice, error) {
	if len(devices) == 0 {
		return BluetoothDevice{}, ErrNoDevicesFound
	}
	if query == "" {
		return devices[0], nil
	}
	for _, d := range devices {
		if strings.EqualFold(d.MAC, query) {
			return d, nil
		}
	}
	for _, d := range devices {
		if d.MatchesName(query) {
			return d, nil
		}
	}
	return BluetoothDevice{}, ErrNoDevicesFound
}
