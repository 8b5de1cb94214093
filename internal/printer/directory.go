package printer

import (
	"context"
	"log/slog"
)

// BondedSource enumerates the platform's paired devices
type BondedSource interface {
	BondedDevices(ctx context.Context) ([]BluetoothDevice, error)
}

// Directory exposes the paired devices that look like the target printer
type Directory struct {
	source BondedSource
	access Access
	target string
	log    *slog.Logger
}

// NewDirectory creates a Directory filtering on target. An empty target
// disables filtering.
func NewDirectory(source BondedSource, access Access, target string, log *slog.Logger) *Directory {
	if log == nil {
		log = slog.Default()
	}
	return &Directory{source: source, access: access, target: target, log: log}
}

// ListCandidateDevices returns the paired devices whose name contains the
// target. Missing grants and platform errors yield an empty list.
func (d *Directory) ListCandidateDevices(ctx context.Context) []BluetoothDevice {
	if err := d.access.Check(ctx); err != nil {
		d.log.Warn("skipping device enumeration", "error", err)
		return []BluetoothDevice{}
	}

	devices, err := d.source.BondedDevices(ctx)
	if err != nil {
		d.log.Error("failed to list paired devices", "error", err)
		return []BluetoothDevice{}
	}

	if d.target == "" {
		return devices
	}

	candidates := FilterCandidates(devices, d.target)
	for _, c := range candidates {
		if len(c.UUIDs) > 0 && !c.AdvertisesSPP() {
			d.log.Warn("candidate does not advertise the serial port profile", "device", c.Name, "mac", c.MAC)
		}
	}
	d.log.Debug("enumerated paired devices", "paired", len(devices), "candidates", len(candidates))
	return candidates
}
