//go:build linux

package printer

import (
	"fmt"
	"log/slog"
)

// OpenPlatform connects to BlueZ and picks the configured transport.
// A missing system bus is not fatal: listing and the adapter checks fall
// back to bluetoothctl.
func OpenPlatform(opts PlatformOptions) (*Platform, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	var dialer Dialer
	switch opts.Transport {
	case "", TransportSocket:
		dialer = SocketDialer{Channel: opts.Channel}
	case TransportSerial:
		dialer = serialDialer(opts)
	default:
		return nil, fmt.Errorf("unknown transport %q", opts.Transport)
	}

	bz, err := newBluez()
	if err != nil {
		log.Warn("bluez unavailable, using bluetoothctl", "error", err)
	}
	return newPlatform(bz, bluetoothctlSource{}, dialer, probeRFCOMM, log), nil
}

// newPlatform wires the sources and grants. bz may be nil.
func newPlatform(bz *bluez, ctl bluetoothctlSource, dialer Dialer, probe func() error, log *slog.Logger) *Platform {
	p := &Platform{Dialer: dialer}
	access := &systemAccess{adapter: ctl, probe: probe, log: log}

	var sources []BondedSource
	if bz != nil {
		sources = append(sources, bz)
		access.adapter = bz
		p.closer = bz.close
	}
	sources = append(sources, ctl)
	p.Source = fallbackSource{sources: sources, log: log}
	p.Access = access
	return p
}
