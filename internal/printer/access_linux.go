//go:build linux

package printer

import (
	"context"
	"fmt"
	"log/slog"
)

// adapter reports and switches the local controller's power
type adapter interface {
	adapterPowered(ctx context.Context) (bool, error)
	setAdapterPowered(ctx context.Context, on bool) error
}

// systemAccess maps the two grants onto the host: connect is the right to
// open RFCOMM sockets, scan is a reachable controller that is powered.
type systemAccess struct {
	adapter adapter // BlueZ over D-Bus, or bluetoothctl without a bus
	probe   func() error
	log     *slog.Logger
}

func (a *systemAccess) missing(ctx context.Context) []Permission {
	var missing []Permission
	if err := a.probe(); err != nil {
		a.log.Debug("rfcomm socket probe failed", "error", err)
		missing = append(missing, PermConnect)
	}
	if a.adapter == nil {
		missing = append(missing, PermScan)
	} else if powered, err := a.adapter.adapterPowered(ctx); err != nil || !powered {
		a.log.Debug("adapter unavailable", "powered", powered, "error", err)
		missing = append(missing, PermScan)
	}
	return missing
}

func (a *systemAccess) Check(ctx context.Context) error {
	if m := a.missing(ctx); len(m) > 0 {
		return deniedError(m...)
	}
	return nil
}

// Request powers the adapter on when it is off. Socket access cannot be
// granted at runtime.
func (a *systemAccess) Request(ctx context.Context) error {
	if a.adapter != nil {
		powered, err := a.adapter.adapterPowered(ctx)
		if err == nil && !powered {
			a.log.Info("powering on bluetooth adapter")
			if err := a.adapter.setAdapterPowered(ctx, true); err != nil {
				a.log.Warn("failed to power on adapter", "error", err)
			}
		}
	}
	if err := a.Check(ctx); err != nil {
		a.log.Warn("bluetooth access not granted, features disabled", "error", err)
		return fmt.Errorf("request access: %w", err)
	}
	return nil
}
