package printer

import (
	"context"
	"fmt"
)

// Permission is one of the two grants the app needs
type Permission int

const (
	PermConnect Permission = iota // open RFCOMM sockets
	PermScan                      // read the bonded-device registry
)

func (p Permission) String() string {
	switch p {
	case PermConnect:
		return "connect"
	case PermScan:
		return "scan"
	}
	return fmt.Sprintf("permission(%d)", int(p))
}

// Access checks and requests the Bluetooth grants.
type Access interface {
	// Check returns nil when both grants are held, otherwise an error
	// wrapping ErrPermissionDenied.
	Check(ctx context.Context) error
	// Request tries to obtain the grants; it is called once at start-up.
	Request(ctx context.Context) error
}

// StaticAccess is an Access with a fixed answer
type StaticAccess bool

func (a StaticAccess) Check(context.Context) error {
	if !a {
		return deniedError(PermConnect, PermScan)
	}
	return nil
}

func (a StaticAccess) Request(ctx context.Context) error {
	return a.Check(ctx)
}

func deniedError(missing ...Permission) error {
	return fmt.Errorf("%w: missing %v", ErrPermissionDenied, missing)
}
