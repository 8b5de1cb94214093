//go:build linux

package printer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
)

const (
	busName            = "org.bluez"
	adapterPath        = "/org/bluez/hci0"
	adapterIface       = "org.bluez.Adapter1"
	deviceIface        = "org.bluez.Device1"
	propsIface         = "org.freedesktop.DBus.Properties"
	objectManagerIface = "org.freedesktop.DBus.ObjectManager"
)

type managedObjects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// bluez wraps a system D-Bus connection for BlueZ operations.
type bluez struct {
	conn *dbus.Conn
}

func newBluez() (*bluez, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	// Quick check that BlueZ is on the bus.
	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		conn.Close()
		return nil, fmt.Errorf("list bus names: %w", err)
	}
	for _, n := range names {
		if n == busName {
			return &bluez{conn: conn}, nil
		}
	}
	conn.Close()
	return nil, fmt.Errorf("org.bluez not found on system bus, is bluetooth.service running?")
}

func (b *bluez) close() error {
	return b.conn.Close()
}

func (b *bluez) getProp(ctx context.Context, path dbus.ObjectPath, iface, prop string) (dbus.Variant, error) {
	obj := b.conn.Object(busName, path)
	var v dbus.Variant
	err := obj.CallWithContext(ctx, propsIface+".Get", 0, iface, prop).Store(&v)
	return v, err
}

func (b *bluez) setProp(ctx context.Context, path dbus.ObjectPath, iface, prop string, val interface{}) error {
	obj := b.conn.Object(busName, path)
	return obj.CallWithContext(ctx, propsIface+".Set", 0, iface, prop, dbus.MakeVariant(val)).Err
}

func (b *bluez) adapterPowered(ctx context.Context) (bool, error) {
	v, err := b.getProp(ctx, adapterPath, adapterIface, "Powered")
	if err != nil {
		return false, err
	}
	powered, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("property Powered is not bool")
	}
	return powered, nil
}

func (b *bluez) setAdapterPowered(ctx context.Context, on bool) error {
	return b.setProp(ctx, adapterPath, adapterIface, "Powered", on)
}

func (b *bluez) managedObjects(ctx context.Context) (managedObjects, error) {
	var objs managedObjects
	err := b.conn.Object(busName, "/").
		CallWithContext(ctx, objectManagerIface+".GetManagedObjects", 0).
		Store(&objs)
	if err != nil {
		return nil, fmt.Errorf("get managed objects: %w", err)
	}
	return objs, nil
}

// BondedDevices implements BondedSource
func (b *bluez) BondedDevices(ctx context.Context) ([]BluetoothDevice, error) {
	objs, err := b.managedObjects(ctx)
	if err != nil {
		return nil, err
	}
	return pairedFromObjects(objs), nil
}

// pairedFromObjects extracts the paired Device1 objects. BlueZ synthesises
// Alias from the address when a device has no name, so only Name is used.
func pairedFromObjects(objs managedObjects) []BluetoothDevice {
	var devices []BluetoothDevice
	for path, ifaces := range objs {
		props, ok := ifaces[deviceIface]
		if !ok {
			continue
		}
		if paired, _ := variantBool(props["Paired"]); !paired {
			continue
		}
		addr, _ := props["Address"].Value().(string)
		if addr == "" {
			addr = macFromPath(path)
		}
		name, _ := props["Name"].Value().(string)

		var uuids []uuid.UUID
		if raw, ok := props["UUIDs"].Value().([]string); ok {
			for _, s := range raw {
				if u, err := uuid.Parse(s); err == nil {
					uuids = append(uuids, u)
				}
			}
		}

		devices = append(devices, BluetoothDevice{
			Name:   name,
			MAC:    addr,
			Handle: string(path),
			UUIDs:  uuids,
		})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].MAC < devices[j].MAC })
	return devices
}

func variantBool(v dbus.Variant) (bool, bool) {
	b, ok := v.Value().(bool)
	return b, ok
}

// macFromPath extracts a MAC address from a BlueZ device object path.
func macFromPath(path dbus.ObjectPath) string {
	s := string(path)
	i := strings.LastIndex(s, "/dev_")
	if i < 0 {
		return ""
	}
	return strings.ReplaceAll(s[i+len("/dev_"):], "_", ":")
}
