//go:build windows

package printer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sys/windows/registry"
)

const (
	bthenumKey    = `SYSTEM\CurrentControlSet\Enum\BTHENUM`
	bthDevicesKey = `SYSTEM\CurrentControlSet\Services\BTHPORT\Parameters\Devices`
)

// registrySource lists paired SPP devices with their COM ports.
// On Windows, paired BT SPP devices appear as COM ports automatically.
type registrySource struct{}

// BondedDevices implements BondedSource
func (registrySource) BondedDevices(ctx context.Context) ([]BluetoothDevice, error) {
	enum, err := registry.OpenKey(registry.LOCAL_MACHINE, bthenumKey, registry.READ)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", bthenumKey, err)
	}
	defer enum.Close()

	services, err := enum.ReadSubKeyNames(-1)
	if err != nil {
		return nil, err
	}

	spp := "{" + strings.ToLower(SerialPortProfile.String()) + "}"
	var devices []BluetoothDevice
	for _, svc := range services {
		if !strings.HasPrefix(strings.ToLower(svc), spp) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		devices = append(devices, sppPorts(bthenumKey+`\`+svc)...)
	}
	return devices, nil
}

func sppPorts(svcPath string) []BluetoothDevice {
	svc, err := registry.OpenKey(registry.LOCAL_MACHINE, svcPath, registry.READ)
	if err != nil {
		return nil
	}
	defer svc.Close()

	instances, err := svc.ReadSubKeyNames(-1)
	if err != nil {
		return nil
	}

	var devices []BluetoothDevice
	for _, inst := range instances {
		mac := macFromInstance(inst)
		if mac == "" {
			continue // local (incoming) SPP service
		}
		params, err := registry.OpenKey(registry.LOCAL_MACHINE, svcPath+`\`+inst+`\Device Parameters`, registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		port, _, err := params.GetStringValue("PortName")
		params.Close()
		if err != nil || port == "" {
			continue
		}
		devices = append(devices, BluetoothDevice{
			Name:   deviceName(mac),
			MAC:    mac,
			Handle: port,
			UUIDs:  []uuid.UUID{SerialPortProfile},
		})
	}
	return devices
}

// macFromInstance extracts the remote address from a BTHENUM instance id
// such as "8&2a5c3b1&0&001B10A0B0C0_C00000000".
func macFromInstance(inst string) string {
	i := strings.LastIndex(inst, "&")
	j := strings.Index(inst, "_")
	if i < 0 || j != i+13 {
		return ""
	}
	raw := strings.ToUpper(inst[i+1 : j])
	if raw == "000000000000" {
		return ""
	}
	parts := make([]string, 0, 6)
	for k := 0; k < 12; k += 2 {
		parts = append(parts, raw[k:k+2])
	}
	return strings.Join(parts, ":")
}

// deviceName reads the friendly name BTHPORT stored at pairing time
func deviceName(mac string) string {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE,
		bthDevicesKey+`\`+strings.ToLower(strings.ReplaceAll(mac, ":", "")), registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer key.Close()

	raw, _, err := key.GetBinaryValue("Name")
	if err != nil {
		return ""
	}
	if i := strings.IndexByte(string(raw), 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

// OpenPlatform always uses the serial transport: Windows handles BT SPP
// as regular COM ports and no grants are needed to open them.
func OpenPlatform(opts PlatformOptions) (*Platform, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Transport == TransportSocket {
		log.Debug("socket transport unavailable, using COM port")
	}
	return &Platform{
		Source: registrySource{},
		Dialer: serialDialer(opts),
		Access: StaticAccess(true),
	}, nil
}
