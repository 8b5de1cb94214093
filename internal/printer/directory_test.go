package printer

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

type fakeSource struct {
	devices []BluetoothDevice
	err     error
	calls   int
}

func (s *fakeSource) BondedDevices(ctx context.Context) ([]BluetoothDevice, error) {
	s.calls++
	return s.devices, s.err
}

func TestListCandidateDevices(t *testing.T) {
	src := &fakeSource{devices: []BluetoothDevice{
		{Name: "JK-80PL Printer", MAC: "AA:BB:CC:DD:EE:FF"},
		{Name: "HP LaserJet", MAC: "11:22:33:44:55:66"},
	}}
	dir := NewDirectory(src, StaticAccess(true), TargetName, quietLog)

	got := dir.ListCandidateDevices(context.Background())
	want := []BluetoothDevice{{Name: "JK-80PL Printer", MAC: "AA:BB:CC:DD:EE:FF"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("candidates = %v, want %v", got, want)
	}
}

func TestListCandidateDevicesWithoutPermission(t *testing.T) {
	src := &fakeSource{devices: []BluetoothDevice{{Name: "JK-80PL", MAC: "AA:BB:CC:DD:EE:FF"}}}
	dir := NewDirectory(src, StaticAccess(false), TargetName, quietLog)

	got := dir.ListCandidateDevices(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("candidates = %#v, want empty slice", got)
	}
	if src.calls != 0 {
		t.Error("registry enumerated without permission")
	}
}

func TestListCandidateDevicesSourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("access revoked")}
	dir := NewDirectory(src, StaticAccess(true), TargetName, quietLog)

	if got := dir.ListCandidateDevices(context.Background()); len(got) != 0 {
		t.Errorf("candidates = %v, want none", got)
	}
}

func TestListCandidateDevicesNoTarget(t *testing.T) {
	all := []BluetoothDevice{{Name: "HP LaserJet"}, {MAC: "00:11:22:33:44:55"}}
	dir := NewDirectory(&fakeSource{devices: all}, StaticAccess(true), "", quietLog)

	if got := dir.ListCandidateDevices(context.Background()); len(got) != 2 {
		t.Errorf("got %d devices, want 2", len(got))
	}
}

func TestFilterCandidates(t *testing.T) {
	devices := []BluetoothDevice{
		{Name: "JK-80PL", MAC: "1"},
		{Name: "jk-80pl-2", MAC: "2"},
		{Name: "My jk-80PL receipt", MAC: "3"},
		{Name: "JK-80", MAC: "4"},
		{Name: "", MAC: "5"},
		{Name: "JK 80PL", MAC: "6"},
		{Name: "Headphones", MAC: "7"},
	}
	got := FilterCandidates(devices, TargetName)

	var macs []string
	for _, d := range got {
		macs = append(macs, d.MAC)
	}
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(macs, want) {
		t.Errorf("matched %v, want %v", macs, want)
	}

	// every surfaced device has a name containing the target
	for _, d := range got {
		if !d.MatchesName(TargetName) || d.Name == "" {
			t.Errorf("unexpected candidate %v", d)
		}
	}
}

func TestFindDevice(t *testing.T) {
	devices := []BluetoothDevice{
		{Name: "JK-80PL Bar", MAC: "AA:AA:AA:AA:AA:AA"},
		{Name: "JK-80PL Kitchen", MAC: "BB:BB:BB:BB:BB:BB"},
	}
	tests := []struct {
		query   string
		wantMAC string
		wantErr bool
	}{
		{"", "AA:AA:AA:AA:AA:AA", false},
		{"bb:bb:bb:bb:bb:bb", "BB:BB:BB:BB:BB:BB", false},
		{"kitchen", "BB:BB:BB:BB:BB:BB", false},
		{"garage", "", true},
	}
	for _, tt := range tests {
		got, err := FindDevice(devices, tt.query)
		if (err != nil) != tt.wantErr {
			t.Errorf("FindDevice(%q) err = %v", tt.query, err)
			continue
		}
		if got.MAC != tt.wantMAC {
			t.Errorf("FindDevice(%q) = %v, want %s", tt.query, got, tt.wantMAC)
		}
	}

	if _, err := FindDevice(nil, ""); !errors.Is(err, ErrNoDevicesFound) {
		t.Errorf("empty list err = %v", err)
	}
}

func TestAdvertisesSPP(t *testing.T) {
	d := BluetoothDevice{UUIDs: []uuid.UUID{SerialPortProfile}}
	if !d.AdvertisesSPP() {
		t.Error("expected SPP")
	}
	if (BluetoothDevice{}).AdvertisesSPP() {
		t.Error("device without UUIDs should not report SPP")
	}
}

func TestStaticAccess(t *testing.T) {
	if err := StaticAccess(true).Check(context.Background()); err != nil {
		t.Errorf("granted: %v", err)
	}
	err := StaticAccess(false).Request(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("denied: %v", err)
	}
}
