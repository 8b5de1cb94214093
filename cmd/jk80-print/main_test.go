package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"fyne.io/fyne/v2/test"

	printapp "jk80-print/internal/app"
	"jk80-print/internal/config"
	"jk80-print/internal/printer"
)

type listSource struct {
	devices []printer.BluetoothDevice
}

func (s listSource) BondedDevices(context.Context) ([]printer.BluetoothDevice, error) {
	return s.devices, nil
}

func TestRefreshDevicesWhileListReads(t *testing.T) {
	test.NewApp()
	defer test.NewApp()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := listSource{devices: []printer.BluetoothDevice{
		{Name: "JK-80PL Printer", MAC: "AA:BB:CC:DD:EE:FF"},
		{Name: "HP LaserJet", MAC: "11:22:33:44:55:66"},
	}}
	a := &App{
		log: log,
		core: &printapp.App{
			Config:    config.Default(),
			Log:       log,
			Directory: printer.NewDirectory(src, printer.StaticAccess(true), printer.TargetName, log),
		},
	}
	a.buildUI()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			a.refreshDevices()
		}
	}()
	for {
		select {
		case <-done:
			dev, ok := a.deviceAt(0)
			if !ok || dev.MAC != "AA:BB:CC:DD:EE:FF" {
				t.Fatalf("row 0 = %+v, %v", dev, ok)
			}
			if _, ok := a.deviceAt(1); ok {
				t.Error("filtered device shown")
			}
			if n := a.deviceList.Length(); n != 1 {
				t.Errorf("list length = %d, want 1", n)
			}
			return
		default:
			a.deviceAt(0)
		}
	}
}
