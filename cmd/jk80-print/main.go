package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	printapp "jk80-print/internal/app"
	"jk80-print/internal/config"
	"jk80-print/internal/escpos"
	"jk80-print/internal/imaging"
	"jk80-print/internal/logging"
	"jk80-print/internal/printer"
)

const (
	AppVersion = "1.0.0"
	AppName    = "JK-80PL Print"
)

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	core    *printapp.App
	log     *slog.Logger

	// Widgets that need updating
	statusLabel   *widget.Label
	deviceList    *widget.List
	refreshBtn    *widget.Button
	printBtn      *widget.Button
	disconnectBtn *widget.Button
	previewImg    *canvas.Image

	// Candidates from the last refresh; replaced wholesale, never merged
	devMu   sync.Mutex
	devices []printer.BluetoothDevice
}

func main() {
	cfg, err := config.Load("")
	log := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Error("ignoring config", "error", err)
		cfg = config.Default()
	}

	core, err := printapp.New(cfg, log, printapp.Options{})
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}

	a := app.New()
	w := a.NewWindow(fmt.Sprintf("%s v%s", AppName, AppVersion))
	w.Resize(fyne.NewSize(760, 560))

	jk := &App{
		fyneApp: a,
		window:  w,
		core:    core,
		log:     log,
	}

	w.SetMainMenu(jk.buildMenu())
	w.SetContent(jk.buildUI())
	w.SetOnClosed(func() {
		jk.cleanup()
	})

	// Request access, then populate the list
	go func() {
		core.Start(context.Background())
		jk.refreshDevices()
	}()

	w.ShowAndRun()
}

func (a *App) buildMenu() *fyne.MainMenu {
	aboutItem := fyne.NewMenuItem("About", func() {
		a.showAboutDialog()
	})
	return fyne.NewMainMenu(fyne.NewMenu("Help", aboutItem))
}

func (a *App) showAboutDialog() {
	content := container.NewVBox(
		widget.NewLabelWithStyle(AppName, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabel(fmt.Sprintf("Version %s", AppVersion)),
		widget.NewSeparator(),
		widget.NewLabel("Test printing for JK-80PL Bluetooth receipt printers."),
		widget.NewLabel("Pair the printer with your system first; only paired printers are listed."),
		widget.NewHyperlink("ESC/POS command reference", parseURL("https://download4.epson.biz/sec_pubs/pos/reference_en/escpos/")),
		widget.NewLabel(""),
		widget.NewLabel("Built with Fyne and Go"),
	)

	dialog.ShowCustom("About", "Close", content, a.window)
}

func parseURL(urlStr string) *url.URL {
	u, _ := url.Parse(urlStr)
	return u
}

func (a *App) cleanup() {
	if err := a.core.Close(); err != nil {
		a.log.Warn("cleanup", "error", err)
	}
}

func (a *App) buildUI() fyne.CanvasObject {
	a.statusLabel = widget.NewLabel("Not Connected")
	statusCard := widget.NewCard("", "", a.statusLabel)

	a.refreshBtn = widget.NewButton("↻ Refresh", func() {
		go a.refreshDevices()
	})

	a.deviceList = widget.NewList(
		func() int {
			a.devMu.Lock()
			defer a.devMu.Unlock()
			return len(a.devices)
		},
		func() fyne.CanvasObject {
			name := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
			addr := widget.NewLabel("")
			connect := widget.NewButton("Connect", nil)
			return container.NewBorder(nil, nil, nil, connect, container.NewVBox(name, addr))
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			dev, ok := a.deviceAt(id)
			if !ok {
				return
			}
			row := o.(*fyne.Container)
			labels := row.Objects[0].(*fyne.Container)
			labels.Objects[0].(*widget.Label).SetText(dev.Name)
			labels.Objects[1].(*widget.Label).SetText(dev.MAC)
			row.Objects[1].(*widget.Button).OnTapped = func() {
				a.connectDevice(dev)
			}
		},
	)

	a.printBtn = widget.NewButton("Test Print", func() {
		a.print()
	})
	a.printBtn.Importance = widget.HighImportance
	a.printBtn.Disable()

	a.disconnectBtn = widget.NewButton("Disconnect", func() {
		a.disconnect()
	})
	a.disconnectBtn.Disable()

	a.previewImg = canvas.NewImageFromImage(nil)
	a.previewImg.SetMinSize(fyne.NewSize(260, 300))
	a.previewImg.FillMode = canvas.ImageFillContain
	a.updatePreview()

	leftPanel := container.NewBorder(
		container.NewBorder(nil, nil, widget.NewLabel("Paired printers"), a.refreshBtn),
		nil, nil, nil,
		a.deviceList,
	)
	rightPanel := container.NewBorder(
		widget.NewLabel("Receipt preview"),
		nil, nil, nil,
		container.NewScroll(a.previewImg),
	)

	content := container.NewHSplit(leftPanel, rightPanel)
	content.SetOffset(0.5)

	return container.NewBorder(
		statusCard,
		container.NewGridWithColumns(2, a.disconnectBtn, a.printBtn),
		nil, nil,
		content,
	)
}

func (a *App) refreshDevices() {
	a.refreshBtn.Disable()
	defer a.refreshBtn.Enable()

	devices := a.core.Directory.ListCandidateDevices(context.Background())
	a.devMu.Lock()
	a.devices = devices
	a.devMu.Unlock()
	a.deviceList.Refresh()

	if len(devices) == 0 {
		a.log.Info("no candidate printers", "target", a.core.Config.TargetName)
	}
}

func (a *App) deviceAt(id widget.ListItemID) (printer.BluetoothDevice, bool) {
	a.devMu.Lock()
	defer a.devMu.Unlock()
	if id < 0 || id >= len(a.devices) {
		return printer.BluetoothDevice{}, false
	}
	return a.devices[id], true
}

func (a *App) connectDevice(dev printer.BluetoothDevice) {
	reply, err := a.core.Manager.Connect(dev)
	if err != nil {
		a.statusLabel.SetText(fmt.Sprintf("Failed to connect to %s: %v", dev.Name, err))
		return
	}

	a.statusLabel.SetText(fmt.Sprintf("Connecting to %s...", dev.Name))
	a.printBtn.Disable()
	a.disconnectBtn.Disable()

	// The result is applied here, never by the connection worker
	go func() {
		r := <-reply
		a.statusLabel.SetText(printer.StatusText(r))
		a.updateButtons()
	}()
}

func (a *App) disconnect() {
	reply, err := a.core.Manager.Disconnect()
	if err != nil {
		a.statusLabel.SetText(fmt.Sprintf("Disconnect failed: %v", err))
		return
	}
	go func() {
		<-reply
		a.statusLabel.SetText("Not Connected")
		a.updateButtons()
	}()
}

func (a *App) updateButtons() {
	if a.core.Manager.Status() == printer.Connected {
		a.printBtn.Enable()
		a.disconnectBtn.Enable()
		return
	}
	a.printBtn.Disable()
	a.disconnectBtn.Disable()
}

func (a *App) updatePreview() {
	img, err := imaging.Preview(escpos.TestReceiptText(time.Now(), a.core.Config.Model()))
	if err != nil {
		a.log.Warn("preview failed", "error", err)
		return
	}
	a.previewImg.Image = img
	a.previewImg.Refresh()
}

func (a *App) print() {
	dev, ok := a.core.Manager.Active()
	if !ok {
		return
	}

	a.statusLabel.SetText("Printing...")
	a.printBtn.Disable()
	a.updatePreview()

	go func() {
		err := a.core.Manager.PrintTest(time.Now())
		if err != nil {
			a.statusLabel.SetText(fmt.Sprintf("Print error: %v", err))
		} else {
			a.statusLabel.SetText(fmt.Sprintf("Connected to %s - test receipt sent", dev.Name))
		}
		a.updateButtons()
	}()
}
