//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/hd44780"
)

// LCD wiring: 4-bit bus on GP16-GP19, RW tied to ground
var (
	lcdData = []machine.Pin{machine.GP16, machine.GP17, machine.GP18, machine.GP19}
	lcdE    = machine.GP20
	lcdRS   = machine.GP21
)

// LCDDisplay implements the DisplayDriver interface on an HD44780
// character LCD
type LCDDisplay struct {
	dev hd44780.Device
}

// NewLCDDisplay configures a width x height character LCD
func NewLCDDisplay(width, height int16) (*LCDDisplay, error) {
	dev, err := hd44780.NewGPIO4Bit(lcdData, lcdE, lcdRS, machine.NoPin)
	if err != nil {
		return nil, err
	}
	err = dev.Configure(hd44780.Config{
		Width:  width,
		Height: height,
	})
	if err != nil {
		return nil, err
	}
	return &LCDDisplay{dev: dev}, nil
}

// Clear blanks the screen and homes the cursor
func (l *LCDDisplay) Clear() error {
	l.dev.ClearDisplay()
	l.dev.SetCursor(0, 0)
	return nil
}

// Print writes s at the cursor
func (l *LCDDisplay) Print(s string) error {
	if _, err := l.dev.Write([]byte(s)); err != nil {
		return err
	}
	return l.dev.Display()
}
