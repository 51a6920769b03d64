package core

// DisplayDriver is the character display the loop reports speed on.
// The command/data protocol and its timing belong to the implementation.
type DisplayDriver interface {
	// Clear blanks the display and homes the cursor
	Clear() error

	// Print writes text at the cursor
	Print(s string) error
}

// Global singleton used by core code. A nil display is allowed.
var displayDriver DisplayDriver

// SetDisplayDriver is called by target-specific code to register its display.
func SetDisplayDriver(d DisplayDriver) {
	displayDriver = d
}

// Display returns the registered display, or nil when running headless.
func Display() DisplayDriver {
	return displayDriver
}
