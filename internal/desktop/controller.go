// Package desktop abstracts OS-level automation (launching programs,
// window management, mouse and keyboard injection) behind a controller
// interface so tool handlers stay testable.
package desktop

// Region is a screen rectangle for partial captures.
type Region struct {
	Left, Top, Width, Height int
}

// Controller performs desktop side effects. Implementations may shell out
// to platform utilities; tests substitute a fake.
type Controller interface {
	OpenApplication(name string) error
	OpenURL(url string) error

	ActivateWindow(titleSubstring string) error
	MinimizeWindow(titleSubstring string) error
	MaximizeWindow(titleSubstring string) error
	CloseWindow(titleSubstring string) error
	ListWindows() ([]string, error)
	ActiveWindowTitle() (string, error)

	CaptureScreen(filename string, region *Region) (string, error)
	MoveMouse(x, y int, durationSeconds float64, relative bool) error
	ClickMouse(x, y *int, button string, clicks int) error
	TypeText(text string) error
	PressKey(key string) error
	Hotkey(keys ...string) error
}
