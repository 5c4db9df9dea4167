package desktop

// Default engine constants.
const (
	DefaultMinWindowWidth    = 320
	DefaultMinWindowHeight   = 220
	DefaultZBase             = 50
	DefaultMaximizeInset     = 8
	DefaultMaximizeMinWidth  = 320
	DefaultMaximizeMinHeight = 240
	DefaultPhoneBelow        = 768
	DefaultTabletMax         = 1180
	DefaultPhoneDockSize     = 5
)

// Breakpoints map viewport widths to view modes. Widths below PhoneBelow are
// phone, widths up to and including TabletMax are tablet, wider is desktop.
type Breakpoints struct {
	PhoneBelow int
	TabletMax  int
}

// Settings holds the tunable constants of the engine.
type Settings struct {
	MinWindowWidth  int
	MinWindowHeight int
	// ZBase is the paint index of the bottom-most focused window.
	ZBase int

	MaximizeInset     int
	MaximizeMinWidth  int
	MaximizeMinHeight int

	Breakpoints   Breakpoints
	PhoneDockSize int

	// InitialOpen lists the windows opened (and focused, in order) at
	// construction.
	InitialOpen []AppID
}

// DefaultSettings returns the stock engine constants.
func DefaultSettings() Settings {
	return Settings{
		MinWindowWidth:    DefaultMinWindowWidth,
		MinWindowHeight:   DefaultMinWindowHeight,
		ZBase:             DefaultZBase,
		MaximizeInset:     DefaultMaximizeInset,
		MaximizeMinWidth:  DefaultMaximizeMinWidth,
		MaximizeMinHeight: DefaultMaximizeMinHeight,
		Breakpoints: Breakpoints{
			PhoneBelow: DefaultPhoneBelow,
			TabletMax:  DefaultTabletMax,
		},
		PhoneDockSize: DefaultPhoneDockSize,
		InitialOpen:   []AppID{AppTerminal},
	}
}
