// Package backend abstracts the terminal the tree view draws on.
//
// Terminal implements Backend over a tcell screen. Events are converted to
// backend types so the view never depends on tcell directly.
package backend

// Color is a palette index. ColorDefault uses the terminal's own color.
type Color int16

// ColorDefault is the terminal's default color.
const ColorDefault Color = -1

// Common palette colors.
const (
	ColorBlack Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorGray Color = 8
)

// Attr is a set of text attributes.
type Attr uint8

const (
	AttrNone Attr = 0
	AttrBold Attr = 1 << (iota - 1)
	AttrDim
	AttrUnderline
	AttrReverse
)

// Has returns true if a contains attr.
func (a Attr) Has(attr Attr) bool {
	return a&attr != 0
}

// Style is the look of a cell.
type Style struct {
	Fg    Color
	Bg    Color
	Attrs Attr
}

// DefaultStyle uses the terminal's colors with no attributes.
func DefaultStyle() Style {
	return Style{Fg: ColorDefault, Bg: ColorDefault}
}

// Foreground returns s with fg as the foreground color.
func (s Style) Foreground(fg Color) Style {
	s.Fg = fg
	return s
}

// Background returns s with bg as the background color.
func (s Style) Background(bg Color) Style {
	s.Bg = bg
	return s
}

// With returns s with attrs added.
func (s Style) With(attrs Attr) Style {
	s.Attrs |= attrs
	return s
}

// Rect is a rectangle of cells.
type Rect struct {
	X, Y, W, H int
}

// EventType identifies the type of terminal event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventMouse
	EventResize
	EventInterrupt
)

// Event is a terminal event.
type Event struct {
	Type EventType

	// Key events
	Key  Key
	Rune rune
	Mod  ModMask

	// Mouse events report the buttons held after the event.
	X, Y    int
	Buttons MouseButton

	// Resize events
	Width, Height int

	// Interrupt events carry the value passed to PostInterrupt.
	Data any
}

// Key is a keyboard key.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // use Event.Rune
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyCtrlC
	KeyCtrlL
	KeyCtrlQ
)

// ModMask is the set of modifiers held.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// MouseButton is a bitmask of mouse buttons and wheel motion.
type MouseButton int

const (
	MouseNone MouseButton = 0
	MouseLeft MouseButton = 1 << (iota - 1)
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// Has returns true if every button in other is held in b.
func (b MouseButton) Has(other MouseButton) bool {
	return other != MouseNone && b&other == other
}

// Backend is a drawing surface with an input queue.
type Backend interface {
	// Init prepares the terminal. It must be called before anything else.
	Init() error

	// Shutdown restores the terminal.
	Shutdown()

	// Size returns the screen size in cells.
	Size() (width, height int)

	// SetContent sets one cell. Positions off screen are ignored.
	SetContent(x, y int, r rune, style Style)

	// Fill fills rect with r.
	Fill(rect Rect, r rune, style Style)

	// Clear blanks the screen.
	Clear()

	// Show flushes pending changes to the terminal.
	Show()

	// PollEvent blocks for the next event. It returns EventNone after
	// Shutdown.
	PollEvent() Event

	// PostInterrupt queues an EventInterrupt carrying data. It is safe to
	// call from any goroutine.
	PostInterrupt(data any) error

	// EnableMouse turns on mouse reporting including motion events.
	EnableMouse()

	// DisableMouse turns off mouse reporting.
	DisableMouse()

	// Beep rings the bell.
	Beep()
}
