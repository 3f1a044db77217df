package colors

// Color is an ANSI color or style code.
type Color int

// ANSI codes used to colorize console output. The values mirror zerolog's console writer.
const (
	RED Color = iota + 31
	GREEN
	YELLOW
	BLUE
	MAGENTA
	CYAN

	BOLD      Color = 1
	DARK_GRAY Color = 90
)

const (
	// LEFT_ARROW is the glyph printed in front of info-level console logs
	LEFT_ARROW = "⇾"
)
