package colors

// enabled describes whether Colorize emits ANSI escape codes.
var enabled = true

// init enables ANSI coloring where the platform requires it to be explicitly checked.
func init() {
	EnableColor()
}

// DisableColor turns off ANSI coloring for every ColorFunc.
func DisableColor() {
	enabled = false
}
