package theme

// Mode selects the style token set.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// Tokens is the resolved style set a renderer consumes. For the terminal
// renderer these are ANSI sequences; the mapping itself is a pure function
// of the mode.
type Tokens struct {
	Text      string
	TextMuted string
	Heading   string
	Accent    string
	Error     string
	Success   string
	Reset     string
}

// Colours maps a theme mode to its token set.
func Colours(mode Mode) Tokens {
	if mode == Light {
		return Tokens{
			Text:      "\x1b[30m",
			TextMuted: "\x1b[90m",
			Heading:   "\x1b[1;30m",
			Accent:    "\x1b[35m",
			Error:     "\x1b[31m",
			Success:   "\x1b[32m",
			Reset:     "\x1b[0m",
		}
	}
	return Tokens{
		Text:      "\x1b[97m",
		TextMuted: "\x1b[37m",
		Heading:   "\x1b[1;97m",
		Accent:    "\x1b[95m",
		Error:     "\x1b[91m",
		Success:   "\x1b[92m",
		Reset:     "\x1b[0m",
	}
}

// Toggle flips between the two modes.
func Toggle(mode Mode) Mode {
	if mode == Light {
		return Dark
	}
	return Light
}
