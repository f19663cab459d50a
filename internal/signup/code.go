package signup

import "strings"

// CodeLength is the number of digits in a one-time passcode.
const CodeLength = 6

// CodeEntry models the six single-digit cells of the OTP input together
// with a declarative focus index the rendering layer reacts to. Cells may
// be empty while the code is being typed.
type CodeEntry struct {
	cells [CodeLength]byte // '0'..'9', or 0 for an empty slot
	focus int
}

// Focus returns the index of the focused cell.
func (c *CodeEntry) Focus() int { return c.focus }

// Cell returns the digit in cell i as a string, or "" for an empty slot.
func (c *CodeEntry) Cell(i int) string {
	if i < 0 || i >= CodeLength || c.cells[i] == 0 {
		return ""
	}
	return string(c.cells[i])
}

// TypeDigit writes a digit into the focused cell and advances focus.
// Non-digit input is rejected silently. Focus stays on the last cell once
// reached so further typing overwrites it.
func (c *CodeEntry) TypeDigit(r rune) {
	if r < '0' || r > '9' {
		return
	}
	c.cells[c.focus] = byte(r)
	if c.focus < CodeLength-1 {
		c.focus++
	}
}

// Backspace clears the focused cell, or moves focus back one cell when the
// focused cell is already empty.
func (c *CodeEntry) Backspace() {
	if c.cells[c.focus] == 0 {
		if c.focus > 0 {
			c.focus--
		}
		return
	}
	c.cells[c.focus] = 0
}

// MoveLeft shifts focus one cell left without altering content.
func (c *CodeEntry) MoveLeft() {
	if c.focus > 0 {
		c.focus--
	}
}

// MoveRight shifts focus one cell right without altering content.
func (c *CodeEntry) MoveRight() {
	if c.focus < CodeLength-1 {
		c.focus++
	}
}

// Paste strips non-digit characters from s, truncates the result to six
// digits and distributes them left-to-right, overwriting existing values.
// It bypasses the per-keystroke entry path, so focus does not advance.
func (c *CodeEntry) Paste(s string) {
	digits := make([]byte, 0, CodeLength)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, byte(r))
			if len(digits) == CodeLength {
				break
			}
		}
	}
	for i, d := range digits {
		c.cells[i] = d
	}
}

// Code returns the digits entered so far, in order, skipping empty slots.
func (c *CodeEntry) Code() string {
	var b strings.Builder
	for _, cell := range c.cells {
		if cell != 0 {
			b.WriteByte(cell)
		}
	}
	return b.String()
}

// Complete reports whether all six cells are filled.
func (c *CodeEntry) Complete() bool {
	for _, cell := range c.cells {
		if cell == 0 {
			return false
		}
	}
	return true
}

// Clear empties every cell and returns focus to the first one.
func (c *CodeEntry) Clear() {
	*c = CodeEntry{}
}
