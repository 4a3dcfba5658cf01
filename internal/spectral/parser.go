// Package spectral parses stellar spectral-type strings and matches them
// against the modeled-parameter calibration grid.
package spectral

import "strings"

// Class is the decomposition of a spectral-type string.
type Class struct {
	Temp string // temperature class O,B,A,F,G,K,M or the unknown sentinel
	Sub  string // subclass number, e.g. "2" or "3.5"
	Lum  string // luminosity class I..VI, defaulted to V
}

const unknown = "?"

// Unknown is the all-sentinel decomposition for unparseable strings.
var Unknown = Class{Temp: unknown, Sub: unknown, Lum: unknown}

const tempLetters = "OBAFGKM"

// Parse decomposes a spectral-type string such as "M5V", "dM3:", or
// "K2-IIIbCa-1". Multi-component strings (containing "+") and strings not
// starting with a main-sequence temperature letter come back as Unknown.
// A single hyphen is tolerated between temperature letter and subclass and
// between subclass and luminosity sequence; "K-2-V" therefore parses as
// K/2/V, a local convention carried over from the source data.
func Parse(s string) Class {
	s = strings.TrimSpace(s)

	// Old dwarf notation: a leading lowercase "d" means main sequence.
	if strings.HasPrefix(s, "d") {
		s = s[1:]
	}

	if s == "" || strings.ContainsRune(s, '+') {
		return Unknown
	}
	if !strings.ContainsRune(tempLetters, rune(s[0])) {
		return Unknown
	}

	c := Class{Temp: s[:1], Sub: unknown, Lum: "V"}
	i := 1

	if i < len(s) && s[i] == '-' {
		i++
	}

	// Subclass: one digit, optionally a ".5"-style decimal (three chars).
	if i < len(s) && isDigit(s[i]) {
		if i+2 < len(s) && s[i+1] == '.' && isDigit(s[i+2]) {
			c.Sub = s[i : i+3]
			i += 3
		} else {
			c.Sub = s[i : i+1]
			i++
		}
	}

	if i < len(s) && s[i] == '-' {
		i++
	}

	// Luminosity: up to three Roman-numeral characters, stopping at the
	// first non-I/V character. Absent sequence means main sequence.
	if i < len(s) && (s[i] == 'I' || s[i] == 'V') {
		j := i
		for j < len(s) && j-i < 3 && (s[j] == 'I' || s[j] == 'V') {
			j++
		}
		c.Lum = s[i:j]
	}

	return c
}

// String re-concatenates the decomposition, the round-trip form used to
// match calibration rows.
func (c Class) String() string {
	if c.Temp == unknown {
		return unknown
	}
	s := c.Temp
	if c.Sub != unknown {
		s += c.Sub
	}
	if c.Lum != unknown {
		s += c.Lum
	}
	return s
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
