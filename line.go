//
// Copyright (c) 2026 BCN3D Technologies
//

package gcodepp

import (
	"strconv"
	"strings"
)

const (
	// CommentMarker starts a comment, either a whole line or a trailing one
	CommentMarker = ';'
)

// Line is a single tokenized G-code instruction
type Line struct {
	Raw     string           // Original text
	Letter  byte             // Command letter ('G', 'M', 'T'), or 0
	Code    float64          // Command number
	HasCode bool             // Code was present and numeric
	Params  map[byte]float64 // Parameter letter to value
	Comment string           // Text after the comment marker

	Marker      string // For ';NAME:value' comment lines
	MarkerValue string
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// parseNumber parses a G-code number, returning ok=false on malformed input
func parseNumber(text string) (value float64, ok bool) {
	if len(text) == 0 {
		return
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		value = 0
		return
	}

	ok = true
	return
}

// ParseLine tokenizes a raw line. It never fails: malformed
// parameters are simply absent from the result.
func ParseLine(raw string) (line Line) {
	line.Raw = raw

	text := strings.TrimSpace(raw)

	if n := strings.IndexByte(text, CommentMarker); n >= 0 {
		line.Comment = text[n+1:]
		text = strings.TrimSpace(text[:n])
	}

	if len(text) == 0 {
		if len(line.Comment) > 0 {
			name, value, found := strings.Cut(line.Comment, ":")
			if found && len(name) > 0 && !strings.ContainsAny(name, " \t") {
				line.Marker = name
				line.MarkerValue = strings.TrimSpace(value)
			}
		}
		return
	}

	fields := strings.Fields(text)

	word := fields[0]
	if isLetter(word[0]) {
		line.Letter = upper(word[0])
		line.Code, line.HasCode = parseNumber(word[1:])
	}

	for _, field := range fields[1:] {
		if !isLetter(field[0]) {
			continue
		}
		value, ok := parseNumber(field[1:])
		if !ok {
			continue
		}
		if line.Params == nil {
			line.Params = make(map[byte]float64, len(fields)-1)
		}
		line.Params[upper(field[0])] = value
	}

	return
}

// IsComment is true for lines with no instruction
func (line *Line) IsComment() bool {
	return line.Letter == 0
}

// Is checks the command letter and code
func (line *Line) Is(letter byte, code int) bool {
	return line.Letter == letter && line.HasCode && line.Code == float64(code)
}

// IsMotion is true for G0, G1, G2 and G3
func (line *Line) IsMotion() bool {
	return line.Is('G', 0) || line.Is('G', 1) || line.Is('G', 2) || line.Is('G', 3)
}

// Value returns a parameter value
func (line *Line) Value(letter byte) (value float64, ok bool) {
	value, ok = line.Params[upper(letter)]
	return
}

// ValueOr returns a parameter value, or the default if absent
func (line *Line) ValueOr(letter byte, defValue float64) (value float64) {
	value, ok := line.Value(letter)
	if !ok {
		value = defValue
	}

	return
}

// Has is true if the parameter is present
func (line *Line) Has(letter byte) bool {
	_, ok := line.Params[upper(letter)]
	return ok
}

// Command renders the command word, ie "G1" or "M117"
func (line *Line) Command() string {
	if line.Letter == 0 {
		return ""
	}

	if !line.HasCode {
		return string([]byte{line.Letter})
	}

	return string([]byte{line.Letter}) + FormatFloat(line.Code)
}

// MarkerFloat parses the marker value as a number
func (line *Line) MarkerFloat() (value float64, ok bool) {
	if len(line.Marker) == 0 {
		return
	}

	return parseNumber(line.MarkerValue)
}

// MarkerInt parses the marker value as an integer
func (line *Line) MarkerInt() (value int, ok bool) {
	if len(line.Marker) == 0 {
		return
	}

	n, err := strconv.Atoi(line.MarkerValue)
	if err != nil {
		return
	}

	value = n
	ok = true
	return
}

// FormatFloat renders a number with at most 5 decimals, trailing
// zeros trimmed.
func FormatFloat(value float64) (text string) {
	text = strconv.FormatFloat(value, 'f', 5, 64)
	if strings.IndexByte(text, '.') >= 0 {
		text = strings.TrimRight(text, "0")
		text = strings.TrimSuffix(text, ".")
	}

	if text == "-0" {
		text = "0"
	}

	return
}
