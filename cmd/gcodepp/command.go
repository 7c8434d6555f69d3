//
// Copyright (c) 2026 BCN3D Technologies
//

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

var escapeMap = map[byte]byte{
	'b':  '\b',
	't':  '\t',
	'n':  '\n',
	'r':  '\r',
	'e':  '\033',
	'"':  '"',
	'\'': '\'',
	' ':  ' ',
	'\\': '\\',
}

// argScanner holds the quoting state of one argument
type argScanner struct {
	token   []byte
	quote   byte // Open quote character, or 0
	escape  bool
	oct     int
	octLen  int
	started bool
}

func (as *argScanner) flushOct() {
	if as.octLen > 0 {
		as.token = append(as.token, byte(as.oct))
		as.oct = 0
		as.octLen = 0
	}
}

func (as *argScanner) escaped(c byte) {
	if c >= '0' && c <= '7' {
		as.oct = as.oct*8 + int(c-'0')
		as.octLen++
		if as.octLen == 3 {
			as.flushOct()
			as.escape = false
		}
		return
	}

	as.flushOct()
	as.escape = false

	if value, ok := escapeMap[c]; ok {
		as.token = append(as.token, value)
	} else {
		as.token = append(as.token, c)
	}
}

// next consumes one character, returning true at the end of an argument
func (as *argScanner) next(c byte) (done bool) {
	if as.escape {
		as.escaped(c)
		return
	}

	switch {
	case c == '\\':
		as.escape = true
	case (c == '"' || c == '\'') && as.quote == 0:
		as.quote = c
		as.started = true
	case as.quote != 0 && c == as.quote:
		as.quote = 0
	case isSpace(c) && as.quote == 0:
		done = true
	default:
		as.token = append(as.token, c)
	}

	return
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// ScanArgs is a bufio.SplitFunc for shell-like arguments
func ScanArgs(data []byte, atEOF bool) (advance int, token []byte, err error) {
	skip := 0
	for skip < len(data) && isSpace(data[skip]) {
		skip++
	}

	data = data[skip:]
	if len(data) == 0 {
		advance = skip
		return
	}

	as := &argScanner{}
	for here := 0; here < len(data); here++ {
		if as.next(data[here]) {
			advance = skip + here
			token = as.token
			return
		}
	}

	if as.escape && as.octLen > 0 {
		as.flushOct()
		as.escape = false
	}

	if as.quote == 0 && !as.escape {
		advance = skip + len(data)
		if len(as.token) > 0 || as.started {
			token = as.token
			if token == nil {
				token = []byte{}
			}
		}
		return
	}

	if atEOF {
		err = fmt.Errorf("incomplete line: '%v' => '%v'", string(data), string(as.token))
	}

	return
}

// CommandExpand splits a command file into arguments, expanding
// environment variables
func CommandExpand(reader io.Reader) (out []string, err error) {
	var args []string

	scanner := bufio.NewScanner(reader)
	scanner.Split(ScanArgs)
	for scanner.Scan() {
		args = append(args, os.ExpandEnv(scanner.Text()))
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	out = args

	return
}

// ExpandArgs replaces each '@file' argument with the arguments in file
func ExpandArgs(args []string) (out []string, err error) {
	for _, arg := range args {
		if !strings.HasPrefix(arg, "@") || len(arg) == 1 {
			out = append(out, arg)
			continue
		}

		var file *os.File
		file, err = os.Open(arg[1:])
		if err != nil {
			return
		}

		var expanded []string
		expanded, err = CommandExpand(file)
		file.Close()
		if err != nil {
			err = fmt.Errorf("%s: %w", arg, err)
			return
		}

		out = append(out, expanded...)
	}

	return
}
