//
// Copyright (c) 2026 BCN3D Technologies
//

package gcodepp

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Reader needs io.ReaderAt for archive/zip
type Reader interface {
	io.Reader
	io.ReaderAt
}

// Writer
type Writer interface {
	io.Writer
}

// Document file format
type Formatter interface {
	Parse(args []string) (err error)
	Parsed() bool
	Args() (args []string)
	NArg() int
	PrintDefaults()

	Decode(reader Reader, size int64) (doc *Document, err error)
	Encode(writer Writer, doc *Document) (err error)
}

// Document to file format
type NewFormatter func(suffix string) (formatter Formatter)

// ErrUnknownFormat is returned for filenames with no registered suffix
type ErrUnknownFormat string

func (e ErrUnknownFormat) Error() string {
	return fmt.Sprintf("%s: File extension unknown", string(e))
}

// FormatterUsage lists the options of every registered format
func (reg *Registry) FormatterUsage(output io.Writer) {
	list := reg.Suffixes()

	for _, suffix := range list {
		newFormatter := reg.formatters[suffix]
		fmt.Fprintln(output)
		fmt.Fprintf(output, "Options for '%s':\n", suffix)
		fmt.Fprintln(output)
		newFormatter(suffix).PrintDefaults()
	}
}

// Suffixes lists the registered file suffixes
func (reg *Registry) Suffixes() (list []string) {
	for suffix := range reg.formatters {
		list = append(list, suffix)
	}
	sort.Strings(list)

	return
}

type Format struct {
	Formatter
	Suffix   string
	Filename string
}

// NewFormat selects a formatter by the filename suffix, and parses
// its arguments. The longest matching suffix wins.
func (reg *Registry) NewFormat(filename string, args []string) (format *Format, err error) {
	var formatter Formatter
	var suffix string

	for candidate, newFormatter := range reg.formatters {
		if !strings.HasSuffix(filename, candidate) || len(candidate) <= len(suffix) {
			continue
		}
		suffix = candidate
		formatter = newFormatter(candidate)
	}

	if formatter == nil {
		err = ErrUnknownFormat(filename)
		return
	}

	err = formatter.Parse(args)
	if err != nil {
		return
	}

	format = &Format{
		Formatter: formatter,
		Suffix:    suffix,
		Filename:  filename,
	}
	return
}

// Document reads the document from the file
func (format *Format) Document() (doc *Document, err error) {
	reader, err := os.Open(format.Filename)
	if err != nil {
		return
	}
	defer func() { reader.Close() }()

	filesize, err := reader.Seek(0, io.SeekEnd)
	if err != nil {
		return
	}

	_, err = reader.Seek(0, io.SeekStart)
	if err != nil {
		return
	}

	doc, err = format.Decode(reader, filesize)
	if err != nil {
		err = fmt.Errorf("%s: %w", format.Filename, err)
		return
	}

	return
}

// SetDocument writes a document to the file
func (format *Format) SetDocument(doc *Document) (err error) {
	writer, err := os.Create(format.Filename)
	if err != nil {
		return
	}

	err = format.Encode(writer, doc)
	if err != nil {
		writer.Close()
		return
	}

	err = writer.Close()

	return
}
