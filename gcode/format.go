//
// Copyright (c) 2026 BCN3D Technologies
//

package gcode

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bcn3d/gcodepp"
)

type GcodeFormat struct {
	*pflag.FlagSet

	CRLF bool // Write DOS line endings
}

func NewGcodeFormatter(suffix string) (gf *GcodeFormat) {
	flagSet := pflag.NewFlagSet(suffix, pflag.ContinueOnError)

	gf = &GcodeFormat{
		FlagSet: flagSet,
	}

	gf.BoolVar(&gf.CRLF, "crlf", false, "Write CR/LF line endings")

	gf.SetInterspersed(false)

	return
}

// Decode reads the whole text
func (gf *GcodeFormat) Decode(reader gcodepp.Reader, filesize int64) (doc *gcodepp.Document, err error) {
	doc, err = gcodepp.ReadDocument(io.NewSectionReader(reader, 0, filesize))
	return
}

// Encode writes the document as text
func (gf *GcodeFormat) Encode(writer gcodepp.Writer, doc *gcodepp.Document) (err error) {
	if !gf.CRLF {
		err = gcodepp.WriteDocument(writer, doc)
		return
	}

	buff := bufio.NewWriter(writer)
	for _, layer := range doc.Layers {
		for _, line := range layer.Lines {
			_, err = buff.WriteString(strings.TrimSuffix(line, "\r") + "\r\n")
			if err != nil {
				return
			}
		}
	}

	err = buff.Flush()

	return
}
