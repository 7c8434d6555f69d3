//
// Copyright (c) 2026 BCN3D Technologies
//

package ufp

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"sort"

	"github.com/spf13/pflag"

	"github.com/bcn3d/gcodepp"
)

const (
	ModelPath        = "3D/model.gcode"
	ContentTypesPath = "[Content_Types].xml"
	RelsPath         = "_rels/.rels"

	// PartsKey is the metadata key for the non-G-code archive parts
	PartsKey = "ufp/parts"
)

const defaultContentTypes = `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="gcode" ContentType="text/x-gcode"/>
<Default Extension="png" ContentType="image/png"/>
</Types>
`

const defaultRels = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Target="/3D/model.gcode" Id="rel0" Type="http://schemas.ultimaker.org/package/2018/relationships/gcode"/>
</Relationships>
`

var ErrNoModel = errors.New(ModelPath + " not found in archive")

type UFPFormat struct {
	*pflag.FlagSet
}

func NewUFPFormatter(suffix string) (uf *UFPFormat) {
	flagSet := pflag.NewFlagSet(suffix, pflag.ContinueOnError)

	uf = &UFPFormat{
		FlagSet: flagSet,
	}

	uf.SetInterspersed(false)

	return
}

// Parts returns the archive parts kept with a document
func Parts(doc *gcodepp.Document) (parts map[string]([]byte)) {
	data, ok := doc.GetMetadata(PartsKey)
	if ok {
		parts, _ = data.(map[string]([]byte))
	}

	return
}

func readPart(file *zip.File) (data []byte, err error) {
	rc, err := file.Open()
	if err != nil {
		return
	}
	defer rc.Close()

	data, err = ioutil.ReadAll(rc)

	return
}

func (uf *UFPFormat) Decode(reader gcodepp.Reader, filesize int64) (doc *gcodepp.Document, err error) {
	archive, err := zip.NewReader(reader, filesize)
	if err != nil {
		return
	}

	parts := map[string]([]byte){}

	for _, file := range archive.File {
		if file.Name == ModelPath {
			var rc io.ReadCloser
			rc, err = file.Open()
			if err != nil {
				return
			}
			doc, err = gcodepp.ReadDocument(rc)
			rc.Close()
			if err != nil {
				err = fmt.Errorf("%s: %w", ModelPath, err)
				return
			}
			continue
		}

		if file.FileInfo().IsDir() {
			continue
		}

		parts[file.Name], err = readPart(file)
		if err != nil {
			err = fmt.Errorf("%s: %w", file.Name, err)
			return
		}
	}

	if doc == nil {
		err = ErrNoModel
		return
	}

	if len(parts) > 0 {
		doc.SetMetadata(PartsKey, parts)
	}

	return
}

func (uf *UFPFormat) Encode(writer gcodepp.Writer, doc *gcodepp.Document) (err error) {
	archive := zip.NewWriter(writer)

	parts := map[string]([]byte){
		ContentTypesPath: []byte(defaultContentTypes),
		RelsPath:         []byte(defaultRels),
	}
	for name, data := range Parts(doc) {
		parts[name] = data
	}

	names := []string{}
	for name := range parts {
		names = append(names, name)
	}
	sort.Strings(names)

	// The content types come first, for streaming readers
	var w io.Writer
	w, err = archive.Create(ContentTypesPath)
	if err != nil {
		return
	}
	_, err = w.Write(parts[ContentTypesPath])
	if err != nil {
		return
	}

	w, err = archive.Create(ModelPath)
	if err != nil {
		return
	}
	err = gcodepp.WriteDocument(w, doc)
	if err != nil {
		return
	}

	for _, name := range names {
		if name == ContentTypesPath || name == ModelPath {
			continue
		}
		w, err = archive.Create(name)
		if err != nil {
			return
		}
		_, err = w.Write(parts[name])
		if err != nil {
			return
		}
	}

	err = archive.Close()

	return
}
