package dxf

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Write serializes the document back into DXF tag form. Unedited tags are
// emitted exactly as read, so a read/write cycle is lossless apart from
// group code padding, which CAD software ignores.
func (d *Document) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, sec := range d.sections {
		writeTag(bw, Tag{Code: codeKind, Value: "SECTION"})
		writeTag(bw, Tag{Code: codeName, Value: sec.name})
		for _, t := range sec.raw {
			writeTag(bw, t)
		}
		for _, b := range sec.blocks {
			writeTags(bw, b.head)
			for _, e := range b.Entities {
				writeTags(bw, e.Tags)
			}
			writeTags(bw, b.tail)
		}
		for _, e := range sec.entities {
			writeTags(bw, e.Tags)
		}
		writeTag(bw, Tag{Code: codeKind, Value: "ENDSEC"})
	}
	writeTag(bw, Tag{Code: codeKind, Value: "EOF"})
	return bw.Flush()
}

// SaveAs writes the document to a new file at path. The source file the
// document was read from is never rewritten.
func (d *Document) SaveAs(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func writeTag(w *bufio.Writer, t Tag) {
	fmt.Fprintf(w, "%d\r\n%s\r\n", t.Code, t.Value)
}

func writeTags(w *bufio.Writer, tags []Tag) {
	for _, t := range tags {
		writeTag(w, t)
	}
}
