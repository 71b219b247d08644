// Package dxf implements a minimal DXF (Drawing Exchange Format) codec.
//
// It understands just enough of the tagged structure to enumerate header
// variables, block definitions and model-space entities, and to write the
// document back out with edited text fields. Geometry is carried through
// opaquely as raw tags; nothing outside text content is interpreted.
package dxf

import (
	"strconv"
	"strings"
)

// Entity kind names as they appear in group code 0 tags.
const (
	KindInsert = "INSERT"
	KindMText  = "MTEXT"
	KindText   = "TEXT"
)

// Group codes used by the codec.
const (
	codeKind      = 0
	codeText      = 1 // primary text value (TEXT, MTEXT final chunk)
	codeName      = 2 // block name (BLOCK, INSERT, SECTION)
	codeTextChunk = 3 // MTEXT continuation chunks preceding code 1
	codeHandle    = 5
	codeVariable  = 9 // header variable name
)

// MTEXT splits its text value into chunks of at most this many characters,
// carried in code 3 tags with the final chunk in code 1.
const mtextChunkSize = 250

// Tag is one group code / value pair from the tag stream.
type Tag struct {
	Code  int
	Value string
}

// Entity is a single drawing entity: its leading code 0 tag plus every tag
// up to the next entity boundary. Tags are retained verbatim so unedited
// entities round-trip unchanged.
type Entity struct {
	Tags []Tag
}

// Kind returns the entity type name (INSERT, MTEXT, TEXT, LINE, ...).
func (e *Entity) Kind() string {
	if len(e.Tags) == 0 {
		return ""
	}
	return e.Tags[0].Value
}

// Handle returns the entity's hexadecimal handle, or "" if it has none.
func (e *Entity) Handle() string {
	return e.firstValue(codeHandle)
}

// BlockName returns the referenced block name for INSERT entities.
func (e *Entity) BlockName() string {
	return e.firstValue(codeName)
}

// IsTextual reports whether the entity carries a text value.
func (e *Entity) IsTextual() bool {
	switch e.Kind() {
	case KindMText, KindText:
		return true
	}
	return false
}

// Text returns the entity's full text content. For MTEXT the code 3
// continuation chunks are concatenated in order ahead of the final code 1
// chunk, matching how CAD software splits long strings.
func (e *Entity) Text() string {
	var b strings.Builder
	for _, t := range e.Tags {
		if t.Code == codeTextChunk {
			b.WriteString(t.Value)
		}
	}
	b.WriteString(e.firstValue(codeText))
	return b.String()
}

// SetText replaces the entity's text content, re-chunking for MTEXT when
// the value exceeds the single-tag limit. Non-text tags are untouched.
func (e *Entity) SetText(s string) {
	// Drop existing continuation chunks; remember where the code 1 tag sits
	// so the rewritten text stays in place within the tag stream.
	tags := make([]Tag, 0, len(e.Tags))
	textAt := -1
	for _, t := range e.Tags {
		if t.Code == codeTextChunk {
			continue
		}
		if t.Code == codeText && textAt < 0 {
			textAt = len(tags)
		}
		tags = append(tags, t)
	}
	if textAt < 0 {
		textAt = len(tags)
		tags = append(tags, Tag{Code: codeText})
	}

	var chunks []Tag
	if e.Kind() == KindMText {
		for len(s) > mtextChunkSize {
			chunks = append(chunks, Tag{Code: codeTextChunk, Value: s[:mtextChunkSize]})
			s = s[mtextChunkSize:]
		}
	}
	chunks = append(chunks, Tag{Code: codeText, Value: s})

	e.Tags = make([]Tag, 0, len(tags)+len(chunks)-1)
	e.Tags = append(e.Tags, tags[:textAt]...)
	e.Tags = append(e.Tags, chunks...)
	e.Tags = append(e.Tags, tags[textAt+1:]...)
}

func (e *Entity) firstValue(code int) string {
	for _, t := range e.Tags {
		if t.Code == code {
			return t.Value
		}
	}
	return ""
}

// Block is a block definition from the BLOCKS section: the BLOCK header
// tags, the owned entities, and the trailing ENDBLK tags.
type Block struct {
	head     []Tag
	tail     []Tag
	Entities []*Entity
}

// Name returns the block definition's name.
func (b *Block) Name() string {
	for _, t := range b.head {
		if t.Code == codeName {
			return t.Value
		}
	}
	return ""
}

// section is one SECTION..ENDSEC region. Sections the codec does not model
// (TABLES, CLASSES, OBJECTS, ...) keep their raw tag stream.
type section struct {
	name     string
	raw      []Tag // content tags for unmodeled sections, header variables
	blocks   []*Block
	entities []*Entity
}

// Document is a parsed DXF file.
type Document struct {
	// Path the document was read from, if any.
	Path string

	sections []*section
}

// Blocks returns all block definitions in file order.
func (d *Document) Blocks() []*Block {
	for _, s := range d.sections {
		if s.name == "BLOCKS" {
			return s.blocks
		}
	}
	return nil
}

// Block returns the block definition with the given name, or nil.
func (d *Document) Block(name string) *Block {
	for _, b := range d.Blocks() {
		if b.Name() == name {
			return b
		}
	}
	return nil
}

// Entities returns the model-space entities in file order.
func (d *Document) Entities() []*Entity {
	for _, s := range d.sections {
		if s.name == "ENTITIES" {
			return s.entities
		}
	}
	return nil
}

// HeaderFloat looks up a numeric header variable ($PSVPSCALE etc.),
// returning fallback when the variable is absent or unparsable.
func (d *Document) HeaderFloat(name string, fallback float64) float64 {
	for _, s := range d.sections {
		if s.name != "HEADER" {
			continue
		}
		for i, t := range s.raw {
			if t.Code != codeVariable || t.Value != name {
				continue
			}
			// The variable's value is carried by the following tag.
			if i+1 < len(s.raw) {
				if f, err := strconv.ParseFloat(strings.TrimSpace(s.raw[i+1].Value), 64); err == nil {
					return f
				}
			}
			return fallback
		}
	}
	return fallback
}

// PrintScale derives a human-readable scale string from the drawing's
// paper-space viewport scale header ($PSVPSCALE): "N:1" when the drawing
// is magnified, "1:N" when reduced, "1:1" otherwise.
func (d *Document) PrintScale() string {
	scale := d.HeaderFloat("$PSVPSCALE", 1.0)
	switch {
	case scale > 1.0:
		return strconv.Itoa(int(scale+0.5)) + ":1"
	case scale > 0 && scale < 1.0:
		return "1:" + strconv.Itoa(int(1/scale+0.5))
	default:
		return "1:1"
	}
}
