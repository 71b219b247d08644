package dxf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// tagReader tokenizes the DXF tag stream: alternating group code and value
// lines. Code lines may be space-padded; value lines keep leading spaces
// since text content can legitimately start with whitespace.
type tagReader struct {
	scanner *bufio.Scanner
	line    int
	pushed  *Tag
}

func newTagReader(r io.Reader) *tagReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &tagReader{scanner: sc}
}

// next returns the next tag, io.EOF at end of stream, or a parse error for
// a malformed group code line.
func (tr *tagReader) next() (Tag, error) {
	if tr.pushed != nil {
		t := *tr.pushed
		tr.pushed = nil
		return t, nil
	}
	if !tr.scanner.Scan() {
		if err := tr.scanner.Err(); err != nil {
			return Tag{}, err
		}
		return Tag{}, io.EOF
	}
	tr.line++
	codeLine := strings.TrimSpace(tr.scanner.Text())
	code, err := strconv.Atoi(codeLine)
	if err != nil {
		return Tag{}, fmt.Errorf("line %d: invalid group code %q", tr.line, codeLine)
	}

	if !tr.scanner.Scan() {
		if err := tr.scanner.Err(); err != nil {
			return Tag{}, err
		}
		return Tag{}, fmt.Errorf("line %d: group code %d without value", tr.line, code)
	}
	tr.line++
	return Tag{Code: code, Value: strings.TrimRight(tr.scanner.Text(), "\r")}, nil
}

// Read parses a DXF document from r. Section structure is validated only
// as far as the codec needs: HEADER, BLOCKS and ENTITIES are modeled,
// everything else is carried through as raw tags.
func Read(r io.Reader) (*Document, error) {
	tr := newTagReader(r)
	doc := &Document{}

	for {
		tag, err := tr.next()
		if err == io.EOF {
			return doc, nil
		}
		if err != nil {
			return nil, err
		}
		switch {
		case tag.Code == codeKind && tag.Value == "EOF":
			return doc, nil
		case tag.Code == codeKind && tag.Value == "SECTION":
			sec, err := readSection(tr)
			if err != nil {
				return nil, err
			}
			doc.sections = append(doc.sections, sec)
		default:
			return nil, fmt.Errorf("line %d: unexpected tag %d/%q outside section", tr.line, tag.Code, tag.Value)
		}
	}
}

// ReadFile parses the DXF file at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

func readSection(tr *tagReader) (*section, error) {
	name, err := tr.next()
	if err != nil {
		return nil, err
	}
	if name.Code != codeName {
		return nil, fmt.Errorf("section without name tag, got %d/%q", name.Code, name.Value)
	}
	sec := &section{name: name.Value}

	switch sec.name {
	case "BLOCKS":
		return sec, readBlocks(tr, sec)
	case "ENTITIES":
		ents, err := readEntities(tr, "ENDSEC")
		sec.entities = ents
		return sec, err
	default:
		// HEADER and unmodeled sections: raw tags until ENDSEC.
		for {
			tag, err := tr.next()
			if err != nil {
				return nil, fmt.Errorf("section %s: %w", sec.name, err)
			}
			if tag.Code == codeKind && tag.Value == "ENDSEC" {
				return sec, nil
			}
			sec.raw = append(sec.raw, tag)
		}
	}
}

func readBlocks(tr *tagReader, sec *section) error {
	for {
		tag, err := tr.next()
		if err != nil {
			return fmt.Errorf("BLOCKS section: %w", err)
		}
		switch {
		case tag.Code == codeKind && tag.Value == "ENDSEC":
			return nil
		case tag.Code == codeKind && tag.Value == "BLOCK":
			b, err := readBlock(tr)
			if err != nil {
				return err
			}
			sec.blocks = append(sec.blocks, b)
		default:
			return fmt.Errorf("BLOCKS section: unexpected tag %d/%q", tag.Code, tag.Value)
		}
	}
}

// readBlock consumes one BLOCK..ENDBLK definition. The BLOCK header runs
// until the first entity boundary; ENDBLK tags run until the next code 0.
func readBlock(tr *tagReader) (*Block, error) {
	b := &Block{head: []Tag{{Code: codeKind, Value: "BLOCK"}}}

	var pending *Tag
	for {
		tag, err := tr.next()
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", b.Name(), err)
		}
		if tag.Code == codeKind {
			pending = &tag
			break
		}
		b.head = append(b.head, tag)
	}

	for pending.Value != "ENDBLK" {
		ent := &Entity{Tags: []Tag{*pending}}
		pending = nil
		for {
			tag, err := tr.next()
			if err != nil {
				return nil, fmt.Errorf("block %s: %w", b.Name(), err)
			}
			if tag.Code == codeKind {
				pending = &tag
				break
			}
			ent.Tags = append(ent.Tags, tag)
		}
		b.Entities = append(b.Entities, ent)
	}

	b.tail = []Tag{{Code: codeKind, Value: "ENDBLK"}}
	for {
		tag, err := tr.next()
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", b.Name(), err)
		}
		if tag.Code == codeKind {
			if tag.Value != "ENDSEC" && tag.Value != "BLOCK" {
				return nil, fmt.Errorf("block %s: unexpected %q after ENDBLK", b.Name(), tag.Value)
			}
			// Not ours to consume; hand back via a one-tag rewind.
			return b, tr.pushBack(tag)
		}
		b.tail = append(b.tail, tag)
	}
}

// readEntities consumes entities until the given terminator value appears
// in a code 0 tag.
func readEntities(tr *tagReader, terminator string) ([]*Entity, error) {
	var ents []*Entity
	var cur *Entity
	for {
		tag, err := tr.next()
		if err != nil {
			return nil, err
		}
		if tag.Code == codeKind {
			if tag.Value == terminator {
				return ents, nil
			}
			cur = &Entity{Tags: []Tag{tag}}
			ents = append(ents, cur)
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("stray tag %d/%q before first entity", tag.Code, tag.Value)
		}
		cur.Tags = append(cur.Tags, tag)
	}
}

// pushBack hands a single already-read tag back to the reader. Only one
// tag of lookahead is ever needed (the BLOCK/ENDSEC boundary after ENDBLK).
func (tr *tagReader) pushBack(t Tag) error {
	if tr.pushed != nil {
		return fmt.Errorf("tag reader: double push-back")
	}
	tr.pushed = &t
	return nil
}
