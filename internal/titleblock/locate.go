package titleblock

import (
	"strings"

	"github.com/artidea/dxf-sheet-enumerator/internal/dxf"
)

// Candidate is a raw text fragment found inside the title block, not yet
// assigned to a semantic role. Index is the fragment's position within the
// block definition and serves as the positional tie-break key.
type Candidate struct {
	Text   string
	Handle string
	Index  int
}

// Instance is the located title block of one drawing: the matched INSERT,
// the candidate fragments of its block definition, and, after Resolve, the
// role assignment.
type Instance struct {
	InsertHandle string
	BlockName    string
	Candidates   []Candidate

	// Resolved maps each assigned role to a candidate index; Unresolved
	// lists the roles no candidate could be committed to.
	Resolved   map[Role]int
	Unresolved []Role

	doc      *dxf.Document
	entities []*dxf.Entity
}

// Locate scans the drawing's model-space INSERT entities for one whose
// referenced block contains marker as a case-sensitive substring in any of
// its text entities. It returns the first matching instance (nil when none
// match) and the total number of matching inserts; more than one is an
// ambiguous input the caller should report.
//
// Candidates are the referenced block's text entities in definition order,
// the marker fragment included — field patterns simply never match it.
func Locate(doc *dxf.Document, marker string) (*Instance, int) {
	var first *Instance
	matched := 0
	for _, ent := range doc.Entities() {
		if ent.Kind() != dxf.KindInsert {
			continue
		}
		block := doc.Block(ent.BlockName())
		if block == nil || !blockHasMarker(block, marker) {
			continue
		}
		matched++
		if first != nil {
			continue
		}
		first = &Instance{
			InsertHandle: ent.Handle(),
			BlockName:    block.Name(),
			doc:          doc,
		}
		for _, sub := range block.Entities {
			if !sub.IsTextual() {
				continue
			}
			first.Candidates = append(first.Candidates, Candidate{
				Text:   sub.Text(),
				Handle: sub.Handle(),
				Index:  len(first.Candidates),
			})
			first.entities = append(first.entities, sub)
		}
	}
	return first, matched
}

func blockHasMarker(b *dxf.Block, marker string) bool {
	for _, e := range b.Entities {
		if e.IsTextual() && strings.Contains(e.Text(), marker) {
			return true
		}
	}
	return false
}

// Text returns the current text of the candidate resolved to role, or ""
// when the role is unresolved.
func (inst *Instance) Text(role Role) string {
	idx, ok := inst.Resolved[role]
	if !ok {
		return ""
	}
	return inst.entities[idx].Text()
}

// setText rewrites the entity behind the candidate resolved to role.
func (inst *Instance) setText(role Role, value string) bool {
	idx, ok := inst.Resolved[role]
	if !ok {
		return false
	}
	inst.entities[idx].SetText(value)
	inst.Candidates[idx].Text = value
	return true
}
