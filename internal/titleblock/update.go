package titleblock

import (
	"strconv"
	"strings"
	"time"
)

// LineBreak is the MTEXT escape sequence separating stacked lines.
const LineBreak = `\P`

// Values carries the computed field values for one drawing.
type Values struct {
	SheetNumber int
	SheetTotal  int
	// Date in ISO form; empty means the current date.
	Date string
	// Scale string; empty means derive from the drawing's print scale.
	Scale string
	// Address text, possibly containing LineBreak escapes.
	Address string
	// Title override; rarely used, the title is normally extracted.
	Title string
}

// Apply rewrites the resolved fields of a located title block in place.
// Per role the update happens only when enabled in the registry; enabled
// roles that stayed unresolved are skipped and returned so the caller can
// warn about them. Unrelated entities are never touched.
func (inst *Instance) Apply(values Values, reg *Registry) []Role {
	inst.reconcileNumbers()

	today := func() string { return time.Now().Format("2006-01-02") }

	var skipped []Role
	update := func(role Role, value string) {
		if !reg.Pattern(role).UpdateEnabled {
			return
		}
		if !inst.setText(role, value) {
			skipped = append(skipped, role)
		}
	}

	update(RoleNumber, strconv.Itoa(values.SheetNumber))
	update(RoleSheets, strconv.Itoa(values.SheetTotal))

	date := values.Date
	if date == "" {
		date = today()
	}
	update(RoleDate, date)

	scale := values.Scale
	if scale == "" {
		scale = inst.doc.PrintScale()
	}
	update(RoleScale, scale)

	// Address and title are only rewritten when a value was configured;
	// unlike the computed fields there is no sensible default.
	if values.Address != "" {
		update(RoleAddress, strings.Join(SplitAddress(values.Address), LineBreak))
	}
	if values.Title != "" {
		update(RoleTitle, values.Title)
	}
	return skipped
}

// reconcileNumbers cross-checks the values already present in the number
// and sheets fields. A sheet number larger than the claimed total means
// the positional assignment picked the two fields the wrong way around
// (the drawing was edited against template order), so the indexes are
// swapped before writing.
func (inst *Instance) reconcileNumbers() {
	numIdx, okNum := inst.Resolved[RoleNumber]
	shIdx, okSh := inst.Resolved[RoleSheets]
	if !okNum || !okSh {
		return
	}
	oldNum, errNum := strconv.Atoi(inst.Candidates[numIdx].Text)
	oldSheets, errSh := strconv.Atoi(inst.Candidates[shIdx].Text)
	if errNum != nil || errSh != nil {
		return
	}
	if oldNum > oldSheets {
		inst.Resolved[RoleNumber], inst.Resolved[RoleSheets] = shIdx, numIdx
	}
}

// SplitAddress splits an address value into its stacked display lines.
// Both the MTEXT escape sequence and raw newlines act as separators;
// blank segments are dropped and each line is trimmed.
func SplitAddress(value string) []string {
	normalized := strings.NewReplacer("\r\n", LineBreak, "\n", LineBreak).Replace(value)
	var lines []string
	for _, seg := range strings.Split(normalized, LineBreak) {
		if seg = strings.TrimSpace(seg); seg != "" {
			lines = append(lines, seg)
		}
	}
	return lines
}
