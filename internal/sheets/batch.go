package sheets

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/artidea/dxf-sheet-enumerator/internal/config"
	"github.com/artidea/dxf-sheet-enumerator/internal/dxf"
	"github.com/artidea/dxf-sheet-enumerator/internal/titleblock"
)

// SheetRecord is one row of the final contents table.
type SheetRecord struct {
	SourceFile string
	// SheetIndex is 1-based, assigned in processing order. Zero for
	// specification rows.
	SheetIndex int
	Title      string
	// IsSpecification marks the static rows appended after all drawing
	// titles; they do not contribute to the sheet count.
	IsSpecification bool
}

// Result is the outcome of one batch run.
type Result struct {
	OutputDir   string
	Records     []SheetRecord
	Diagnostics []Diagnostic
	// Processed counts drawings that received a sheet number.
	Processed int
	// Skipped counts inputs without a locatable title block.
	Skipped int
}

// sheet is one recognized drawing awaiting its number.
type sheet struct {
	path string
	doc  *dxf.Document
	inst *titleblock.Instance
}

// Run processes the input files strictly in the order given. Input order
// is numbering order: the i-th drawing with a locatable title block gets
// sheet index i, and the total written to every drawing is the count of
// such drawings. Files without a title block are copied into the output
// directory untouched and excluded from numbering. Per-file failures are
// recorded as diagnostics and never abort the batch; only configuration
// and output-directory failures are fatal. When no input carries a title
// block the run stops before creating the output directory.
func Run(files []string, cfg *config.Config) (*Result, error) {
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	var diags diagnostics

	// First pass: recognize which inputs are our drawing sheets. The
	// total sheet count is known only after this pass completes.
	var matched []sheet
	var passthrough []string
	for _, path := range files {
		log.Printf("Looking for title block in %s", path)
		doc, err := dxf.ReadFile(path)
		if err != nil {
			diags.add(CodeReadFailure, path, "cannot read drawing: %v", err)
			continue
		}
		inst, found := titleblock.Locate(doc, cfg.Marker)
		if inst == nil {
			diags.add(CodeTitleBlockNotFound, path, "no title block, copying file as is")
			passthrough = append(passthrough, path)
			continue
		}
		if found > 1 {
			diags.add(CodeAmbiguousTitleBlock, path,
				"%d inserts match the marker, processing the first", found)
		}
		matched = append(matched, sheet{path: path, doc: doc, inst: inst})
	}

	// Nothing to number means nothing to output: no directory, no
	// passthrough copies, no contents table. The caller reports it.
	if len(matched) == 0 {
		return &Result{Diagnostics: diags}, nil
	}

	outputDir, err := MakeOutputDir(cfg.OutputDirname)
	if err != nil {
		return nil, err
	}

	result := &Result{OutputDir: outputDir}

	// Second pass: resolve fields, write values, save copies.
	total := len(matched)
	for i, s := range matched {
		outPath := filepath.Join(outputDir, filepath.Base(s.path))
		log.Printf("Processing %s, saving to %s", s.path, outPath)

		unresolved := s.inst.ResolveFields(reg)
		values := titleblock.Values{
			SheetNumber: i + 1,
			SheetTotal:  total,
			Date:        cfg.Date.Value,
			Scale:       cfg.Scale.Value,
			Address:     cfg.Address.Value,
			Title:       cfg.Title.Value,
		}
		// One diagnostic per role: skipped writes take precedence over
		// the plain recognition failure.
		skipped := make(map[titleblock.Role]bool)
		for _, role := range s.inst.Apply(values, reg) {
			skipped[role] = true
			diags.add(CodeFieldUnresolved, s.path, "field %q left unmodified", role)
		}
		for _, role := range unresolved {
			if !skipped[role] {
				diags.add(CodeFieldUnresolved, s.path, "field %q not recognized", role)
			}
		}
		title := s.inst.Text(titleblock.RoleTitle)

		if err := s.doc.SaveAs(outPath); err != nil {
			diags.add(CodeWriteFailure, s.path, "cannot save copy: %v", err)
			continue
		}
		result.Records = append(result.Records, SheetRecord{
			SourceFile: s.path,
			SheetIndex: i + 1,
			Title:      title,
		})
		result.Processed++
	}

	for _, path := range passthrough {
		if err := copyFile(path, filepath.Join(outputDir, filepath.Base(path))); err != nil {
			diags.add(CodeWriteFailure, path, "cannot copy file: %v", err)
			continue
		}
		result.Skipped++
	}

	for _, name := range cfg.Excel.SpecsNames {
		result.Records = append(result.Records, SheetRecord{
			Title:           name,
			IsSpecification: true,
		})
	}

	result.Diagnostics = diags
	return result, nil
}

// buildRegistry compiles the six field patterns out of the configuration.
func buildRegistry(cfg *config.Config) (*titleblock.Registry, error) {
	toSpec := func(f config.Field) titleblock.FieldSpec {
		return titleblock.FieldSpec{Pattern: f.Pattern, Update: f.Update, Value: f.Value}
	}
	return titleblock.NewRegistry(map[titleblock.Role]titleblock.FieldSpec{
		titleblock.RoleNumber:  toSpec(cfg.Number),
		titleblock.RoleSheets:  toSpec(cfg.Sheets),
		titleblock.RoleTitle:   toSpec(cfg.Title),
		titleblock.RoleAddress: toSpec(cfg.Address),
		titleblock.RoleScale:   toSpec(cfg.Scale),
		titleblock.RoleDate:    toSpec(cfg.Date),
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
