// Command enumsheets counts the DXF drawing files given on the command
// line, writes sheet number and total sheet count into every drawing's
// title block, optionally rewrites the date, scale and address fields,
// and extracts the sheet titles into an Excel contents table.
//
// A drawing is counted only when it contains an INSERT whose block carries
// the configured marker text. Everything else is copied into the output
// directory untouched.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/artidea/dxf-sheet-enumerator/internal/config"
	"github.com/artidea/dxf-sheet-enumerator/internal/sheets"
	"github.com/artidea/dxf-sheet-enumerator/internal/xlsx"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	log.SetFlags(0)

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	files := cfg.DXFFiles()
	if len(files) == 0 {
		log.Println("No input files to process.")
		pflagUsage()
		os.Exit(1)
	}

	result, err := sheets.Run(files, cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if result.Processed == 0 {
		reportDiagnostics(result.Diagnostics)
		log.Println("No sheets to process.")
		os.Exit(1)
	}

	if cfg.Excel.Enable {
		path := filepath.Join(result.OutputDir, cfg.Excel.Filename)
		log.Printf("Saving contents to %s", path)
		err := xlsx.WriteContents(path, result.Records, xlsx.Layout{
			WorksheetTitle: cfg.Excel.WorksheetTitle,
			DrawingsTitle:  cfg.Excel.DrawingsTitle,
			SpecsTitle:     cfg.Excel.SpecsTitle,
		})
		if err != nil {
			log.Printf("Warning: cannot write contents table: %v", err)
		}
	}

	reportDiagnostics(result.Diagnostics)
	log.Printf("Done: %d sheet(s) numbered, %d file(s) copied as is, output in %s",
		result.Processed, result.Skipped, result.OutputDir)
}

func reportDiagnostics(diags []sheets.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	warnings, errors := 0, 0
	for _, d := range diags {
		if d.Code.GetSeverity() == sheets.SeverityWarning {
			warnings++
		} else {
			errors++
		}
	}
	log.Printf("%d warning(s), %d error(s) reported:", warnings, errors)
	for _, d := range diags {
		log.Printf("  %s", d)
	}
}

func pflagUsage() {
	fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", os.Args[0])
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("DXF Sheet Enumerator\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
