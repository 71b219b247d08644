package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// Helper function to reset pflag.CommandLine for testing; each load
// builds its own viper instance, so no viper state needs resetting.
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

func clearEnvVars() {
	os.Unsetenv("ENUMSHEETS_OUTPUT_DIRNAME")
	os.Unsetenv("ENUMSHEETS_TITLE_BLOCK_MARKER")
}

func TestLoadFromFlags_Defaults(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"enumsheets", "a.dxf", "b.dxf"})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.OutputDirname != DefaultOutputDirname {
		t.Errorf("LoadFromFlags() OutputDirname = %v, want %v", cfg.OutputDirname, DefaultOutputDirname)
	}
	if cfg.Marker != DefaultMarker {
		t.Errorf("LoadFromFlags() Marker = %v, want %v", cfg.Marker, DefaultMarker)
	}
	if len(cfg.Files) != 2 || cfg.Files[0] != "a.dxf" || cfg.Files[1] != "b.dxf" {
		t.Errorf("LoadFromFlags() Files = %v, want [a.dxf b.dxf]", cfg.Files)
	}
}

func TestLoadFromFlags_ConfigFile(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	ini := `[output]
dirname = numbered

[title_block]
marker = my.studio
update_scale = false
scale_value = 1:100
address_value = г. Москва

[excel_file]
enable = true
filename = toc.xlsx
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.ini")
	if err := os.WriteFile(path, []byte(ini), 0o600); err != nil {
		t.Fatal(err)
	}

	setArgs([]string{"enumsheets", "--config", path, "plan.dxf"})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.OutputDirname != "numbered" {
		t.Errorf("OutputDirname = %v, want numbered", cfg.OutputDirname)
	}
	if cfg.Marker != "my.studio" {
		t.Errorf("Marker = %v, want my.studio", cfg.Marker)
	}
	if cfg.Scale.Update {
		t.Error("update_scale should be false")
	}
	if cfg.Scale.Value != "1:100" {
		t.Errorf("scale_value = %v, want 1:100", cfg.Scale.Value)
	}
	if cfg.Address.Value != "г. Москва" {
		t.Errorf("address_value = %v, want 'г. Москва'", cfg.Address.Value)
	}
	if cfg.Excel.Filename != "toc.xlsx" {
		t.Errorf("excel filename = %v, want toc.xlsx", cfg.Excel.Filename)
	}
	// Fields not mentioned in the file keep their defaults.
	if !cfg.Date.Update {
		t.Error("update_date should keep its default of true")
	}
}

func TestLoadFromFlags_MultilineSpecsNames(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	// Continuation lines are indented, the way configparser writes them.
	ini := "[excel_file]\n" +
		"specs_names = Ведомость полов\n" +
		"\tВедомость дверей\n" +
		"\tВедомость окон\n"
	dir := t.TempDir()
	path := filepath.Join(dir, "config.ini")
	if err := os.WriteFile(path, []byte(ini), 0o600); err != nil {
		t.Fatal(err)
	}

	setArgs([]string{"enumsheets", "--config", path, "plan.dxf"})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	want := []string{"Ведомость полов", "Ведомость дверей", "Ведомость окон"}
	if len(cfg.Excel.SpecsNames) != len(want) {
		t.Fatalf("SpecsNames = %v, want %v", cfg.Excel.SpecsNames, want)
	}
	for i, name := range want {
		if cfg.Excel.SpecsNames[i] != name {
			t.Errorf("SpecsNames[%d] = %v, want %v", i, cfg.Excel.SpecsNames[i], name)
		}
	}
}

func TestLoadFromFlags_MissingConfigFile(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"enumsheets", "--config", "/nonexistent/config.ini", "a.dxf"})
	resetFlags()
	clearEnvVars()

	if _, err := LoadFromFlags(); err == nil {
		t.Error("LoadFromFlags() expected error for missing config file")
	}
}

func TestLoadFromFlags_DirFlagOverridesFile(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.ini")
	if err := os.WriteFile(path, []byte("[output]\ndirname = from_file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	setArgs([]string{"enumsheets", "--config", path, "--dir", "from_flag", "a.dxf"})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}
	if cfg.OutputDirname != "from_flag" {
		t.Errorf("OutputDirname = %v, want from_flag (flag overrides file)", cfg.OutputDirname)
	}
}
