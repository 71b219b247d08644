// Package config loads the sheet enumerator configuration from an INI
// file, command line flags and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// Default values; every one of them can be overridden in the INI file.
const (
	DefaultOutputDirname = "enumerated_sheets"

	// Marker is the substring that identifies the title block insert
	// among all block references in a drawing.
	DefaultMarker = "artidea.gallery"

	// The number field holds either the placeholder "X" or a number.
	DefaultNumberPattern = `^(X|\d{1,3})$`
	// The sheets field holds either the placeholder "XX" or a number.
	DefaultSheetsPattern = `^(XX|\d{1,3})$`
	// The title field holds the placeholder or a Russian drawing title.
	// Adjust this in the configuration file for your own templates.
	DefaultTitlePattern = `((^TitleField$)|(^(План|Разв)))`
	// The address field holds the placeholder or a line starting with
	// the Russian "г." city prefix. Adjust for your own templates.
	DefaultAddressPattern = `((^AddressField$)|(^г))`
	// The date field holds "0000-00-00" or an ISO date.
	DefaultDatePattern = `^(\d{4}-\d{2}-\d{2})$`
	// The scale field holds a ratio like "1:50".
	DefaultScalePattern = `^(\d+:\d+)$`

	DefaultExcelFilename       = "contents.xlsx"
	DefaultExcelWorksheetTitle = "Перечень листов"
	DefaultExcelDrawingsTitle  = "Чертежи"
	DefaultExcelSpecsTitle     = "Ведомости"

	// MTEXT escape for a line break inside address values.
	mtextLineBreak = `\P`
)

// Field holds the per-field configuration: the recognition pattern, the
// update toggle, and an optional static value override.
type Field struct {
	Pattern string
	Update  bool
	Value   string
}

// Excel holds the contents-table output configuration.
type Excel struct {
	Enable         bool
	Filename       string
	WorksheetTitle string
	DrawingsTitle  string
	SpecsTitle     string
	// SpecsNames are synthetic specification titles appended to the
	// contents table after all drawing titles.
	SpecsNames []string
}

// Config holds all configuration for the sheet enumerator.
type Config struct {
	// OutputDirname is the base name of the output directory.
	OutputDirname string
	// Marker identifies the title block insert.
	Marker string

	Number  Field
	Sheets  Field
	Title   Field
	Address Field
	Scale   Field
	Date    Field

	Excel Excel

	// Files are the DXF files named on the command line, in order.
	Files []string
}

// DefaultConfig returns a configuration with the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputDirname: DefaultOutputDirname,
		Marker:        DefaultMarker,
		Number:        Field{Pattern: DefaultNumberPattern, Update: true},
		Sheets:        Field{Pattern: DefaultSheetsPattern, Update: true},
		Title:         Field{Pattern: DefaultTitlePattern, Update: false},
		Address:       Field{Pattern: DefaultAddressPattern, Update: true},
		Scale:         Field{Pattern: DefaultScalePattern, Update: true},
		Date:          Field{Pattern: DefaultDatePattern, Update: true},
		Excel: Excel{
			Enable:         true,
			Filename:       DefaultExcelFilename,
			WorksheetTitle: DefaultExcelWorksheetTitle,
			DrawingsTitle:  DefaultExcelDrawingsTitle,
			SpecsTitle:     DefaultExcelSpecsTitle,
		},
	}
}

// LoadFromFlags parses command line flags, reads the optional INI file and
// returns the effective configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	v := newViper()
	setupViperEnvironment(v, cfg)
	configFile := defineCommandLineFlags(cfg)
	bindFlagsToViper(v)
	setupUsageMessage()

	pflag.Parse()

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		v.SetConfigType("ini")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read configuration file: %w", err)
		}
	}

	populateConfigFromViper(v, cfg)
	cfg.Files = pflag.Args()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newViper builds the viper instance for one load. Multi-line values
// must be allowed at parse time: specs_names spans several indented
// continuation lines, and the default INI options reject those.
func newViper() *viper.Viper {
	return viper.NewWithOptions(viper.IniLoadOptions(ini.LoadOptions{
		AllowPythonMultilineValues: true,
	}))
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix("ENUMSHEETS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.dirname", cfg.OutputDirname)
	v.SetDefault("title_block.marker", cfg.Marker)

	fields := map[string]Field{
		"number":  cfg.Number,
		"sheets":  cfg.Sheets,
		"title":   cfg.Title,
		"address": cfg.Address,
		"scale":   cfg.Scale,
		"date":    cfg.Date,
	}
	for name, f := range fields {
		v.SetDefault("title_block."+name+"_pattern", f.Pattern)
		v.SetDefault("title_block.update_"+name, f.Update)
	}
	v.SetDefault("title_block.date_value", "")
	v.SetDefault("title_block.scale_value", "")
	v.SetDefault("title_block.address_value", "")

	v.SetDefault("excel_file.enable", cfg.Excel.Enable)
	v.SetDefault("excel_file.filename", cfg.Excel.Filename)
	v.SetDefault("excel_file.worksheet_title", cfg.Excel.WorksheetTitle)
	v.SetDefault("excel_file.drawings_title", cfg.Excel.DrawingsTitle)
	v.SetDefault("excel_file.specs_title", cfg.Excel.SpecsTitle)
	v.SetDefault("excel_file.specs_names", "")
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) *string {
	configFile := pflag.StringP("config", "c", "", "Configuration INI file")
	pflag.String("dir", cfg.OutputDirname, "Output directory base name")
	pflag.String("marker", cfg.Marker, "Title block marker substring")
	return configFile
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper(v *viper.Viper) {
	_ = v.BindPFlag("output.dirname", pflag.Lookup("dir"))
	_ = v.BindPFlag("title_block.marker", pflag.Lookup("marker"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] file.dxf...\n", os.Args[0])
		fmt.Fprintf(os.Stderr,
			"\nNumbers drawing sheets, rewrites title block fields and builds a contents table.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.OutputDirname = v.GetString("output.dirname")
	cfg.Marker = v.GetString("title_block.marker")

	field := func(name string, value string) Field {
		return Field{
			Pattern: v.GetString("title_block." + name + "_pattern"),
			Update:  v.GetBool("title_block.update_" + name),
			Value:   value,
		}
	}
	cfg.Number = field("number", "")
	cfg.Sheets = field("sheets", "")
	cfg.Title = field("title", "")
	cfg.Date = field("date", v.GetString("title_block.date_value"))
	cfg.Scale = field("scale", v.GetString("title_block.scale_value"))
	// Raw newlines in a multi-line address become MTEXT line breaks.
	address := strings.TrimSpace(v.GetString("title_block.address_value"))
	cfg.Address = field("address", strings.ReplaceAll(address, "\n", mtextLineBreak))

	cfg.Excel.Enable = v.GetBool("excel_file.enable")
	cfg.Excel.Filename = v.GetString("excel_file.filename")
	cfg.Excel.WorksheetTitle = v.GetString("excel_file.worksheet_title")
	cfg.Excel.DrawingsTitle = v.GetString("excel_file.drawings_title")
	cfg.Excel.SpecsTitle = v.GetString("excel_file.specs_title")
	cfg.Excel.SpecsNames = splitSpecsNames(v.GetString("excel_file.specs_names"))
}

// splitSpecsNames splits the multi-line specs_names option into one title
// per non-blank line.
func splitSpecsNames(raw string) []string {
	var names []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDirname) == "" {
		return errors.New("output dirname cannot be empty")
	}
	if c.Marker == "" {
		return errors.New("title block marker cannot be empty")
	}

	patterns := map[string]string{
		"number_pattern":  c.Number.Pattern,
		"sheets_pattern":  c.Sheets.Pattern,
		"title_pattern":   c.Title.Pattern,
		"address_pattern": c.Address.Pattern,
		"scale_pattern":   c.Scale.Pattern,
		"date_pattern":    c.Date.Pattern,
	}
	for name, pattern := range patterns {
		if pattern == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if c.Excel.Enable && strings.TrimSpace(c.Excel.Filename) == "" {
		return errors.New("excel filename cannot be empty when excel output is enabled")
	}
	return nil
}

// DXFFiles returns the input files that carry the .dxf extension, in the
// order given on the command line.
func (c *Config) DXFFiles() []string {
	var files []string
	for _, f := range c.Files {
		if strings.EqualFold(filepath.Ext(f), ".dxf") {
			files = append(files, f)
		}
	}
	return files
}
