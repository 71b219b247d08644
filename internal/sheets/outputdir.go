package sheets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	outputDirPerm  = 0o750
	maxDirSuffixes = 999
)

// ErrOutputDirExhausted means every numeric suffix variant of the output
// directory name already exists.
var ErrOutputDirExhausted = errors.New("too many output directories with the same name")

// MakeOutputDir creates the output directory. When a directory (or file)
// with the configured name already exists it is never reused or merged
// into; a ".NNN" suffixed variant is created instead, counting up from
// ".001" until a free name is found.
func MakeOutputDir(base string) (string, error) {
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	name := base
	for i := 0; ; i++ {
		err := os.Mkdir(name, outputDirPerm)
		if err == nil {
			return name, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("cannot create output directory %s: %w", name, err)
		}
		if i >= maxDirSuffixes {
			return "", ErrOutputDirExhausted
		}
		name = fmt.Sprintf("%s.%03d", stem, i+1)
	}
}
