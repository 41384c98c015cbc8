package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/milk9111/jump/level"
)

//go:embed *.yaml
var LevelsFS embed.FS

// Names lists the embedded level files.
func Names() ([]string, error) {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("read levels: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(path.Ext(e.Name()), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadLevelFromFS loads an embedded level by file name.
func LoadLevelFromFS(name string) (level.Layout, error) {
	return level.LoadFS(LevelsFS, name)
}
