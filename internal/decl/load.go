package decl

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"

	"github.com/tobsdb/pcddb/pkg"
)

type Loader struct {
	fs afs.Service
}

func NewLoader() *Loader {
	return &Loader{fs: afs.New()}
}

// Load fetches one declaration source. Files ending in .yaml or .yml are
// platform descriptions; anything else is read as .pcd text.
func (l *Loader) Load(ctx context.Context, URL string) (*Platform, error) {
	source, err := l.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("Failed to read %s; %w", URL, err)
	}

	var platform *Platform
	switch strings.ToLower(path.Ext(URL)) {
	case ".yaml", ".yml":
		platform, err = ParseYaml(source)
	default:
		platform, err = ParseText(string(source))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", URL, err)
	}

	pkg.DebugLog("loaded", len(platform.Modules), "modules from", URL)
	return platform, nil
}

// LoadAll loads every source in order and merges them into one platform.
func (l *Loader) LoadAll(ctx context.Context, URLs ...string) (*Platform, error) {
	platform := &Platform{Modules: []ModuleSurfaceArea{}}
	for _, URL := range URLs {
		p, err := l.Load(ctx, URL)
		if err != nil {
			return nil, err
		}
		if err := platform.Merge(p); err != nil {
			return nil, fmt.Errorf("%s: %w", URL, err)
		}
	}
	return platform, nil
}
