package report

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/tobsdb/pcddb/internal/module"
)

// ModuleFilter selects modules by a glob over their name. The zero value
// matches every module.
type ModuleFilter struct {
	pattern string
	g       glob.Glob
}

func NewModuleFilter(pattern string) (ModuleFilter, error) {
	if pattern == "" || pattern == "*" {
		return ModuleFilter{}, nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return ModuleFilter{}, fmt.Errorf("invalid module filter %q; %s", pattern, err.Error())
	}
	return ModuleFilter{pattern, g}, nil
}

func (f ModuleFilter) Match(id module.Identity) bool {
	if f.g == nil {
		return true
	}
	return f.g.Match(id.Name)
}

func (f ModuleFilter) String() string { return f.pattern }
