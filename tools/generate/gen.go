package generate

import (
	"errors"
	"fmt"

	"github.com/tobsdb/pcddb/internal/database"
)

var ErrNotResolved = errors.New("Database must be resolved before generating code")

// ToLang renders the view of module_key in lang. json renders the whole
// database when module_key is empty.
func ToLang(m *database.Manager, module_key string, lang string) ([]byte, error) {
	if !m.IsResolved() {
		return nil, ErrNotResolved
	}
	switch lang {
	case "json":
		if len(module_key) == 0 {
			return DatabaseJson(m)
		}
		return ModuleJson(m, module_key)
	case "c":
		fallthrough
	case "h":
		return ModuleHeader(m, module_key)
	default:
		return nil, fmt.Errorf("Unsupported Language: %s", lang)
	}
}
