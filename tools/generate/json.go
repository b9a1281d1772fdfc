package generate

import (
	"encoding/json"
	"fmt"

	"github.com/tobsdb/pcddb/internal/database"
	"github.com/tobsdb/pcddb/internal/report"
)

type DatabaseView struct {
	Fingerprint string                `json:"fingerprint"`
	Tokens      []report.TokenRecord  `json:"tokens"`
	Modules     []report.ModuleRecord `json:"modules"`
}

func DatabaseJson(m *database.Manager) ([]byte, error) {
	if !m.IsResolved() {
		return nil, ErrNotResolved
	}
	fp, err := m.Fingerprint()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(DatabaseView{
		Fingerprint: fmt.Sprintf("%016x", fp),
		Tokens:      report.TokenRecords(m),
		Modules:     report.ModuleRecords(m, report.ModuleFilter{}),
	}, "", "  ")
}

func ModuleJson(m *database.Manager, module_key string) ([]byte, error) {
	rec, ok := report.GetModuleRecord(m, module_key)
	if !ok {
		return nil, fmt.Errorf("Module %s not found", module_key)
	}
	return json.MarshalIndent(rec, "", "  ")
}
