package report

import (
	"fmt"

	"github.com/xlab/treeprint"

	"github.com/tobsdb/pcddb/internal/database"
)

func tokenLabel(tok *database.Token) string {
	label := fmt.Sprintf("%s %s %s", tok.Key(), tok.DatumType, tok.PcdType)
	if tok.PcdType.NeedsStorage() {
		label += fmt.Sprintf(" #%d", tok.TokenNumber)
	}
	return label
}

// ByToken renders the database one token per branch, with the modules
// that produce and consume it.
func ByToken(m *database.Manager) string {
	tree := treeprint.NewWithRoot(fmt.Sprintf("PCD database (%d tokens)", m.Len()))
	for _, tok := range m.GetRecordArray() {
		branch := tree.AddBranch(tokenLabel(tok))
		branch.AddMetaNode("value", tok.Value().Raw)
		if len(tok.Producers) > 0 {
			producers := branch.AddBranch(fmt.Sprintf("producers (%d)", len(tok.Producers)))
			for _, u := range tok.Usages() {
				if u.IsProducer() {
					producers.AddMetaNode(u.ModulePcdType, u.Module.String())
				}
			}
		}
		if len(tok.Consumers) > 0 {
			consumers := branch.AddBranch(fmt.Sprintf("consumers (%d)", len(tok.Consumers)))
			for _, u := range tok.Usages() {
				if !u.IsProducer() {
					consumers.AddMetaNode(u.ModulePcdType, u.Module.String())
				}
			}
		}
	}
	return tree.String()
}

// ByModule renders every module selected by filter with the tokens it uses.
func ByModule(m *database.Manager, filter ModuleFilter) string {
	records := ModuleRecords(m, filter)
	tree := treeprint.NewWithRoot(fmt.Sprintf("modules (%d)", len(records)))
	for _, rec := range records {
		branch := tree.AddBranch(rec.Module.String())
		branch.AddMetaNode("guid", rec.Module.Guid)
		for _, u := range rec.Usages {
			label := fmt.Sprintf("%s %s", u.Token, u.Direction)
			if u.ModulePcdType != u.ResolvedPcdType && u.ResolvedPcdType != "" {
				label += fmt.Sprintf(" (declared %s)", u.ModulePcdType)
			}
			branch.AddMetaNode(u.ResolvedPcdType, label)
		}
	}
	return tree.String()
}
