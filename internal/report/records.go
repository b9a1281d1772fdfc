package report

import (
	"github.com/tobsdb/pcddb/internal/database"
	"github.com/tobsdb/pcddb/internal/module"
	"github.com/tobsdb/pcddb/internal/types"
	"github.com/tobsdb/pcddb/pkg"
)

type (
	TokenRecord struct {
		Key           database.TokenKey `json:"key"`
		TokenSpace    string            `json:"tokenSpace"`
		CName         string            `json:"cName"`
		DatumType     types.DatumType   `json:"datumType"`
		DatumSize     int               `json:"datumSize"`
		PcdType       types.PcdType     `json:"pcdType"`
		TokenNumber   int               `json:"tokenNumber"`
		Value         string            `json:"value"`
		DeclaredTypes []types.PcdType   `json:"declaredTypes"`
		Producers     []string          `json:"producers"`
		Consumers     []string          `json:"consumers"`
	}

	UsageRecord struct {
		Token           database.TokenKey    `json:"token"`
		DatumType       types.DatumType      `json:"datumType"`
		ModulePcdType   types.PcdType        `json:"modulePcdType"`
		ResolvedPcdType types.PcdType        `json:"resolvedPcdType"`
		Direction       types.UsageDirection `json:"direction"`
		TokenNumber     int                  `json:"tokenNumber"`
		Value           string               `json:"value"`
	}

	ModuleRecord struct {
		Key    string          `json:"key"`
		Module module.Identity `json:"module"`
		Usages []UsageRecord   `json:"usages"`
	}
)

func NewTokenRecord(tok *database.Token) TokenRecord {
	usageKey := func(u *database.UsageInstance) string { return u.Key() }
	producers := pkg.Filter(tok.Usages(), (*database.UsageInstance).IsProducer)
	consumers := pkg.Filter(tok.Usages(), func(u *database.UsageInstance) bool { return !u.IsProducer() })
	return TokenRecord{
		Key:           tok.Key(),
		TokenSpace:    tok.TokenSpace,
		CName:         tok.CName,
		DatumType:     tok.DatumType,
		DatumSize:     tok.DatumSize,
		PcdType:       tok.PcdType,
		TokenNumber:   tok.TokenNumber,
		Value:         tok.Value().Raw,
		DeclaredTypes: tok.DeclaredPcdTypes(),
		Producers:     pkg.MapSlice(producers, usageKey),
		Consumers:     pkg.MapSlice(consumers, usageKey),
	}
}

// TokenRecords is the "by PCD" projection, in record order.
func TokenRecords(m *database.Manager) []TokenRecord {
	return pkg.MapSlice(m.GetRecordArray(), NewTokenRecord)
}

func NewUsageRecord(tok *database.Token, u *database.UsageInstance) UsageRecord {
	return UsageRecord{
		Token:           u.Token,
		DatumType:       u.DatumType,
		ModulePcdType:   u.ModulePcdType,
		ResolvedPcdType: tok.PcdType,
		Direction:       u.Direction,
		TokenNumber:     tok.TokenNumber,
		Value:           tok.ValueFor(u).Raw,
	}
}

// GetModuleRecord returns the usages of one module, in declaration order.
func GetModuleRecord(m *database.Manager, module_key string) (ModuleRecord, bool) {
	id, ok := m.GetModuleIdentity(module_key)
	if !ok {
		return ModuleRecord{}, false
	}
	rec := ModuleRecord{Key: module_key, Module: id, Usages: []UsageRecord{}}
	for _, u := range m.GetUsageInstanceArrayByKeyString(module_key) {
		tok, ok := m.GetTokenByKey(u.Token)
		if !ok {
			continue
		}
		rec.Usages = append(rec.Usages, NewUsageRecord(tok, u))
	}
	return rec, true
}

// ModuleRecords is the "by module" projection, ordered by module key.
func ModuleRecords(m *database.Manager, filter ModuleFilter) []ModuleRecord {
	res := []ModuleRecord{}
	for _, key := range m.GetAllModuleArray() {
		rec, ok := GetModuleRecord(m, key)
		if !ok || !filter.Match(rec.Module) {
			continue
		}
		res = append(res, rec)
	}
	return res
}
