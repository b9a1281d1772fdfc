package database

import (
	"fmt"

	"github.com/tobsdb/pcddb/internal/props"
	"github.com/tobsdb/pcddb/internal/types"
	"github.com/tobsdb/pcddb/pkg"
)

type resolution struct {
	tok            *Token
	pcd_type       types.PcdType
	token_number   int
	platform_value *props.Value
}

// Resolve computes the platform type, value and token number of every token.
//
// Tokens are visited in record order, so the first failure reported and the
// token numbers handed out don't depend on declaration order. Nothing is
// written back unless every token resolves. On success the database is sealed;
// calling Resolve again is allowed and yields the same result.
func (m *Manager) Resolve() error {
	m.Locker.Lock()
	defer m.Locker.Unlock()

	for _, key := range pkg.SortedKeys(m.platform_values) {
		if !m.tokens.Has(key) {
			pkg.WarnLog("platform value for undeclared token", key, "ignored")
		}
	}

	counters := pkg.Map[string, int]{}
	for k, v := range m.space_counters {
		counters[k] = v
	}

	records := m.sortedTokens()
	results := make([]resolution, 0, len(records))
	for _, tok := range records {
		r, err := m.resolveToken(tok, counters)
		if err != nil {
			pkg.ErrorLog("pcd resolution failed:", err)
			return err
		}
		results = append(results, r)
	}

	dynamic_count := 0
	for _, r := range results {
		r.tok.PcdType = r.pcd_type
		r.tok.TokenNumber = r.token_number
		r.tok.platform_value = r.platform_value
		if r.pcd_type.IsDynamic() {
			dynamic_count++
		}
	}
	m.space_counters = counters

	if err := m.checkIntegrity(); err != nil {
		return err
	}

	if !m.resolved {
		pkg.InfoLog(fmt.Sprintf("resolved %d tokens (%d dynamic) across %d modules",
			len(results), dynamic_count, m.module_index.Len()))
	}
	m.resolved = true
	return nil
}

func (m *Manager) resolveToken(tok *Token, counters pkg.Map[string, int]) (resolution, error) {
	key := tok.Key()
	r := resolution{tok: tok}

	if m.platform_values.Has(key) {
		v, err := props.ParseValueSafe(tok.DatumType, m.platform_values.Get(key))
		if err != nil {
			return r, newError(KindInvalidDefaultValue, key, "platform value: "+err.Error())
		}
		if tok.DatumType == types.DatumTypePointer && v.Size > tok.DatumSize {
			return r, newError(KindInvalidDefaultValue, key,
				fmt.Sprintf("platform value %s needs %d bytes but size is %d", v.Raw, v.Size, tok.DatumSize))
		}
		r.platform_value = &v
	}

	usages := tok.Usages()
	if len(usages) == 0 {
		pkg.WarnLog("token", key, "is not referenced by any module")
		return r, nil
	}

	for _, u := range usages {
		if u.DatumType != tok.DatumType {
			return r, newError(KindInconsistentDatumType, key,
				fmt.Sprintf("declared as %s and %s", tok.DatumType, u.DatumType),
				tok.DeclaredBy.String(), u.Module.String())
		}
	}

	r.pcd_type = tok.ResolvePcdType()

	switch {
	case r.pcd_type.IsDynamic():
		if len(tok.Producers) > 1 {
			modules := []string{}
			for _, k := range pkg.SortedKeys(tok.Producers) {
				modules = append(modules, tok.Producers.Get(k).Module.String())
			}
			return r, newError(KindMultipleProducers, key,
				fmt.Sprintf("%d modules produce a %s token", len(tok.Producers), r.pcd_type), modules...)
		}
		if len(tok.Producers) == 0 && r.platform_value == nil {
			return r, newError(KindNoProducerForDynamicPcd, key,
				fmt.Sprintf("%s token has no producer and no platform value", r.pcd_type),
				usageModuleNames(tok)...)
		}

		if tok.TokenNumber != 0 {
			r.token_number = tok.TokenNumber
		} else {
			counters[tok.TokenSpace]++
			r.token_number = counters[tok.TokenSpace]
		}
	case r.pcd_type == types.PcdTypeFeatureFlag:
		if tok.DatumType != types.DatumTypeBool {
			return r, newError(KindInvalidFeatureFlagType, key,
				fmt.Sprintf("feature flags must be BOOLEAN, got %s", tok.DatumType),
				usageModuleNames(tok)...)
		}
	}

	return r, nil
}

func usageModuleNames(tok *Token) []string {
	res := []string{}
	for _, u := range tok.Usages() {
		res = append(res, u.Module.String())
	}
	return res
}
