package database

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	sorted "github.com/tobshub/go-sortedmap"

	"github.com/tobsdb/pcddb/internal/module"
	"github.com/tobsdb/pcddb/internal/props"
	"github.com/tobsdb/pcddb/internal/types"
	"github.com/tobsdb/pcddb/pkg"
)

// Manager is the PCD database of one platform build pass.
//
// Tokens are owned by the manager and addressed by TokenKey. Usages are owned
// by their token; the module index holds the same usages grouped by module
// key and is updated under the same lock as the token maps.
type Manager struct {
	Locker sync.RWMutex

	tokens pkg.Map[TokenKey, *Token]
	// tokens ordered by (token space, c name)
	records *sorted.SortedMap[TokenKey, *Token]
	// module key -> usages in declaration order
	module_index *pkg.InsertSortMap[string, []*UsageInstance]

	platform_values pkg.Map[TokenKey, string]
	// token space -> last token number handed out
	space_counters pkg.Map[string, int]

	resolved bool
}

func tokenComparisonFunc(a, b *Token) bool {
	if a.TokenSpace != b.TokenSpace {
		return a.TokenSpace < b.TokenSpace
	}
	return a.CName < b.CName
}

func NewManager() *Manager {
	return &Manager{
		tokens:          pkg.Map[TokenKey, *Token]{},
		records:         sorted.New[TokenKey, *Token](0, tokenComparisonFunc),
		module_index:    pkg.NewInsertSortMap[string, []*UsageInstance](),
		platform_values: pkg.Map[TokenKey, string]{},
		space_counters:  pkg.Map[string, int]{},
	}
}

func (m *Manager) GetLocker() *sync.RWMutex { return &m.Locker }

// Declaration is one PCD entry of a module surface area.
type Declaration struct {
	TokenSpace   string
	CName        string
	DatumType    types.DatumType
	DefaultValue string
	MaxDatumSize int
	PcdType      types.PcdType
	Usage        types.UsageDirection
	Module       module.Identity
}

func (d Declaration) Key() TokenKey { return MakeTokenKey(d.TokenSpace, d.CName) }

// Register creates the token if it is absent. If it exists the datum types
// must agree.
func (m *Manager) Register(token_space, c_name string, datum types.DatumType, default_value string,
	max_size int, declared_by module.Identity,
) (*Token, error) {
	m.Locker.Lock()
	defer m.Locker.Unlock()
	if m.resolved {
		return nil, ErrSealed
	}
	tok, is_new, err := m.register(token_space, c_name, datum, default_value, max_size, declared_by)
	if err != nil {
		return nil, err
	}
	if is_new {
		m.insertToken(tok)
	}
	return tok, nil
}

// register validates and builds the token but leaves inserting a new token
// to the caller, so a failing declaration never leaves a token behind.
func (m *Manager) register(token_space, c_name string, datum types.DatumType, default_value string,
	max_size int, declared_by module.Identity,
) (*Token, bool, error) {
	key := MakeTokenKey(token_space, c_name)
	if len(strings.TrimSpace(token_space)) == 0 || len(strings.TrimSpace(c_name)) == 0 {
		return nil, false, newError(KindInvalidDeclaration, key, "token space and c name are required", declared_by.String())
	}
	if !datum.IsValid() {
		return nil, false, newError(KindInvalidDeclaration, key, fmt.Sprintf("invalid datum type %q", datum), declared_by.String())
	}

	if m.tokens.Has(key) {
		tok := m.tokens.Get(key)
		if tok.DatumType != datum {
			return nil, false, newError(KindInconsistentDatumType, key,
				fmt.Sprintf("declared as %s and %s", tok.DatumType, datum),
				tok.DeclaredBy.String(), declared_by.String())
		}
		return tok, false, nil
	}

	v, err := props.ParseValueSafe(datum, default_value)
	if err != nil {
		return nil, false, newError(KindInvalidDefaultValue, key, err.Error(), declared_by.String())
	}
	size, err := props.DatumSize(datum, v, max_size)
	if err != nil {
		return nil, false, newError(KindInvalidDefaultValue, key, err.Error(), declared_by.String())
	}

	tok := &Token{
		TokenSpace:   token_space,
		CName:        c_name,
		DatumType:    datum,
		DefaultValue: v,
		DatumSize:    size,
		DeclaredBy:   declared_by,
		Consumers:    pkg.Map[string, *UsageInstance]{},
		Producers:    pkg.Map[string, *UsageInstance]{},
	}
	return tok, true, nil
}

func (m *Manager) insertToken(tok *Token) {
	m.tokens.Set(tok.Key(), tok)
	m.records.Insert(tok.Key(), tok)
	pkg.DebugLog("registered token", tok.Key(), tok.DatumType)
}

// AddUsage attaches u to its token and to the module index.
func (m *Manager) AddUsage(u *UsageInstance) error {
	m.Locker.Lock()
	defer m.Locker.Unlock()
	if m.resolved {
		return ErrSealed
	}
	if !m.tokens.Has(u.Token) {
		return newError(KindUnknownToken, u.Token, "usage declared before the token was registered", u.Module.String())
	}
	tok := m.tokens.Get(u.Token)
	if err := m.checkUsage(tok, u); err != nil {
		return err
	}
	m.indexUsage(tok, u)
	return nil
}

func (m *Manager) checkUsage(tok *Token, u *UsageInstance) error {
	if tok.hasUsage(u.Key()) {
		return newError(KindDuplicateUsage, tok.Key(), "module references the token twice", u.Module.String())
	}
	if u.DatumType != tok.DatumType {
		return newError(KindInconsistentDatumType, tok.Key(),
			fmt.Sprintf("declared as %s and %s", tok.DatumType, u.DatumType),
			tok.DeclaredBy.String(), u.Module.String())
	}
	return nil
}

func (m *Manager) indexUsage(tok *Token, u *UsageInstance) {
	tok.addUsage(u)
	key := u.Key()
	m.module_index.Set(key, append(m.module_index.Get(key), u))
}

// Declare registers the token of d and adds the module's usage of it as a
// single step.
func (m *Manager) Declare(d Declaration) error {
	u, err := NewUsageInstance(d.Key(), d.Module, d.DatumType, d.PcdType, d.Usage, d.DefaultValue)
	if err != nil {
		return err
	}

	m.Locker.Lock()
	defer m.Locker.Unlock()
	if m.resolved {
		return ErrSealed
	}

	tok, is_new, err := m.register(d.TokenSpace, d.CName, d.DatumType, d.DefaultValue, d.MaxDatumSize, u.Module)
	if err != nil {
		return err
	}
	if !is_new {
		if err := m.checkUsage(tok, u); err != nil {
			return err
		}
	} else {
		m.insertToken(tok)
	}
	m.indexUsage(tok, u)
	return nil
}

// SetPlatformDefault records a platform level value for a token. The value
// is checked against the token's datum type when the database is resolved,
// since the token may not be declared yet.
func (m *Manager) SetPlatformDefault(token_space, c_name, value string) error {
	m.Locker.Lock()
	defer m.Locker.Unlock()
	if m.resolved {
		return ErrSealed
	}
	m.platform_values.Set(MakeTokenKey(token_space, c_name), value)
	return nil
}

func (m *Manager) Len() int {
	return pkg.RLockValue(m, func() int { return len(m.tokens) })
}

func (m *Manager) IsResolved() bool {
	return pkg.RLockValue(m, func() bool { return m.resolved })
}

func (m *Manager) GetToken(token_space, c_name string) (*Token, bool) {
	return m.GetTokenByKey(MakeTokenKey(token_space, c_name))
}

func (m *Manager) GetTokenByKey(key TokenKey) (*Token, bool) {
	m.Locker.RLock()
	defer m.Locker.RUnlock()
	tok, ok := m.tokens[key]
	return tok, ok
}

// GetRecordArray returns every token ordered by token space then c name.
func (m *Manager) GetRecordArray() []*Token {
	m.Locker.RLock()
	defer m.Locker.RUnlock()
	return m.sortedTokens()
}

func (m *Manager) sortedTokens() []*Token {
	res := make([]*Token, 0, len(m.tokens))
	iter_ch, err := m.records.IterCh()
	if err != nil {
		// empty map
		return res
	}
	for rec := range iter_ch.Records() {
		res = append(res, rec.Val)
	}
	return res
}

// GetAllModuleArray returns the distinct module keys, sorted.
func (m *Manager) GetAllModuleArray() []string {
	m.Locker.RLock()
	defer m.Locker.RUnlock()
	keys := slices.Clone(m.module_index.Sorted)
	slices.Sort(keys)
	return keys
}

// GetUsageInstanceArrayByKeyString returns the usages of a module in the
// order they were declared.
func (m *Manager) GetUsageInstanceArrayByKeyString(module_key string) []*UsageInstance {
	m.Locker.RLock()
	defer m.Locker.RUnlock()
	return slices.Clone(m.module_index.Get(module_key))
}

// GetModuleIdentity looks up the identity behind a module key.
func (m *Manager) GetModuleIdentity(module_key string) (module.Identity, bool) {
	m.Locker.RLock()
	defer m.Locker.RUnlock()
	usages := m.module_index.Get(module_key)
	if len(usages) == 0 {
		return module.Identity{}, false
	}
	return usages[0].Module, true
}
