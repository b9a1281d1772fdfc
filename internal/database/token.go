package database

import (
	"slices"

	"github.com/tobsdb/pcddb/internal/module"
	"github.com/tobsdb/pcddb/internal/props"
	"github.com/tobsdb/pcddb/internal/types"
	"github.com/tobsdb/pcddb/pkg"
)

// TokenKey is the primary key of a token: "<token space>.<c name>".
type TokenKey string

func MakeTokenKey(token_space, c_name string) TokenKey {
	return TokenKey(token_space + "." + c_name)
}

type Token struct {
	TokenSpace   string
	CName        string
	DatumType    types.DatumType
	DefaultValue props.Value
	DatumSize    int

	// set by Resolve
	PcdType     types.PcdType
	TokenNumber int

	// module that first declared the token
	DeclaredBy module.Identity

	// module key -> usage
	Consumers pkg.Map[string, *UsageInstance]
	Producers pkg.Map[string, *UsageInstance]

	platform_value *props.Value
}

func (t *Token) Key() TokenKey { return MakeTokenKey(t.TokenSpace, t.CName) }

func (t *Token) UsageCount() int { return len(t.Consumers) + len(t.Producers) }

func (t *Token) hasUsage(module_key string) bool {
	return t.Consumers.Has(module_key) || t.Producers.Has(module_key)
}

func (t *Token) addUsage(u *UsageInstance) {
	if u.IsProducer() {
		t.Producers.Set(u.Key(), u)
	} else {
		t.Consumers.Set(u.Key(), u)
	}
}

// Usages returns producers then consumers, each ordered by module key.
func (t *Token) Usages() []*UsageInstance {
	res := make([]*UsageInstance, 0, t.UsageCount())
	for _, k := range pkg.SortedKeys(t.Producers) {
		res = append(res, t.Producers.Get(k))
	}
	for _, k := range pkg.SortedKeys(t.Consumers) {
		res = append(res, t.Consumers.Get(k))
	}
	return res
}

// DeclaredPcdTypes is the distinct set of types the usages declared,
// weakest first.
func (t *Token) DeclaredPcdTypes() []types.PcdType {
	res := []types.PcdType{}
	for _, u := range t.Usages() {
		if !slices.Contains(res, u.ModulePcdType) {
			res = append(res, u.ModulePcdType)
		}
	}
	slices.SortFunc(res, func(a, b types.PcdType) int { return a.Rank() - b.Rank() })
	return res
}

// ResolvePcdType computes the aggregate type of the token from its usages.
// It returns "" for a token nobody references.
func (t *Token) ResolvePcdType() types.PcdType {
	var res types.PcdType
	for _, u := range t.Usages() {
		if res == "" {
			res = u.ModulePcdType
			continue
		}
		res = types.MaxPcdType(res, u.ModulePcdType)
	}
	return res
}

// Producer returns the single producer of the token, if there is exactly one.
func (t *Token) Producer() (*UsageInstance, bool) {
	if len(t.Producers) != 1 {
		return nil, false
	}
	for _, u := range t.Producers {
		return u, true
	}
	return nil, false
}

func (t *Token) HasPlatformValue() bool { return t.platform_value != nil }

// Value is the platform wide value of the token: the platform override,
// else the producer's value for dynamic tokens, else the declared default.
func (t *Token) Value() props.Value {
	if t.platform_value != nil {
		return *t.platform_value
	}
	if t.PcdType.IsDynamic() {
		if p, ok := t.Producer(); ok && p.Value != nil {
			return *p.Value
		}
	}
	return t.DefaultValue
}

// ValueFor is the value a module is built with. Static tokens honour the
// module's own value; dynamic ones always read the platform value.
func (t *Token) ValueFor(u *UsageInstance) props.Value {
	if t.platform_value == nil && u.Value != nil && !t.PcdType.IsDynamic() {
		return *u.Value
	}
	return t.Value()
}
