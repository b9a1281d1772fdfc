package database

import (
	"errors"

	"github.com/tobsdb/pcddb/internal/module"
	"github.com/tobsdb/pcddb/internal/props"
	"github.com/tobsdb/pcddb/internal/types"
)

// UsageInstance is one module's reference to a token.
// The token owns it through its consumer or producer map; Token is only the
// key of that owner.
type UsageInstance struct {
	Token         TokenKey
	Module        module.Identity
	DatumType     types.DatumType
	ModulePcdType types.PcdType
	Direction     types.UsageDirection
	// module local value, nil when the module doesn't set one
	Value *props.Value
}

// NewUsageInstance validates the module identity and the declared types.
// value may be empty.
func NewUsageInstance(token TokenKey, mod module.Identity, datum types.DatumType,
	pcd_type types.PcdType, direction types.UsageDirection, value string,
) (*UsageInstance, error) {
	id, err := module.NewIdentity(mod.Name, mod.Guid, mod.Version, mod.Arch)
	if err != nil {
		var key_err *module.KeyComponentError
		if errors.As(err, &key_err) {
			return nil, newError(KindInvalidKeyComponent, token, err.Error())
		}
		return nil, newError(KindInvalidModuleIdentity, token, err.Error())
	}

	if !datum.IsValid() {
		return nil, newError(KindInvalidDeclaration, token, "invalid datum type "+string(datum), id.String())
	}
	if !pcd_type.IsValid() {
		return nil, newError(KindInvalidDeclaration, token, "invalid pcd type "+string(pcd_type), id.String())
	}
	if !direction.IsValid() {
		return nil, newError(KindInvalidDeclaration, token, "invalid usage "+string(direction), id.String())
	}

	u := &UsageInstance{
		Token:         token,
		Module:        id,
		DatumType:     datum,
		ModulePcdType: pcd_type,
		Direction:     direction,
	}

	if value != "" {
		v, err := props.ParseValueSafe(datum, value)
		if err != nil {
			return nil, newError(KindInvalidDefaultValue, token, err.Error(), id.String())
		}
		u.Value = &v
	}

	return u, nil
}

// Key is the module primary key the usage is indexed under.
func (u *UsageInstance) Key() string { return u.Module.Key() }

func (u *UsageInstance) IsProducer() bool { return u.Direction == types.UsageProduces }
