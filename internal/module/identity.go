package module

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"github.com/tobsdb/pcddb/internal/types"
)

// KEY_SEPARATOR joins the identity components into a module key.
// NewIdentity rejects any component containing it, so keys are unique.
const KEY_SEPARATOR = "|"

// Identity names the module (and the architecture it was built for) that
// declared a PCD usage.
type Identity struct {
	Name    string     `json:"name" yaml:"name"`
	Guid    string     `json:"guid" yaml:"guid"`
	Version string     `json:"version,omitempty" yaml:"version,omitempty"`
	Arch    types.Arch `json:"arch" yaml:"arch"`
}

// KeyComponentError is returned when a component contains KEY_SEPARATOR.
type KeyComponentError struct {
	Component string
	Value     string
}

func (e *KeyComponentError) Error() string {
	return fmt.Sprintf("module %s %q contains key separator %q", e.Component, e.Value, KEY_SEPARATOR)
}

func NewIdentity(name, guid, version string, arch types.Arch) (Identity, error) {
	id := Identity{
		Name:    strings.TrimSpace(name),
		Guid:    strings.TrimSpace(guid),
		Version: strings.TrimSpace(version),
		Arch:    arch,
	}

	for _, c := range [][2]string{
		{"name", id.Name}, {"guid", id.Guid}, {"version", id.Version}, {"arch", string(id.Arch)},
	} {
		if strings.Contains(c[1], KEY_SEPARATOR) {
			return Identity{}, &KeyComponentError{c[0], c[1]}
		}
	}

	if len(id.Name) == 0 {
		return Identity{}, fmt.Errorf("module name is empty")
	}

	g, err := uuid.Parse(id.Guid)
	if err != nil {
		return Identity{}, fmt.Errorf("module %s has invalid guid %q; %s", id.Name, id.Guid, err.Error())
	}
	id.Guid = g.String()

	if id.Version != "" {
		if _, err := semver.NewVersion(id.Version); err != nil {
			return Identity{}, fmt.Errorf("module %s has invalid version %q; %s", id.Name, id.Version, err.Error())
		}
	}

	if !id.Arch.IsValid() {
		return Identity{}, fmt.Errorf("module %s has invalid arch %q", id.Name, id.Arch)
	}

	return id, nil
}

// MustIdentity is NewIdentity for fixed identities known to be valid.
func MustIdentity(name, guid, version string, arch types.Arch) Identity {
	id, err := NewIdentity(name, guid, version, arch)
	if err != nil {
		panic(err)
	}
	return id
}

// Key is the primary key used to look up usages by module.
func (id Identity) Key() string {
	return strings.Join([]string{id.Name, id.Guid, id.Version, string(id.Arch)}, KEY_SEPARATOR)
}

func (id Identity) String() string {
	if id.Version == "" {
		return fmt.Sprintf("%s [%s]", id.Name, id.Arch)
	}
	return fmt.Sprintf("%s %s [%s]", id.Name, id.Version, id.Arch)
}

// ParseKey reverses Key. It does not validate the components.
func ParseKey(key string) (Identity, bool) {
	parts := strings.Split(key, KEY_SEPARATOR)
	if len(parts) != 4 {
		return Identity{}, false
	}
	return Identity{parts[0], parts[1], parts[2], types.Arch(parts[3])}, true
}
