package database

import "fmt"

// CheckIntegrity verifies that the module index and the token usage maps
// describe the same set of usages. A failure is a bug in the manager, not in
// the declarations.
func (m *Manager) CheckIntegrity() error {
	m.Locker.RLock()
	defer m.Locker.RUnlock()
	return m.checkIntegrity()
}

func (m *Manager) checkIntegrity() error {
	indexed := 0
	for _, module_key := range m.module_index.Sorted {
		for _, u := range m.module_index.Get(module_key) {
			indexed++
			if u.Key() != module_key {
				return newError(KindIntegrity, u.Token,
					fmt.Sprintf("usage of %s indexed under %s", u.Key(), module_key))
			}
			tok, ok := m.tokens[u.Token]
			if !ok {
				return newError(KindIntegrity, u.Token, "usage refers to a missing token", u.Module.String())
			}

			owners := 0
			if tok.Consumers.Get(module_key) == u {
				owners++
			}
			if tok.Producers.Get(module_key) == u {
				owners++
			}
			if owners != 1 {
				return newError(KindIntegrity, u.Token,
					fmt.Sprintf("usage owned by %d maps", owners), u.Module.String())
			}
		}
	}

	owned := 0
	for _, tok := range m.tokens {
		owned += tok.UsageCount()
	}
	if owned != indexed {
		return newError(KindIntegrity, "",
			fmt.Sprintf("%d usages owned by tokens but %d indexed by module", owned, indexed))
	}
	return nil
}
