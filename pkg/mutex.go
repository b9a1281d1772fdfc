package pkg

import "sync"

type HasLocker interface{ GetLocker() *sync.RWMutex }

// RLockValue runs f under the read lock and hands back its result.
func RLockValue[T any](i HasLocker, f func() T) T {
	i.GetLocker().RLock()
	defer i.GetLocker().RUnlock()
	return f()
}
