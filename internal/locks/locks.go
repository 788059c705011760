package locks

import (
	"sync"
	"time"

	"speck/internal/logs"
)

// A single in-process lock serializes mutating commands within one
// invocation. Concurrent writers across processes are an accepted gap:
// there is no lock file, and the store's atomic write keeps any completed
// write internally consistent.

var repoLock sync.Mutex

func LockRepo() {
	start := time.Now()
	repoLock.Lock()
	logs.Debug("Repo lock acquired (waited %v).", time.Since(start))
}

func UnlockRepo() {
	repoLock.Unlock()
	logs.Debug("Repo lock released.")
}
