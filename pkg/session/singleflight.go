package session

import "sync"

// creationLocks coalesces concurrent ensureSession calls for the same
// threadId into one creation, per the per-thread single-flight rule in
// §5/§9: "install a signal, perform the creation, remove the signal on
// completion." A hand-rolled map+mutex, not golang.org/x/sync/singleflight
// — singleflight.Do recomputes and discards its result on every call, but
// callers that arrive after creation has progressed partway must observe
// the same in-flight (and then completed) Session, not a fresh one.
type creationLocks struct {
	mu      sync.Mutex
	inFlight map[string]chan struct{}
}

func newCreationLocks() *creationLocks {
	return &creationLocks{inFlight: make(map[string]chan struct{})}
}

// acquire blocks until threadId has no in-flight creation, then installs
// a signal for the caller to release when done.
func (c *creationLocks) acquire(threadID string) {
	for {
		c.mu.Lock()
		done, busy := c.inFlight[threadID]
		if !busy {
			c.inFlight[threadID] = make(chan struct{})
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		<-done
	}
}

// release removes threadId's signal and wakes every caller waiting on it.
func (c *creationLocks) release(threadID string) {
	c.mu.Lock()
	done, ok := c.inFlight[threadID]
	delete(c.inFlight, threadID)
	c.mu.Unlock()
	if ok {
		close(done)
	}
}
