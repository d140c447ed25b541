package service

import "sync"

// competitionLocks serializes bracket mutations per competition. The bracket
// is reloaded for every request, so its own mutex does not span requests.
type competitionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCompetitionLocks() *competitionLocks {
	return &competitionLocks{locks: make(map[string]*sync.Mutex)}
}

func (c *competitionLocks) lock(competitionID string) func() {
	c.mu.Lock()
	l, ok := c.locks[competitionID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[competitionID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
