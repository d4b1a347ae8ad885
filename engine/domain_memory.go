package engine

import (
	"sync"
	"time"
)

// DomainMemory remembers which engine last won for each domain, so sites
// that only answer the browser skip the HTTP attempt next time.
type DomainMemory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	winners map[string]winner

	done chan struct{}
	once sync.Once
}

type winner struct {
	engine  string
	expires time.Time
}

// NewDomainMemory creates a DomainMemory whose entries live for ttl. A
// background goroutine drops expired entries every sweep interval
// (hourly when sweep is zero) until Stop.
func NewDomainMemory(ttl, sweep time.Duration) *DomainMemory {
	if sweep <= 0 {
		sweep = time.Hour
	}
	dm := &DomainMemory{
		ttl:     ttl,
		now:     time.Now,
		winners: make(map[string]winner),
		done:    make(chan struct{}),
	}
	go dm.cleanupLoop(sweep)
	return dm
}

// Get returns the engine remembered for domain, or "" when there is none
// or it has expired.
func (dm *DomainMemory) Get(domain string) string {
	dm.mu.RLock()
	w, ok := dm.winners[domain]
	dm.mu.RUnlock()
	if !ok || dm.now().After(w.expires) {
		return ""
	}
	return w.engine
}

// Set records engineName as the winner for domain.
func (dm *DomainMemory) Set(domain, engineName string) {
	dm.mu.Lock()
	dm.winners[domain] = winner{engine: engineName, expires: dm.now().Add(dm.ttl)}
	dm.mu.Unlock()
}

// Delete forgets a domain.
func (dm *DomainMemory) Delete(domain string) {
	dm.mu.Lock()
	delete(dm.winners, domain)
	dm.mu.Unlock()
}

// Len counts the remembered domains, including expired ones not yet swept.
func (dm *DomainMemory) Len() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return len(dm.winners)
}

// Stop ends the background sweep. It is safe to call more than once.
func (dm *DomainMemory) Stop() {
	dm.once.Do(func() { close(dm.done) })
}

func (dm *DomainMemory) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-dm.done:
			return
		case now := <-ticker.C:
			dm.sweep(now)
		}
	}
}

func (dm *DomainMemory) sweep(now time.Time) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for domain, w := range dm.winners {
		if now.After(w.expires) {
			delete(dm.winners, domain)
		}
	}
}
