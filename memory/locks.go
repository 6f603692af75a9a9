package memory

import "sync"

// artifactLocks serializes read-modify-write per artifact.
type artifactLocks struct {
	mu map[Artifact]*sync.Mutex
}

func newArtifactLocks() *artifactLocks {
	l := &artifactLocks{mu: make(map[Artifact]*sync.Mutex, len(Artifacts()))}
	for _, a := range Artifacts() {
		l.mu[a] = &sync.Mutex{}
	}
	return l
}

func (l *artifactLocks) lock(a Artifact) func() {
	m := l.mu[a]
	m.Lock()
	return m.Unlock
}

// lockAll acquires every artifact lock in Artifacts() order.
func (l *artifactLocks) lockAll() func() {
	all := Artifacts()
	for _, a := range all {
		l.mu[a].Lock()
	}
	return func() {
		for i := len(all) - 1; i >= 0; i-- {
			l.mu[all[i]].Unlock()
		}
	}
}
