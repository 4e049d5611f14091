// Package domain contains core concepts of the room chat system.
// This file defines Participant entities and the session roster.
// No runtime, network, or UI logic should be added here.
package domain

import "sync"

// ConnectionQuality mirrors what the transport reports per member.
type ConnectionQuality int

const (
	QualityUnknown ConnectionQuality = iota
	QualityPoor
	QualityGood
	QualityExcellent
)

func (q ConnectionQuality) String() string {
	switch q {
	case QualityPoor:
		return "poor"
	case QualityGood:
		return "good"
	case QualityExcellent:
		return "excellent"
	default:
		return "unknown"
	}
}

// Participant is a connected identity as seen by one session.
type Participant struct {
	Identity string
	IsLocal  bool
	Quality  ConnectionQuality
}

// Directory holds the roster of one room session. It is rebuilt wholesale
// from the transport's authoritative member list on every roster change,
// never diffed. The only ordering promise is that the local participant
// comes first; the rest keeps whatever order the transport supplied.
type Directory struct {
	mu           sync.RWMutex
	participants []Participant
}

func NewDirectory() *Directory {
	return &Directory{}
}

// Rebuild replaces the roster with the local identity followed by the
// remote identities. The local identity is skipped if the transport also
// lists it, so it never appears twice.
func (d *Directory) Rebuild(localIdentity string, remoteIdentities []string) {
	roster := make([]Participant, 0, len(remoteIdentities)+1)
	roster = append(roster, Participant{Identity: localIdentity, IsLocal: true})
	for _, identity := range remoteIdentities {
		if identity == localIdentity {
			continue
		}
		roster = append(roster, Participant{Identity: identity})
	}

	d.mu.Lock()
	d.participants = roster
	d.mu.Unlock()
}

// Snapshot returns a copy safe for rendering.
func (d *Directory) Snapshot() []Participant {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Participant, len(d.participants))
	copy(out, d.participants)
	return out
}
