// Package player mirrors the daemon's playback state. The store is updated
// only by event payloads delivered through the bridge; everything else
// takes read-only snapshots.
package player

import (
	"encoding/json"
	"log"
	"sync"

	"tidewave/internal/bridge"
	"tidewave/internal/proto"
	"tidewave/internal/util"
)

// historySize bounds the recently-played list.
const historySize = 50

// Snapshot is an immutable copy of the mirrored state. A nil CurrentTrack
// means no track is playing; consumers render a defined empty state, not
// an error.
type Snapshot struct {
	CurrentTrack *proto.Track  `json:"currentTrack"`
	Playing      bool          `json:"playing"`
	Position     int           `json:"position"` // elapsed seconds
	Queue        []proto.Track `json:"queue"`
}

// Store holds the mirror. Writes arrive serialized on the bridge dispatch
// goroutine; the mutex exists for snapshot readers on other goroutines.
type Store struct {
	mu       sync.RWMutex
	current  *proto.Track
	playing  bool
	position int
	queue    []proto.Track

	history *util.RingBuffer[proto.Track]
}

func NewStore() *Store {
	return &Store{history: util.NewRingBuffer[proto.Track](historySize)}
}

// Attach subscribes the store to its four event channels and returns a
// release function that disposes all of them. Callers pair Attach with the
// release on every exit path.
func (s *Store) Attach(b *bridge.Bridge) func() {
	disposers := []func(){
		b.Subscribe(proto.ChanCurrentTrack, s.applyCurrentTrack),
		b.Subscribe(proto.ChanPlaybackState, s.applyPlaybackState),
		b.Subscribe(proto.ChanPlaybackPosition, s.applyPosition),
		b.Subscribe(proto.ChanUpdatedQueue, s.applyQueue),
	}
	return func() {
		for _, dispose := range disposers {
			dispose()
		}
	}
}

// applyCurrentTrack replaces the current track and resets the position.
// The reset is unconditional: a position tick for the previous track that
// arrives after the change is stale and must not survive it.
func (s *Store) applyCurrentTrack(payload json.RawMessage) {
	var track *proto.Track
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &track); err != nil {
			log.Printf("PLAYER: bad current-track payload: %v", err)
			return
		}
	}

	s.mu.Lock()
	prev := s.current
	s.current = track
	s.position = 0
	s.mu.Unlock()

	// The outgoing track joins the recently-played list once it is actually
	// replaced, not on restarts of the same identity.
	if prev != nil && (track == nil || track.ID != prev.ID) {
		s.history.Push(*prev)
	}
}

func (s *Store) applyPlaybackState(payload json.RawMessage) {
	var playing bool
	if err := json.Unmarshal(payload, &playing); err != nil {
		log.Printf("PLAYER: bad playback-state payload: %v", err)
		return
	}

	s.mu.Lock()
	s.playing = playing
	s.mu.Unlock()
}

func (s *Store) applyPosition(payload json.RawMessage) {
	var seconds int
	if err := json.Unmarshal(payload, &seconds); err != nil {
		log.Printf("PLAYER: bad position payload: %v", err)
		return
	}
	if seconds < 0 {
		log.Printf("PLAYER: dropping negative position %d", seconds)
		return
	}

	s.mu.Lock()
	s.position = seconds
	s.mu.Unlock()
}

// applyQueue replaces the whole queue. Order and duplicates come straight
// from the payload; consumers key by (track ID, position).
func (s *Store) applyQueue(payload json.RawMessage) {
	var queue []proto.Track
	if err := json.Unmarshal(payload, &queue); err != nil {
		log.Printf("PLAYER: bad queue payload: %v", err)
		return
	}

	s.mu.Lock()
	s.queue = queue
	s.mu.Unlock()
}

// Snapshot returns a copy of the current mirror. The queue slice is copied
// so callers can hold it across later events.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Playing:  s.playing,
		Position: s.position,
		Queue:    make([]proto.Track, len(s.queue)),
	}
	copy(snap.Queue, s.queue)
	if s.current != nil {
		track := *s.current
		snap.CurrentTrack = &track
	}
	return snap
}

// History returns the recently-played tracks, oldest first. The list is
// bounded; older entries fall off.
func (s *Store) History() []proto.Track {
	return s.history.Snapshot()
}

// CurrentTrackID returns the identity of the current track, or "" when no
// track is playing.
func (s *Store) CurrentTrackID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID
}
