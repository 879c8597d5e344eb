// Package lyrics derives lyrics text from the current-track identity. Each
// fetch is tagged with the track ID it was launched for; a resolution is
// applied only if that ID still matches the live one, so a fetch that loses
// a race against a track change is discarded, never shown.
package lyrics

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"tidewave/internal/bridge"
	"tidewave/internal/proto"
)

// Phase of the controller's state machine.
type Phase string

const (
	PhaseIdle     Phase = "idle"     // no track
	PhaseFetching Phase = "fetching" // fetch in flight for TrackID
	PhaseReady    Phase = "ready"    // Text holds lyrics for TrackID
	PhaseEmpty    Phase = "empty"    // no lyrics available for TrackID
)

// Status is a snapshot of the controller state, shaped for the frontend.
type Status struct {
	Phase   Phase  `json:"phase"`
	TrackID string `json:"trackId,omitempty"`
	Text    string `json:"text,omitempty"`
}

// FetchFunc resolves lyrics for a track. An error or empty text both land
// the controller in PhaseEmpty.
type FetchFunc func(ctx context.Context, trackID string) (string, error)

type Controller struct {
	mu       sync.Mutex
	fetch    FetchFunc
	onChange func(Status)

	phase   Phase
	trackID string
	text    string
}

// New creates a controller in PhaseIdle. onChange may be nil; when set it
// is invoked outside the lock after every transition.
func New(fetch FetchFunc, onChange func(Status)) *Controller {
	return &Controller{
		fetch:    fetch,
		onChange: onChange,
		phase:    PhaseIdle,
	}
}

// Attach subscribes the controller to current-track events and returns the
// disposer for the subscription.
func (c *Controller) Attach(b *bridge.Bridge) func() {
	return b.Subscribe(proto.ChanCurrentTrack, func(payload json.RawMessage) {
		var track *proto.Track
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &track); err != nil {
				log.Printf("LYRICS: bad current-track payload: %v", err)
				return
			}
		}
		if track == nil {
			c.TrackChanged("")
		} else {
			c.TrackChanged(track.ID)
		}
	})
}

// TrackChanged drives the state machine. An empty ID means no track. A
// repeat of the live identity is a no-op; anything else supersedes the
// in-flight fetch, whose eventual resolution will be discarded.
func (c *Controller) TrackChanged(trackID string) {
	c.mu.Lock()
	if trackID == c.trackID {
		c.mu.Unlock()
		return
	}
	if trackID == "" {
		c.trackID = ""
		c.text = ""
		c.phase = PhaseIdle
		status := c.statusLocked()
		c.mu.Unlock()
		c.notify(status)
		return
	}

	c.trackID = trackID
	c.text = ""
	c.phase = PhaseFetching
	status := c.statusLocked()
	c.mu.Unlock()
	c.notify(status)

	go c.run(trackID)
}

// run performs one fetch and applies the result only if trackID is still
// the live identity at resolution time.
func (c *Controller) run(trackID string) {
	text, err := c.fetch(context.Background(), trackID)

	c.mu.Lock()
	if c.trackID != trackID {
		c.mu.Unlock()
		log.Printf("LYRICS: discarding stale result for track %s", trackID)
		return
	}
	if err != nil || text == "" {
		c.phase = PhaseEmpty
		c.text = ""
	} else {
		c.phase = PhaseReady
		c.text = text
	}
	status := c.statusLocked()
	c.mu.Unlock()
	c.notify(status)
}

// Status returns the current snapshot.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) statusLocked() Status {
	return Status{Phase: c.phase, TrackID: c.trackID, Text: c.text}
}

func (c *Controller) notify(s Status) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
