// Package proto defines the wire protocol spoken with the playback daemon:
// frame envelopes, event channel names, and the payload types that cross
// the bridge.
package proto

import "encoding/json"

// Event channels pushed by the daemon. Within one channel delivery order
// equals emission order; nothing is guaranteed across channels.
const (
	ChanCurrentTrack     = "currentTrackEvent"
	ChanPlaybackState    = "playbackStateEvent"
	ChanPlaybackPosition = "playbackPositionEvent"
	ChanUpdatedQueue     = "updatedQueueEvent"
	ChanLoggedIn         = "loggedIn"
)

// Frame types. Every websocket text message is exactly one frame.
const (
	FrameCmd   = "cmd"
	FrameReply = "reply"
	FrameEvent = "event"
)

// Reply statuses.
const (
	StatusOk    = "ok"
	StatusError = "error"
)

// Frame is the single envelope for commands, replies and events.
// Type selects which fields are meaningful.
type Frame struct {
	Type string `json:"type"`

	// cmd + reply: correlation ID
	ID string `json:"id,omitempty"`

	// cmd
	Name string          `json:"name,omitempty"`
	Args json.RawMessage `json:"args,omitempty"`

	// reply
	Status string          `json:"status,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`

	// event
	Channel string          `json:"channel,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AudioQuality is the daemon's stream quality tag for a track or album.
type AudioQuality string

const (
	QualityLow           AudioQuality = "low"
	QualityHigh          AudioQuality = "high"
	QualityLossless      AudioQuality = "lossless"
	QualityHiResLossless AudioQuality = "hiResLossless"
)

// ArtistSummary is the compact artist shape embedded in tracks and albums.
type ArtistSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// AlbumSummary is the compact album shape embedded in tracks.
type AlbumSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cover string `json:"cover,omitempty"`
}

// Track is an immutable track snapshot. A new event payload replaces the
// previous instance; nothing mutates one in place.
type Track struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	TrackNumber  int             `json:"trackNumber"`
	Duration     int             `json:"duration"` // seconds
	Explicit     bool            `json:"explicit"`
	AudioQuality AudioQuality    `json:"audioQuality"`
	Artists      []ArtistSummary `json:"artists,omitempty"`
	Album        AlbumSummary    `json:"album"`
	Tags         []string        `json:"tags,omitempty"`
	ISRC         string          `json:"isrc,omitempty"`
	Copyright    string          `json:"copyright,omitempty"`
	URL          string          `json:"url,omitempty"`
	BPM          int             `json:"bpm,omitempty"`
	Popularity   int             `json:"popularity,omitempty"`
}

// Album is the full album shape returned by favouriteAlbums.
type Album struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Cover          string          `json:"cover,omitempty"`
	Explicit       bool            `json:"explicit"`
	AudioQuality   AudioQuality    `json:"audioQuality"`
	NumberOfTracks int             `json:"numberOfTracks"`
	Artists        []ArtistSummary `json:"artists,omitempty"`
}

// FavouriteAlbum pairs an album with the time it was favourited.
type FavouriteAlbum struct {
	Created string `json:"created"`
	Item    Album  `json:"item"`
}

// Device is an output sink the daemon can play to. Enumerated on demand,
// not event-driven.
type Device struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
