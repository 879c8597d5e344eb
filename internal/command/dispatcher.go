// Package command is the typed surface over the bridge: one function per
// daemon command, each resolving to a Result envelope. No local validation,
// no retries — acceptance is the daemon's call, propagation is observed
// later through events.
package command

import (
	"context"
	"encoding/json"
	"fmt"

	"tidewave/internal/proto"
	"tidewave/internal/result"
)

// Invoker sends one named command and returns the raw success payload or
// an error. *bridge.Bridge satisfies it; tests substitute fakes.
type Invoker interface {
	Call(ctx context.Context, name string, args any) (json.RawMessage, error)
}

type Dispatcher struct {
	inv Invoker
}

func NewDispatcher(inv Invoker) *Dispatcher {
	return &Dispatcher{inv: inv}
}

// trackArgs and albumArgs are the only argument shapes the surface needs.
type trackArgs struct {
	TrackID string `json:"trackId"`
}

type albumArgs struct {
	AlbumID string `json:"albumId"`
}

type deviceArgs struct {
	DeviceID string `json:"deviceId"`
}

// invoke runs one command and decodes the success payload into T.
func invoke[T any](ctx context.Context, inv Invoker, name string, args any) result.Result[T] {
	data, err := inv.Call(ctx, name, args)
	if err != nil {
		return result.Err[T](err)
	}
	var out T
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			return result.Err[T](fmt.Errorf("command %s: decode response: %w", name, err))
		}
	}
	return result.Ok(out)
}

// invokeUnit runs a fire-and-confirm command whose success carries no data.
func invokeUnit(ctx context.Context, inv Invoker, name string, args any) result.Result[result.Unit] {
	if _, err := inv.Call(ctx, name, args); err != nil {
		return result.Err[result.Unit](err)
	}
	return result.Ok(result.Unit{})
}

func (d *Dispatcher) IsLoggedIn(ctx context.Context) result.Result[bool] {
	return invoke[bool](ctx, d.inv, "isLoggedIn", nil)
}

// Login starts the device-code flow; the success payload is the user code
// for the login link. Completion arrives later as a loggedIn event.
func (d *Dispatcher) Login(ctx context.Context) result.Result[string] {
	return invoke[string](ctx, d.inv, "login", nil)
}

func (d *Dispatcher) Play(ctx context.Context) result.Result[result.Unit] {
	return invokeUnit(ctx, d.inv, "play", nil)
}

func (d *Dispatcher) Pause(ctx context.Context) result.Result[result.Unit] {
	return invokeUnit(ctx, d.inv, "pause", nil)
}

func (d *Dispatcher) Resume(ctx context.Context) result.Result[result.Unit] {
	return invokeUnit(ctx, d.inv, "resume", nil)
}

func (d *Dispatcher) StopTrack(ctx context.Context) result.Result[result.Unit] {
	return invokeUnit(ctx, d.inv, "stopTrack", nil)
}

func (d *Dispatcher) SkipNext(ctx context.Context) result.Result[result.Unit] {
	return invokeUnit(ctx, d.inv, "skipNext", nil)
}

func (d *Dispatcher) SkipPrevious(ctx context.Context) result.Result[result.Unit] {
	return invokeUnit(ctx, d.inv, "skipPrevious", nil)
}

func (d *Dispatcher) QueueTrack(ctx context.Context, trackID string) result.Result[result.Unit] {
	return invokeUnit(ctx, d.inv, "queueTrack", trackArgs{TrackID: trackID})
}

func (d *Dispatcher) PlayTrack(ctx context.Context, trackID string) result.Result[result.Unit] {
	return invokeUnit(ctx, d.inv, "playTrack", trackArgs{TrackID: trackID})
}

func (d *Dispatcher) QueueAlbum(ctx context.Context, albumID string) result.Result[result.Unit] {
	return invokeUnit(ctx, d.inv, "queueAlbum", albumArgs{AlbumID: albumID})
}

func (d *Dispatcher) FavouriteAlbums(ctx context.Context) result.Result[[]proto.FavouriteAlbum] {
	return invoke[[]proto.FavouriteAlbum](ctx, d.inv, "favouriteAlbums", nil)
}

func (d *Dispatcher) AlbumTracks(ctx context.Context, albumID string) result.Result[[]proto.Track] {
	return invoke[[]proto.Track](ctx, d.inv, "albumTracks", albumArgs{AlbumID: albumID})
}

// Lyrics resolves to the lyrics text, or a failure envelope when the
// daemon has none for the track.
func (d *Dispatcher) Lyrics(ctx context.Context, trackID string) result.Result[string] {
	return invoke[string](ctx, d.inv, "lyrics", trackArgs{TrackID: trackID})
}

func (d *Dispatcher) Devices(ctx context.Context) result.Result[[]proto.Device] {
	return invoke[[]proto.Device](ctx, d.inv, "devices", nil)
}

func (d *Dispatcher) SetOutputDevice(ctx context.Context, deviceID string) result.Result[result.Unit] {
	return invokeUnit(ctx, d.inv, "setOutputDevice", deviceArgs{DeviceID: deviceID})
}
