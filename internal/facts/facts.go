package facts

import "context"

// Generator produces a short fun fact about a track. Implementations may be
// unconfigured, in which case Enabled reports false and callers fall back to
// a plain now-playing line.
type Generator interface {
	Enabled() bool
	TrackFact(ctx context.Context, track, artist string) (string, error)
}
