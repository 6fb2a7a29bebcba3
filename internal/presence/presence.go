// Package presence tracks which users currently hold a live real-time
// connection and which connection handle routes to each of them.
package presence

import "context"

// Directory maps user ids to connection handles and back. A user has at most
// one live route; registering again replaces it.
type Directory interface {
	// Register routes userID to connID and returns the handle it replaced, if any.
	Register(ctx context.Context, userID, connID string) (evicted string, err error)
	Lookup(ctx context.Context, userID string) (connID string, ok bool, err error)
	// Unregister drops connID. The user entry is removed only while it still
	// points at connID, so a replaced connection closing late is harmless.
	Unregister(ctx context.Context, connID string) (userID string, ok bool, err error)
	// ListActive returns the sorted ids of every present user.
	ListActive(ctx context.Context) ([]string, error)
	// Reset clears all entries. Presence never survives a restart.
	Reset(ctx context.Context) error
}
