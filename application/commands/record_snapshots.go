package commands

import (
	"errors"

	"observador-backend/domain/core/valueobjects"
)

// RecordSnapshotsCommand runs the snapshot decision over a user's graph.
// NodeID narrows the sweep to one node when set.
type RecordSnapshotsCommand struct {
	UserID string
	NodeID string
}

func (c RecordSnapshotsCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("userId is required")
	}
	if c.NodeID != "" {
		if _, err := valueobjects.ParseNodeID(c.NodeID); err != nil {
			return err
		}
	}
	return nil
}

func (c RecordSnapshotsCommand) GetUserID() string { return c.UserID }
