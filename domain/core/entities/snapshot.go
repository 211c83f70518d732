package entities

import (
	"time"

	"observador-backend/domain/core/valueobjects"
)

// Snapshot trigger reasons
const (
	TriggerInitial           = "initial"
	TriggerEnergyChange      = "energy_change"
	TriggerCoherenceChange   = "coherence_change"
	TriggerConnectionsChange = "connections_change"
)

// Snapshot is an append-only record of a node's state at a point in time
type Snapshot struct {
	ID            string                `json:"id"`
	UserID        string                `json:"userId"`
	NodeID        string                `json:"nodeId"`
	NodeType      valueobjects.NodeType `json:"nodeType"`
	NodeLabel     string                `json:"nodeLabel"`
	Energy        float64               `json:"energy"`
	Coherence     float64               `json:"coherence"`
	Connections   int                   `json:"connections"`
	CreatedAt     time.Time             `json:"createdAt"`
	TriggerReason string                `json:"triggerReason"`
}

// UserProgress holds the streak counters written back after each entry
type UserProgress struct {
	UserID        string    `json:"userId"`
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
	TotalEntries  int       `json:"totalEntries"`
	LastEntryDate time.Time `json:"lastEntryDate"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
