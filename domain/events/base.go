package events

import (
	"time"

	"observador-backend/domain/core/valueobjects"
)

// SourceBackend is the EventBridge source for events emitted by this service
const SourceBackend = "observador.backend"

// Event types
const (
	TypeEntitySaved           = "entity.saved"
	TypeDailyEntrySaved       = "daily_entry.saved"
	TypeSnapshotRecorded      = "snapshot.recorded"
	TypeAgentDecisionRecorded = "agent_decision.recorded"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
	GetUserID() string
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
	UserID      string    `json:"user_id"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }
func (e BaseEvent) GetUserID() string       { return e.UserID }

// EntitySaved is raised when a project, relationship, intention or
// manifestation is created or updated
type EntitySaved struct {
	BaseEvent
	NodeID    string                `json:"node_id"`
	NodeType  valueobjects.NodeType `json:"node_type"`
	EntityID  string                `json:"entity_id"`
	Energy    float64               `json:"energy"`
	Coherence float64               `json:"coherence"`
}

// NewEntitySaved creates an EntitySaved event
func NewEntitySaved(userID string, nodeID valueobjects.NodeID, energy, coherence float64, timestamp time.Time) EntitySaved {
	return EntitySaved{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   TypeEntitySaved,
			Timestamp:   timestamp,
			Version:     1,
			UserID:      userID,
		},
		NodeID:    nodeID.String(),
		NodeType:  nodeID.Type(),
		EntityID:  nodeID.EntityID(),
		Energy:    energy,
		Coherence: coherence,
	}
}

// DailyEntrySaved is raised when a daily entry is logged
type DailyEntrySaved struct {
	BaseEvent
	EntryID       string    `json:"entry_id"`
	Date          time.Time `json:"date"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
}

// NewDailyEntrySaved creates a DailyEntrySaved event
func NewDailyEntrySaved(userID, entryID string, date time.Time, current, longest int, timestamp time.Time) DailyEntrySaved {
	return DailyEntrySaved{
		BaseEvent: BaseEvent{
			AggregateID: entryID,
			EventType:   TypeDailyEntrySaved,
			Timestamp:   timestamp,
			Version:     1,
			UserID:      userID,
		},
		EntryID:       entryID,
		Date:          date,
		CurrentStreak: current,
		LongestStreak: longest,
	}
}

// SnapshotRecorded is raised when the trend detector appends a snapshot
type SnapshotRecorded struct {
	BaseEvent
	SnapshotID    string  `json:"snapshot_id"`
	NodeID        string  `json:"node_id"`
	TriggerReason string  `json:"trigger_reason"`
	Energy        float64 `json:"energy"`
	Coherence     float64 `json:"coherence"`
	Connections   int     `json:"connections"`
}

// NewSnapshotRecorded creates a SnapshotRecorded event
func NewSnapshotRecorded(userID, snapshotID, nodeID, reason string, energy, coherence float64, connections int, timestamp time.Time) SnapshotRecorded {
	return SnapshotRecorded{
		BaseEvent: BaseEvent{
			AggregateID: nodeID,
			EventType:   TypeSnapshotRecorded,
			Timestamp:   timestamp,
			Version:     1,
			UserID:      userID,
		},
		SnapshotID:    snapshotID,
		NodeID:        nodeID,
		TriggerReason: reason,
		Energy:        energy,
		Coherence:     coherence,
		Connections:   connections,
	}
}

// AgentDecisionRecorded is raised when the webhook accepts a decision
type AgentDecisionRecorded struct {
	BaseEvent
	DecisionID    string  `json:"decision_id"`
	ProjectID     string  `json:"project_id"`
	DecisionType  string  `json:"decision_type"`
	RevenueImpact float64 `json:"revenue_impact"`
}

// NewAgentDecisionRecorded creates an AgentDecisionRecorded event
func NewAgentDecisionRecorded(userID, projectID, decisionID, decisionType string, revenue float64, timestamp time.Time) AgentDecisionRecorded {
	return AgentDecisionRecorded{
		BaseEvent: BaseEvent{
			AggregateID: projectID,
			EventType:   TypeAgentDecisionRecorded,
			Timestamp:   timestamp,
			Version:     1,
			UserID:      userID,
		},
		DecisionID:    decisionID,
		ProjectID:     projectID,
		DecisionType:  decisionType,
		RevenueImpact: revenue,
	}
}
