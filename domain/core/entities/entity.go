package entities

import (
	"time"

	"observador-backend/domain/core/valueobjects"
)

// Entity is implemented by every record kind that becomes a graph node.
// The set is closed: Project, Relationship, Intention and Manifestation.
type Entity interface {
	Kind() valueobjects.NodeType
	GetID() string
	GetUserID() string
	GetCreatedAt() time.Time
	Label() string
	NodeID() valueobjects.NodeID
	Touch(now time.Time)
	isEntity()
}

// Record carries the ownership and bookkeeping fields shared by all entities
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r Record) GetID() string     { return r.ID }
func (r Record) GetUserID() string { return r.UserID }

// GetCreatedAt returns when the record was first saved
func (r Record) GetCreatedAt() time.Time { return r.CreatedAt }

// Touch stamps the record as modified at now, setting CreatedAt on first save
func (r *Record) Touch(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// EnergyExchange describes the felt direction of energy in a relationship
type EnergyExchange string

const (
	EnergyExchangePositive EnergyExchange = "POSITIVE"
	EnergyExchangeNeutral  EnergyExchange = "NEUTRAL"
	EnergyExchangeNegative EnergyExchange = "NEGATIVE"
)

// IsValid reports whether e is a known exchange value
func (e EnergyExchange) IsValid() bool {
	switch e {
	case EnergyExchangePositive, EnergyExchangeNeutral, EnergyExchangeNegative:
		return true
	}
	return false
}

// Project is a personal undertaking the user invests energy in
type Project struct {
	Record
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Status         string   `json:"status,omitempty"`
	Progress       *float64 `json:"progress,omitempty"`       // 0-100
	Satisfaction   *float64 `json:"satisfaction,omitempty"`   // 0-10
	EnergyInvested *float64 `json:"energyInvested,omitempty"` // 0-10
	ImpactLevel    *float64 `json:"impactLevel,omitempty"`    // 0-10
	RelatedPeople  []string `json:"relatedPeople,omitempty"`  // relationship ids
}

func (p *Project) Kind() valueobjects.NodeType { return valueobjects.NodeTypeProject }
func (p *Project) Label() string               { return p.Name }
func (p *Project) NodeID() valueobjects.NodeID {
	return valueobjects.NewNodeID(valueobjects.NodeTypeProject, p.ID)
}
func (p *Project) isEntity() {}

// Relationship is a person in the user's life
type Relationship struct {
	Record
	Name              string         `json:"name"`
	RelationType      string         `json:"relationType,omitempty"`
	ConnectionQuality *float64       `json:"connectionQuality,omitempty"` // 0-10
	Importance        *float64       `json:"importance,omitempty"`        // 0-10
	EnergyExchange    EnergyExchange `json:"energyExchange,omitempty"`
}

func (r *Relationship) Kind() valueobjects.NodeType { return valueobjects.NodeTypeRelationship }
func (r *Relationship) Label() string               { return r.Name }
func (r *Relationship) NodeID() valueobjects.NodeID {
	return valueobjects.NewNodeID(valueobjects.NodeTypeRelationship, r.ID)
}
func (r *Relationship) isEntity() {}

// Intention is a recurring commitment tracked by streaks
type Intention struct {
	Record
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	CurrentStreak      *int   `json:"currentStreak,omitempty"`
	LongestStreak      *int   `json:"longestStreak,omitempty"`
	TotalFulfilledDays *int   `json:"totalFulfilledDays,omitempty"`
	TotalExpectedDays  *int   `json:"totalExpectedDays,omitempty"`
	RelatedProjectID   string `json:"relatedProjectId,omitempty"`
}

func (i *Intention) Kind() valueobjects.NodeType { return valueobjects.NodeTypeIntention }
func (i *Intention) Label() string               { return i.Title }
func (i *Intention) NodeID() valueobjects.NodeID {
	return valueobjects.NewNodeID(valueobjects.NodeTypeIntention, i.ID)
}
func (i *Intention) isEntity() {}

// Manifestation is a desired outcome moving through stages
type Manifestation struct {
	Record
	Title              string   `json:"title"`
	Description        string   `json:"description,omitempty"`
	ManifestationStage *float64 `json:"manifestationStage,omitempty"` // 0-100
	EnergyRequired     *float64 `json:"energyRequired,omitempty"`     // 0-10
	AlignmentScore     *float64 `json:"alignmentScore,omitempty"`     // 0-100
	RelatedProjectID   string   `json:"relatedProjectId,omitempty"`
}

func (m *Manifestation) Kind() valueobjects.NodeType { return valueobjects.NodeTypeManifestation }
func (m *Manifestation) Label() string               { return m.Title }
func (m *Manifestation) NodeID() valueobjects.NodeID {
	return valueobjects.NewNodeID(valueobjects.NodeTypeManifestation, m.ID)
}
func (m *Manifestation) isEntity() {}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }
