package commands

import (
	"observador-backend/domain/core/entities"
	"observador-backend/pkg/utils"
)

// EntityCommand is satisfied by the four save commands; one handler serves them all
type EntityCommand interface {
	Validate() error
	GetUserID() string
	ToEntity() entities.Entity
}

// SaveProjectCommand creates or replaces a project
type SaveProjectCommand struct {
	ProjectID      string   `json:"id" validate:"required"`
	UserID         string   `json:"userId" validate:"required"`
	Name           string   `json:"name" validate:"required,max=200"`
	Description    string   `json:"description" validate:"max=5000"`
	Status         string   `json:"status" validate:"omitempty,oneof=active paused completed archived"`
	Progress       *float64 `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Satisfaction   *float64 `json:"satisfaction" validate:"omitempty,gte=0,lte=10"`
	EnergyInvested *float64 `json:"energyInvested" validate:"omitempty,gte=0,lte=10"`
	ImpactLevel    *float64 `json:"impactLevel" validate:"omitempty,gte=0,lte=10"`
	RelatedPeople  []string `json:"relatedPeople" validate:"max=50,dive,required"`
}

func (c SaveProjectCommand) Validate() error   { return utils.ValidateStruct(c) }
func (c SaveProjectCommand) GetUserID() string { return c.UserID }

func (c SaveProjectCommand) ToEntity() entities.Entity {
	return &entities.Project{
		Record:         entities.Record{ID: c.ProjectID, UserID: c.UserID},
		Name:           c.Name,
		Description:    c.Description,
		Status:         c.Status,
		Progress:       c.Progress,
		Satisfaction:   c.Satisfaction,
		EnergyInvested: c.EnergyInvested,
		ImpactLevel:    c.ImpactLevel,
		RelatedPeople:  c.RelatedPeople,
	}
}

// SaveRelationshipCommand creates or replaces a relationship
type SaveRelationshipCommand struct {
	RelationshipID    string   `json:"id" validate:"required"`
	UserID            string   `json:"userId" validate:"required"`
	Name              string   `json:"name" validate:"required,max=200"`
	RelationType      string   `json:"relationType" validate:"max=50"`
	ConnectionQuality *float64 `json:"connectionQuality" validate:"omitempty,gte=0,lte=10"`
	Importance        *float64 `json:"importance" validate:"omitempty,gte=0,lte=10"`
	EnergyExchange    string   `json:"energyExchange" validate:"omitempty,oneof=POSITIVE NEUTRAL NEGATIVE"`
}

func (c SaveRelationshipCommand) Validate() error   { return utils.ValidateStruct(c) }
func (c SaveRelationshipCommand) GetUserID() string { return c.UserID }

func (c SaveRelationshipCommand) ToEntity() entities.Entity {
	exchange := entities.EnergyExchange(c.EnergyExchange)
	if exchange == "" {
		exchange = entities.EnergyExchangeNeutral
	}
	return &entities.Relationship{
		Record:            entities.Record{ID: c.RelationshipID, UserID: c.UserID},
		Name:              c.Name,
		RelationType:      c.RelationType,
		ConnectionQuality: c.ConnectionQuality,
		Importance:        c.Importance,
		EnergyExchange:    exchange,
	}
}

// SaveIntentionCommand creates or replaces an intention
type SaveIntentionCommand struct {
	IntentionID        string `json:"id" validate:"required"`
	UserID             string `json:"userId" validate:"required"`
	Title              string `json:"title" validate:"required,max=200"`
	Description        string `json:"description" validate:"max=5000"`
	CurrentStreak      *int   `json:"currentStreak" validate:"omitempty,gte=0"`
	LongestStreak      *int   `json:"longestStreak" validate:"omitempty,gte=0"`
	TotalFulfilledDays *int   `json:"totalFulfilledDays" validate:"omitempty,gte=0"`
	TotalExpectedDays  *int   `json:"totalExpectedDays" validate:"omitempty,gte=0"`
	RelatedProjectID   string `json:"relatedProjectId"`
}

func (c SaveIntentionCommand) Validate() error   { return utils.ValidateStruct(c) }
func (c SaveIntentionCommand) GetUserID() string { return c.UserID }

func (c SaveIntentionCommand) ToEntity() entities.Entity {
	return &entities.Intention{
		Record:             entities.Record{ID: c.IntentionID, UserID: c.UserID},
		Title:              c.Title,
		Description:        c.Description,
		CurrentStreak:      c.CurrentStreak,
		LongestStreak:      c.LongestStreak,
		TotalFulfilledDays: c.TotalFulfilledDays,
		TotalExpectedDays:  c.TotalExpectedDays,
		RelatedProjectID:   c.RelatedProjectID,
	}
}

// SaveManifestationCommand creates or replaces a manifestation
type SaveManifestationCommand struct {
	ManifestationID    string   `json:"id" validate:"required"`
	UserID             string   `json:"userId" validate:"required"`
	Title              string   `json:"title" validate:"required,max=200"`
	Description        string   `json:"description" validate:"max=5000"`
	ManifestationStage *float64 `json:"manifestationStage" validate:"omitempty,gte=0,lte=100"`
	EnergyRequired     *float64 `json:"energyRequired" validate:"omitempty,gte=0,lte=10"`
	AlignmentScore     *float64 `json:"alignmentScore" validate:"omitempty,gte=0,lte=100"`
	RelatedProjectID   string   `json:"relatedProjectId"`
}

func (c SaveManifestationCommand) Validate() error   { return utils.ValidateStruct(c) }
func (c SaveManifestationCommand) GetUserID() string { return c.UserID }

func (c SaveManifestationCommand) ToEntity() entities.Entity {
	return &entities.Manifestation{
		Record:             entities.Record{ID: c.ManifestationID, UserID: c.UserID},
		Title:              c.Title,
		Description:        c.Description,
		ManifestationStage: c.ManifestationStage,
		EnergyRequired:     c.EnergyRequired,
		AlignmentScore:     c.AlignmentScore,
		RelatedProjectID:   c.RelatedProjectID,
	}
}
