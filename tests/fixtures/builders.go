// Package fixtures builds domain records with sensible defaults for tests
package fixtures

import (
	"time"

	"observador-backend/domain/core/entities"

	"github.com/google/uuid"
)

// TestUserID owns every record built here unless overridden
const TestUserID = "test-user-123"

// FixedNow is the reference clock for tests that depend on the current day
var FixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func record(userID string) entities.Record {
	return entities.Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: FixedNow,
		UpdatedAt: FixedNow,
	}
}

// ProjectBuilder helps create test projects
type ProjectBuilder struct {
	project entities.Project
}

func NewProjectBuilder() *ProjectBuilder {
	return &ProjectBuilder{project: entities.Project{
		Record:         record(TestUserID),
		Name:           "Test Project",
		Status:         "active",
		Progress:       entities.Float(50),
		Satisfaction:   entities.Float(7),
		EnergyInvested: entities.Float(6),
		ImpactLevel:    entities.Float(8),
	}}
}

func (b *ProjectBuilder) WithID(id string) *ProjectBuilder {
	b.project.ID = id
	return b
}

func (b *ProjectBuilder) WithName(name string) *ProjectBuilder {
	b.project.Name = name
	return b
}

func (b *ProjectBuilder) WithScores(progress, satisfaction, energy, impact float64) *ProjectBuilder {
	b.project.Progress = entities.Float(progress)
	b.project.Satisfaction = entities.Float(satisfaction)
	b.project.EnergyInvested = entities.Float(energy)
	b.project.ImpactLevel = entities.Float(impact)
	return b
}

func (b *ProjectBuilder) WithRelatedPeople(ids ...string) *ProjectBuilder {
	b.project.RelatedPeople = ids
	return b
}

func (b *ProjectBuilder) Build() *entities.Project {
	p := b.project
	return &p
}

// RelationshipBuilder helps create test relationships
type RelationshipBuilder struct {
	relationship entities.Relationship
}

func NewRelationshipBuilder() *RelationshipBuilder {
	return &RelationshipBuilder{relationship: entities.Relationship{
		Record:            record(TestUserID),
		Name:              "Test Person",
		RelationType:      "friend",
		ConnectionQuality: entities.Float(8),
		Importance:        entities.Float(9),
		EnergyExchange:    entities.EnergyExchangePositive,
	}}
}

func (b *RelationshipBuilder) WithID(id string) *RelationshipBuilder {
	b.relationship.ID = id
	return b
}

func (b *RelationshipBuilder) WithScores(quality, importance float64, exchange entities.EnergyExchange) *RelationshipBuilder {
	b.relationship.ConnectionQuality = entities.Float(quality)
	b.relationship.Importance = entities.Float(importance)
	b.relationship.EnergyExchange = exchange
	return b
}

func (b *RelationshipBuilder) Build() *entities.Relationship {
	r := b.relationship
	return &r
}

// IntentionBuilder helps create test intentions
type IntentionBuilder struct {
	intention entities.Intention
}

func NewIntentionBuilder() *IntentionBuilder {
	return &IntentionBuilder{intention: entities.Intention{
		Record:             record(TestUserID),
		Title:              "Meditate daily",
		CurrentStreak:      entities.Int(5),
		LongestStreak:      entities.Int(10),
		TotalFulfilledDays: entities.Int(20),
		TotalExpectedDays:  entities.Int(30),
	}}
}

func (b *IntentionBuilder) WithID(id string) *IntentionBuilder {
	b.intention.ID = id
	return b
}

func (b *IntentionBuilder) WithProject(projectID string) *IntentionBuilder {
	b.intention.RelatedProjectID = projectID
	return b
}

func (b *IntentionBuilder) Build() *entities.Intention {
	i := b.intention
	return &i
}

// ManifestationBuilder helps create test manifestations
type ManifestationBuilder struct {
	manifestation entities.Manifestation
}

func NewManifestationBuilder() *ManifestationBuilder {
	return &ManifestationBuilder{manifestation: entities.Manifestation{
		Record:             record(TestUserID),
		Title:              "New studio",
		ManifestationStage: entities.Float(40),
		EnergyRequired:     entities.Float(6),
		AlignmentScore:     entities.Float(70),
	}}
}

func (b *ManifestationBuilder) WithID(id string) *ManifestationBuilder {
	b.manifestation.ID = id
	return b
}

func (b *ManifestationBuilder) WithProject(projectID string) *ManifestationBuilder {
	b.manifestation.RelatedProjectID = projectID
	return b
}

func (b *ManifestationBuilder) Build() *entities.Manifestation {
	m := b.manifestation
	return &m
}

// DailyEntryBuilder helps create test daily entries
type DailyEntryBuilder struct {
	entry entities.DailyEntry
}

func NewDailyEntryBuilder() *DailyEntryBuilder {
	return &DailyEntryBuilder{entry: entities.DailyEntry{
		ID:             uuid.NewString(),
		UserID:         TestUserID,
		Date:           entities.Day(FixedNow),
		EmotionalState: entities.Float(7),
		EnergyLevel:    entities.Float(6),
		Emotions:       []entities.Emotion{{Type: "calma", Intensity: 6}},
	}}
}

func (b *DailyEntryBuilder) OnDaysAgo(days int) *DailyEntryBuilder {
	b.entry.Date = entities.Day(FixedNow).AddDate(0, 0, -days)
	return b
}

func (b *DailyEntryBuilder) WithLevels(emotional, energy float64) *DailyEntryBuilder {
	b.entry.EmotionalState = entities.Float(emotional)
	b.entry.EnergyLevel = entities.Float(energy)
	return b
}

func (b *DailyEntryBuilder) WithEmotions(types ...string) *DailyEntryBuilder {
	b.entry.Emotions = nil
	for _, t := range types {
		b.entry.Emotions = append(b.entry.Emotions, entities.Emotion{Type: t, Intensity: 5})
	}
	return b
}

func (b *DailyEntryBuilder) WithSynchronicity(text string) *DailyEntryBuilder {
	b.entry.Synchronicities = text
	return b
}

func (b *DailyEntryBuilder) Build() *entities.DailyEntry {
	e := b.entry
	return &e
}
