package valueobjects

import (
	"errors"
	"strings"
)

// NodeType tags which kind of record a graph node was derived from
type NodeType string

const (
	NodeTypeSelf          NodeType = "self"
	NodeTypeProject       NodeType = "project"
	NodeTypeRelationship  NodeType = "relationship"
	NodeTypeIntention     NodeType = "intention"
	NodeTypeManifestation NodeType = "manifestation"
)

// EntityTypes lists the entity kinds in ring order, innermost first
var EntityTypes = []NodeType{
	NodeTypeProject,
	NodeTypeRelationship,
	NodeTypeIntention,
	NodeTypeManifestation,
}

// IsValid reports whether t is a known node type
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeSelf, NodeTypeProject, NodeTypeRelationship, NodeTypeIntention, NodeTypeManifestation:
		return true
	}
	return false
}

// NodeID is a value object of the form {type}_{entityId}
type NodeID struct {
	nodeType NodeType
	entityID string
}

// NewNodeID builds the composite id for an entity of the given type
func NewNodeID(nodeType NodeType, entityID string) NodeID {
	return NodeID{nodeType: nodeType, entityID: entityID}
}

// ParseNodeID splits a composite id back into its type and entity id
func ParseNodeID(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	prefix, entityID, ok := strings.Cut(id, "_")
	if !ok || entityID == "" {
		return NodeID{}, errors.New("node ID must have the form type_entityId")
	}
	nodeType := NodeType(prefix)
	if !nodeType.IsValid() {
		return NodeID{}, errors.New("node ID has an unknown type prefix: " + prefix)
	}
	return NodeID{nodeType: nodeType, entityID: entityID}, nil
}

// Type returns the node type
func (id NodeID) Type() NodeType {
	return id.nodeType
}

// EntityID returns the id of the underlying record
func (id NodeID) EntityID() string {
	return id.entityID
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	if id.IsZero() {
		return ""
	}
	return string(id.nodeType) + "_" + id.entityID
}

// Equal checks if two NodeIDs are equal
func (id NodeID) Equal(other NodeID) bool {
	return id.nodeType == other.nodeType && id.entityID == other.entityID
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.entityID == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("NodeID must be a string")
	}
	parsed, err := ParseNodeID(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
