package entity

// Context identifies where an entity was resolved.
type Context struct {
	Network        string `json:"network"`
	EntityTypeName string `json:"entityTypeName"`
}

// Entity is the network-agnostic record produced by a getter.
// Raw holds the canonical intermediate record of the entity type, serialized as JSON,
// and must always be valid input to that entity type's associated-entity deriver.
type Entity struct {
	UniqueIdentifier      string   `json:"uniqueIdentifier"`
	UniqueIdentifierLabel string   `json:"uniqueIdentifierLabel"`
	Metadata              Metadata `json:"metadata"`
	Context               Context  `json:"context"`
	Raw                   string   `json:"raw"`
}

// AssociatedRef points at another entity; it is resolved lazily through the resolver.
type AssociatedRef struct {
	NetworkLabel string `json:"networkLabel"`
	EntityType   string `json:"entityType"`
	FieldName    string `json:"fieldName"`
	FieldValue   string `json:"fieldValue"`
}
