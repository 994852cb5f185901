package core

// EntityID identifies a scene entity. IDs are dense indices into the scene table.
type EntityID int

// InvalidEntity is never assigned to an entity
const InvalidEntity EntityID = -1
