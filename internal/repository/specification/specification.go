package specification

import "gorm.io/gorm"

// Specification narrows a query. The gorm implementations apply it
// directly; the in-memory repositories interpret the concrete types.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
