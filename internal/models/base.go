package models

import (
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// Base carries the document id shared by every collection. Inserts that go
// through db.Try call GenID to mint a fresh id on each retry attempt.
type Base struct {
	ID utils.SixID `bson:"_id,omitempty" json:"id,omitempty"`
}

// GenID replaces the id with a newly generated one.
func (m *Base) GenID() {
	m.ID = utils.NewSixID()
}

// NewBase returns a Base with an id already assigned.
func NewBase() Base {
	return Base{ID: utils.NewSixID()}
}
