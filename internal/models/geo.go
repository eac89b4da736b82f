package models

import (
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// State, City and Area form the geography reference hierarchy. They are seeded
// once and effectively immutable afterwards; all reads return them sorted by name.

// State is a top-level geography record.
type State struct {
	Base `bson:",inline"`
	Name string `bson:"name" json:"name"`
}

// City belongs to a State.
type City struct {
	Base    `bson:",inline"`
	Name    string      `bson:"name" json:"name"`
	StateID utils.SixID `bson:"state_id" json:"stateId"`
}

// Area is the finest geography granularity, belonging to a City.
type Area struct {
	Base    `bson:",inline"`
	Name    string      `bson:"name" json:"name"`
	CityID  utils.SixID `bson:"city_id" json:"cityId"`
	StateID utils.SixID `bson:"state_id" json:"stateId"`
	PinCode string      `bson:"pin_code,omitempty" json:"pinCode,omitempty"`
}
