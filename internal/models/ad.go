package models

import (
	"time"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// Ad represents a sellable unit of advertising inventory listed by an advertiser.
// Geography is reference-based only: StateID and CityID are required on creation,
// AreaID narrows the placement further when the advertiser has that granularity.
type Ad struct {
	Base           `bson:",inline"`
	Title          string       `bson:"title" json:"title"`
	Description    string       `bson:"description" json:"description"`
	TargetAudience []string     `bson:"target_audience" json:"targetAudience"`
	Location       string       `bson:"longitude_latitude,omitempty" json:"longitude_latitude,omitempty"` // Free-text "lng,lat"
	AdType         string       `bson:"ad_type" json:"adType"`
	AdDimensions   string       `bson:"ad_dimensions,omitempty" json:"adDimensions,omitempty"`
	AdDuration     string       `bson:"ad_duration" json:"adDuration"`
	Budget         string       `bson:"budget" json:"budget"`
	ImageKey       string       `bson:"image_key,omitempty" json:"imageKey,omitempty"` // S3 object key of the creative
	StateID        utils.SixID  `bson:"state_id" json:"stateId"`
	CityID         utils.SixID  `bson:"city_id" json:"cityId"`
	AreaID         *utils.SixID `bson:"area_id,omitempty" json:"areaId,omitempty"`
	IsFeatured     bool         `bson:"is_featured" json:"isFeatured"`
	AdvertiserID   utils.SixID  `bson:"advertiser_id" json:"advertiserId"`
	CreatedAt      time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time    `bson:"updated_at" json:"updated_at"`
}

// AdView is an Ad with its geography references resolved to names for API output.
type AdView struct {
	Ad        `bson:",inline"`
	StateName string `bson:"-" json:"stateName,omitempty"`
	CityName  string `bson:"-" json:"cityName,omitempty"`
	AreaName  string `bson:"-" json:"areaName,omitempty"`
}

// AdSummary is the reduced ad projection joined onto booking views.
type AdSummary struct {
	ID          string `bson:"-" json:"id"`
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description" json:"description"`
	Budget      string `bson:"budget" json:"budget"`
	StateName   string `bson:"-" json:"stateName,omitempty"`
	CityName    string `bson:"-" json:"cityName,omitempty"`
}
