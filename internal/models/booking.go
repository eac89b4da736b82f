package models

import (
	"time"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// DisplayFrequency controls how often a booked ad is shown during its window.
type DisplayFrequency string

const (
	FrequencyLow      DisplayFrequency = "low"
	FrequencyStandard DisplayFrequency = "standard"
	FrequencyHigh     DisplayFrequency = "high"
	FrequencyPremium  DisplayFrequency = "premium"
)

// IsValid reports whether the frequency is one of the accepted values.
func (f DisplayFrequency) IsValid() bool {
	switch f {
	case FrequencyLow, FrequencyStandard, FrequencyHigh, FrequencyPremium:
		return true
	}
	return false
}

// BookingStatus is the advertiser-side approval state of a booking.
// The only transitions are pending -> confirmed and pending -> rejected;
// both are terminal.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusRejected  BookingStatus = "rejected"
)

// Payment is the gateway confirmation embedded in a booking. It is owned
// exclusively by the booking and is not independently addressable.
type Payment struct {
	OrderID     string    `bson:"order_id" json:"orderId"`
	PaymentID   string    `bson:"payment_id" json:"paymentId"`
	Signature   string    `bson:"signature" json:"signature"`
	Amount      float64   `bson:"amount" json:"amount"`
	Currency    string    `bson:"currency" json:"currency"`
	PaymentDate time.Time `bson:"payment_date" json:"paymentDate"`
}

// Booking reserves an Ad for a time window on behalf of a viewer.
type Booking struct {
	Base                `bson:",inline"`
	ClientID            utils.SixID      `bson:"client_id" json:"clientId"`
	AdID                utils.SixID      `bson:"ad_id" json:"adId"`
	StartTime           time.Time        `bson:"start_time" json:"startTime"`
	EndTime             time.Time        `bson:"end_time" json:"endTime"`
	DisplayFrequency    DisplayFrequency `bson:"display_frequency" json:"displayFrequency"`
	SpecialPlacement    string           `bson:"special_placement,omitempty" json:"specialPlacement,omitempty"`
	ContactPerson       string           `bson:"contact_person,omitempty" json:"contactPerson,omitempty"`
	SpecialInstructions string           `bson:"special_instructions,omitempty" json:"specialInstructions,omitempty"`
	AnalyticsRequired   bool             `bson:"analytics_required" json:"analyticsRequired"`
	Status              BookingStatus    `bson:"status" json:"status"`
	Payment             Payment          `bson:"payment" json:"payment"`
	CreatedAt           time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time        `bson:"updated_at" json:"updated_at"`
}

// BookingView is a booking joined with its reduced ad and client projections.
type BookingView struct {
	Booking `bson:",inline"`
	Ad      *AdSummary     `bson:"-" json:"ad,omitempty"`
	Client  *ClientSummary `bson:"-" json:"client,omitempty"`
}

// PaymentIntentStatus tracks the two-phase reservation flow: an intent is
// recorded when the gateway order is created, promoted to verified on a valid
// signature, and consumed when a booking is persisted against it. Intents that
// never reach consumed are expired by the reconciliation sweep.
type PaymentIntentStatus string

const (
	IntentCreated  PaymentIntentStatus = "created"
	IntentVerified PaymentIntentStatus = "verified"
	IntentConsumed PaymentIntentStatus = "consumed"
	IntentExpired  PaymentIntentStatus = "expired"
)

// PaymentIntent is the durable record of a gateway order awaiting its booking.
type PaymentIntent struct {
	Base       `bson:",inline"`
	OrderID    string              `bson:"order_id" json:"orderId"` // Unique index
	UserID     utils.SixID         `bson:"user_id" json:"userId"`
	Amount     int64               `bson:"amount" json:"amount"` // Minor currency units, as sent to the gateway
	Currency   string              `bson:"currency" json:"currency"`
	Receipt    string              `bson:"receipt,omitempty" json:"receipt,omitempty"`
	Status     PaymentIntentStatus `bson:"status" json:"status"`
	PaymentID  string              `bson:"payment_id,omitempty" json:"paymentId,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	VerifiedAt *time.Time          `bson:"verified_at,omitempty" json:"verified_at,omitempty"`
}
