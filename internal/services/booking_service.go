package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/cache"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/db"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// ErrSlotTaken is returned when the requested window overlaps an existing
// pending or confirmed booking for the same ad.
var ErrSlotTaken = errors.New("the requested time window overlaps an existing booking for this ad")

// ErrInvalidStatus is returned when a status update names anything other than
// confirmed or rejected.
var ErrInvalidStatus = errors.New("status must be one of: confirmed, rejected")

// ErrAlreadyDecided is returned when a confirm/reject targets a booking that
// has left the pending state. Decisions are terminal.
var ErrAlreadyDecided = errors.New("booking has already been decided")

// BookingInput carries the viewer-supplied fields of a booking request.
type BookingInput struct {
	StartTime           time.Time
	EndTime             time.Time
	DisplayFrequency    models.DisplayFrequency
	SpecialPlacement    string
	ContactPerson       string
	SpecialInstructions string
	AnalyticsRequired   bool
	Payment             models.Payment
}

// INotifier delivers booking decision notifications out of band. Implemented
// by the background task client; a nil notifier disables notifications.
type INotifier interface {
	NotifyBookingDecision(ctx context.Context, booking *models.Booking) error
}

// IBookingService defines the interface for the booking reservation flow.
type IBookingService interface {
	Create(ctx context.Context, clientID, adID utils.SixID, input BookingInput) (*models.Booking, error)
	GetAll(ctx context.Context) ([]models.BookingView, error)
	GetByClient(ctx context.Context, clientID utils.SixID) ([]models.BookingView, error)
	FindByID(ctx context.Context, bookingID utils.SixID) (*models.Booking, error)
	UpdateStatus(ctx context.Context, bookingID, advertiserID utils.SixID, status models.BookingStatus) (*models.Booking, error)
}

const bookingsCollection = "bookings"

type bookingService struct {
	db       *mongo.Database
	ads      IAdService
	users    IUserService
	intents  IPaymentIntentService
	lock     *cache.AdLock
	notifier INotifier
}

// NewBookingService creates a new BookingService. The lock serializes
// concurrent booking creation per ad; notifier may be nil.
func NewBookingService(database *mongo.Database, ads IAdService, users IUserService, intents IPaymentIntentService, lock *cache.AdLock, notifier INotifier) IBookingService {
	return &bookingService{
		db:       database,
		ads:      ads,
		users:    users,
		intents:  intents,
		lock:     lock,
		notifier: notifier,
	}
}

// Create reserves an ad for a time window. The booking starts in status
// pending regardless of what the caller sent. Every booking must reference a
// gateway order whose intent is already verified; the intent is consumed here
// so the same payment cannot back two bookings.
func (s *bookingService) Create(ctx context.Context, clientID, adID utils.SixID, input BookingInput) (*models.Booking, error) {
	if input.StartTime.IsZero() || input.EndTime.IsZero() {
		return nil, &ErrValidation{Msg: "startTime and endTime are required"}
	}
	if !input.StartTime.Before(input.EndTime) {
		return nil, &ErrValidation{Msg: "startTime must be before endTime"}
	}
	if input.StartTime.Before(time.Now()) {
		return nil, &ErrValidation{Msg: "startTime must not be in the past"}
	}
	if input.DisplayFrequency == "" {
		input.DisplayFrequency = models.FrequencyStandard
	}
	if !input.DisplayFrequency.IsValid() {
		return nil, &ErrValidation{Msg: "invalid displayFrequency"}
	}

	// The ad must exist before anything is reserved against it
	if _, err := s.ads.FindByID(ctx, adID); err != nil {
		return nil, err
	}

	payment := input.Payment
	if payment.OrderID == "" {
		return nil, &ErrValidation{Msg: "payment.orderId is required"}
	}
	if payment.Currency == "" {
		payment.Currency = "INR"
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}
	// Check the intent before taking the lock; a request that is going to be
	// refused must not consume the payment.
	intent, err := s.intents.FindByOrderID(ctx, payment.OrderID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrIntentNotUsable
		}
		return nil, err
	}
	if intent.UserID != clientID || intent.Status != models.IntentVerified {
		return nil, ErrIntentNotUsable
	}

	// Overlap check and insert must act as one unit per ad
	if s.lock != nil {
		token, lockErr := s.lock.Acquire(ctx, adID.String())
		if lockErr != nil {
			return nil, lockErr
		}
		defer s.lock.Release(ctx, adID.String(), token)
	}

	overlapping, err := s.db.Collection(bookingsCollection).CountDocuments(ctx, bson.M{
		"ad_id":      adID,
		"status":     bson.M{"$in": []models.BookingStatus{models.StatusPending, models.StatusConfirmed}},
		"start_time": bson.M{"$lt": input.EndTime},
		"end_time":   bson.M{"$gt": input.StartTime},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check booking overlap for ad %s: %w", adID.String(), err)
	}
	if overlapping > 0 {
		return nil, ErrSlotTaken
	}

	// Claim the intent only once the slot is known to be free
	intent, err = s.intents.Consume(ctx, payment.OrderID, clientID)
	if err != nil {
		return nil, err
	}
	if payment.PaymentID == "" {
		payment.PaymentID = intent.PaymentID
	}

	now := time.Now().UTC()
	booking := &models.Booking{
		ClientID:            clientID,
		AdID:                adID,
		StartTime:           input.StartTime,
		EndTime:             input.EndTime,
		DisplayFrequency:    input.DisplayFrequency,
		SpecialPlacement:    input.SpecialPlacement,
		ContactPerson:       input.ContactPerson,
		SpecialInstructions: input.SpecialInstructions,
		AnalyticsRequired:   input.AnalyticsRequired,
		Status:              models.StatusPending,
		Payment:             payment,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	err = db.Try(func() error {
		booking.GenID()
		_, insertErr := s.db.Collection(bookingsCollection).InsertOne(ctx, booking)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking for ad %s: %w", adID.String(), err)
	}
	return booking, nil
}

var bookingsNewestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

func (s *bookingService) list(ctx context.Context, filter bson.M) ([]models.BookingView, error) {
	cursor, err := s.db.Collection(bookingsCollection).Find(ctx, filter, bookingsNewestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	views := make([]models.BookingView, 0, len(bookings))
	for i := range bookings {
		views = append(views, models.BookingView{
			Booking: bookings[i],
			Ad:      s.ads.Summary(ctx, bookings[i].AdID),
			Client:  s.clientSummary(ctx, bookings[i].ClientID),
		})
	}
	return views, nil
}

// clientSummary resolves the reduced client projection; a deleted account
// degrades to nil rather than failing the listing.
func (s *bookingService) clientSummary(ctx context.Context, clientID utils.SixID) *models.ClientSummary {
	user, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		return nil
	}
	return &models.ClientSummary{
		ID:        user.ID.String(),
		FirstName: user.FirstName,
		Email:     user.Email,
	}
}

// GetAll returns every booking with ad and client projections, newest first.
func (s *bookingService) GetAll(ctx context.Context) ([]models.BookingView, error) {
	return s.list(ctx, bson.M{})
}

// GetByClient returns one viewer's bookings, newest first.
func (s *bookingService) GetByClient(ctx context.Context, clientID utils.SixID) ([]models.BookingView, error) {
	return s.list(ctx, bson.M{"client_id": clientID})
}

// FindByID returns a booking by id or mongo.ErrNoDocuments.
func (s *bookingService) FindByID(ctx context.Context, bookingID utils.SixID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Collection(bookingsCollection).FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding booking %s: %w", bookingID.String(), err)
	}
	return &booking, nil
}

// UpdateStatus moves a pending booking to confirmed or rejected. Only the
// advertiser who owns the booked ad may decide, and decided bookings stay
// decided. The viewer is notified of the decision out of band.
func (s *bookingService) UpdateStatus(ctx context.Context, bookingID, advertiserID utils.SixID, status models.BookingStatus) (*models.Booking, error) {
	if status != models.StatusConfirmed && status != models.StatusRejected {
		return nil, ErrInvalidStatus
	}

	booking, err := s.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	ad, err := s.ads.FindByID(ctx, booking.AdID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// The booked ad is gone, so ownership cannot be established
			return nil, ErrNotOwner
		}
		return nil, err
	}
	if ad.AdvertiserID != advertiserID {
		return nil, ErrNotOwner
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Booking
	err = s.db.Collection(bookingsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": bookingID, "status": models.StatusPending},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if booking.Status != models.StatusPending {
				return nil, fmt.Errorf("booking %s was already %s: %w", bookingID.String(), booking.Status, ErrAlreadyDecided)
			}
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to update status of booking %s: %w", bookingID.String(), err)
	}

	if s.notifier != nil {
		if notifyErr := s.notifier.NotifyBookingDecision(ctx, &updated); notifyErr != nil {
			// The decision stands even when the notification cannot be queued
			log.Printf("failed to enqueue booking decision notification for %s: %v", bookingID.String(), notifyErr)
		}
	}
	return &updated, nil
}
