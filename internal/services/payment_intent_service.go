package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/db"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// ErrIntentNotUsable is returned when a booking references an order whose
// intent is missing, unverified, already consumed, or expired.
var ErrIntentNotUsable = errors.New("payment for this order has not been verified")

// IPaymentIntentService tracks gateway orders through their lifecycle:
// created on order creation, verified on a valid gateway signature, consumed
// when a booking is persisted against them. Stale intents are expired by the
// background sweep.
type IPaymentIntentService interface {
	Create(ctx context.Context, userID utils.SixID, orderID string, amount int64, currency, receipt string) (*models.PaymentIntent, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.PaymentIntent, error)
	MarkVerified(ctx context.Context, orderID, paymentID string) (*models.PaymentIntent, error)
	Consume(ctx context.Context, orderID string, userID utils.SixID) (*models.PaymentIntent, error)
	ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

const paymentIntentsCollection = "payment_intents"

type paymentIntentService struct {
	db *mongo.Database
}

// NewPaymentIntentService creates a new PaymentIntentService.
func NewPaymentIntentService(database *mongo.Database) IPaymentIntentService {
	return &paymentIntentService{db: database}
}

// Create records a freshly created gateway order in status created.
func (s *paymentIntentService) Create(ctx context.Context, userID utils.SixID, orderID string, amount int64, currency, receipt string) (*models.PaymentIntent, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order id is required")
	}
	intent := &models.PaymentIntent{
		OrderID:   orderID,
		UserID:    userID,
		Amount:    amount,
		Currency:  currency,
		Receipt:   receipt,
		Status:    models.IntentCreated,
		CreatedAt: time.Now().UTC(),
	}
	err := db.Try(func() error {
		intent.GenID()
		_, insertErr := s.db.Collection(paymentIntentsCollection).InsertOne(ctx, intent)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record payment intent for order %s: %w", orderID, err)
	}
	return intent, nil
}

// FindByOrderID returns the intent for a gateway order or mongo.ErrNoDocuments.
func (s *paymentIntentService) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := s.db.Collection(paymentIntentsCollection).FindOne(ctx, bson.M{"order_id": orderID}).Decode(&intent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding payment intent for order %s: %w", orderID, err)
	}
	return &intent, nil
}

// MarkVerified promotes a created intent to verified after the gateway
// signature has checked out. The transition is a single conditional update so
// replayed verifications of the same order cannot race each other.
func (s *paymentIntentService) MarkVerified(ctx context.Context, orderID, paymentID string) (*models.PaymentIntent, error) {
	now := time.Now().UTC()
	result, err := s.db.Collection(paymentIntentsCollection).UpdateOne(ctx,
		bson.M{"order_id": orderID, "status": models.IntentCreated},
		bson.M{"$set": bson.M{
			"status":      models.IntentVerified,
			"payment_id":  paymentID,
			"verified_at": now,
		}})
	if err != nil {
		return nil, fmt.Errorf("failed to mark intent verified for order %s: %w", orderID, err)
	}
	if result.MatchedCount == 0 {
		// Either the order was never created here, or it already moved on
		intent, findErr := s.FindByOrderID(ctx, orderID)
		if findErr != nil {
			return nil, findErr
		}
		if intent.Status == models.IntentVerified && intent.PaymentID == paymentID {
			// Idempotent replay of the same verification
			return intent, nil
		}
		return nil, ErrIntentNotUsable
	}
	return s.FindByOrderID(ctx, orderID)
}

// Consume atomically claims a verified intent for a booking. Only the user who
// created the order may consume it, and each intent can be consumed once.
func (s *paymentIntentService) Consume(ctx context.Context, orderID string, userID utils.SixID) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := s.db.Collection(paymentIntentsCollection).FindOneAndUpdate(ctx,
		bson.M{"order_id": orderID, "user_id": userID, "status": models.IntentVerified},
		bson.M{"$set": bson.M{"status": models.IntentConsumed}}).
		Decode(&intent)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrIntentNotUsable
		}
		return nil, fmt.Errorf("failed to consume payment intent for order %s: %w", orderID, err)
	}
	intent.Status = models.IntentConsumed
	return &intent, nil
}

// ExpireStale marks created and verified intents older than the TTL as
// expired. Returns how many were swept.
func (s *paymentIntentService) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := s.db.Collection(paymentIntentsCollection).UpdateMany(ctx,
		bson.M{
			"status":     bson.M{"$in": []models.PaymentIntentStatus{models.IntentCreated, models.IntentVerified}},
			"created_at": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{"status": models.IntentExpired}})
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale payment intents: %w", err)
	}
	return result.ModifiedCount, nil
}
