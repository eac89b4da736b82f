package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/db"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// ErrNotOwner is returned when a write targets a record owned by someone else.
var ErrNotOwner = errors.New("record belongs to another account")

// AdInput carries the advertiser-supplied fields of an ad. The same shape
// serves create and update; on update, zero values leave the stored field
// untouched except for AreaID which can be cleared explicitly.
type AdInput struct {
	Title          string
	Description    string
	TargetAudience []string
	Location       string
	AdType         string
	AdDimensions   string
	AdDuration     string
	Budget         string
	ImageKey       string
	StateID        utils.SixID
	CityID         utils.SixID
	AreaID         *utils.SixID
	IsFeatured     bool
}

// IAdService defines the interface for ad inventory operations.
type IAdService interface {
	Create(ctx context.Context, advertiserID utils.SixID, input AdInput) (*models.Ad, error)
	FindByID(ctx context.Context, adID utils.SixID) (*models.Ad, error)
	GetAll(ctx context.Context) ([]models.AdView, error)
	GetByAdvertiser(ctx context.Context, advertiserID utils.SixID) ([]models.AdView, error)
	GetByCity(ctx context.Context, cityID utils.SixID) ([]models.AdView, error)
	Update(ctx context.Context, adID, advertiserID utils.SixID, input AdInput) (*models.Ad, error)
	Delete(ctx context.Context, adID, advertiserID utils.SixID) error
	View(ctx context.Context, ad *models.Ad) models.AdView
	Summary(ctx context.Context, adID utils.SixID) *models.AdSummary
}

const adsCollection = "ads"

type adService struct {
	db  *mongo.Database
	geo IGeoService
}

// NewAdService creates a new AdService. The geo service resolves reference IDs
// to names for API output.
func NewAdService(database *mongo.Database, geo IGeoService) IAdService {
	return &adService{db: database, geo: geo}
}

// validate enforces the canonical required set for an ad regardless of which
// endpoint the write came through.
func (s *adService) validate(ctx context.Context, input AdInput) error {
	switch {
	case input.Title == "":
		return &ErrValidation{Msg: "title is required"}
	case input.Description == "":
		return &ErrValidation{Msg: "description is required"}
	case len(input.TargetAudience) == 0:
		return &ErrValidation{Msg: "targetAudience is required"}
	case input.AdType == "":
		return &ErrValidation{Msg: "adType is required"}
	case input.AdDuration == "":
		return &ErrValidation{Msg: "adDuration is required"}
	case input.Budget == "":
		return &ErrValidation{Msg: "budget is required"}
	case input.StateID.IsZero():
		return &ErrValidation{Msg: "stateId is required"}
	case input.CityID.IsZero():
		return &ErrValidation{Msg: "cityId is required"}
	}
	// Geography must resolve to seeded reference records
	if s.geo.StateName(ctx, input.StateID) == "" {
		return &ErrValidation{Msg: "stateId does not reference a known state"}
	}
	if s.geo.CityName(ctx, input.CityID) == "" {
		return &ErrValidation{Msg: "cityId does not reference a known city"}
	}
	if input.AreaID != nil && !input.AreaID.IsZero() && s.geo.AreaName(ctx, *input.AreaID) == "" {
		return &ErrValidation{Msg: "areaId does not reference a known area"}
	}
	return nil
}

// Create inserts a new ad for the advertiser.
func (s *adService) Create(ctx context.Context, advertiserID utils.SixID, input AdInput) (*models.Ad, error) {
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ad := &models.Ad{
		Title:          input.Title,
		Description:    input.Description,
		TargetAudience: input.TargetAudience,
		Location:       input.Location,
		AdType:         input.AdType,
		AdDimensions:   input.AdDimensions,
		AdDuration:     input.AdDuration,
		Budget:         input.Budget,
		ImageKey:       input.ImageKey,
		StateID:        input.StateID,
		CityID:         input.CityID,
		AreaID:         input.AreaID,
		IsFeatured:     input.IsFeatured,
		AdvertiserID:   advertiserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := db.Try(func() error {
		ad.GenID()
		_, insertErr := s.db.Collection(adsCollection).InsertOne(ctx, ad)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert ad %q: %w", input.Title, err)
	}
	return ad, nil
}

// FindByID returns an ad by id or mongo.ErrNoDocuments.
func (s *adService) FindByID(ctx context.Context, adID utils.SixID) (*models.Ad, error) {
	var ad models.Ad
	err := s.db.Collection(adsCollection).FindOne(ctx, bson.M{"_id": adID}).Decode(&ad)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding ad %s: %w", adID.String(), err)
	}
	return &ad, nil
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

func (s *adService) list(ctx context.Context, filter bson.M) ([]models.AdView, error) {
	cursor, err := s.db.Collection(adsCollection).Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	defer cursor.Close(ctx)

	var ads []models.Ad
	if err = cursor.All(ctx, &ads); err != nil {
		return nil, fmt.Errorf("failed to decode ads: %w", err)
	}
	views := make([]models.AdView, 0, len(ads))
	for i := range ads {
		views = append(views, s.View(ctx, &ads[i]))
	}
	return views, nil
}

// GetAll returns every ad with geography resolved, newest first.
func (s *adService) GetAll(ctx context.Context) ([]models.AdView, error) {
	return s.list(ctx, bson.M{})
}

// GetByAdvertiser returns the ads of one advertiser, newest first.
func (s *adService) GetByAdvertiser(ctx context.Context, advertiserID utils.SixID) ([]models.AdView, error) {
	return s.list(ctx, bson.M{"advertiser_id": advertiserID})
}

// GetByCity returns ads placed in one city, newest first.
func (s *adService) GetByCity(ctx context.Context, cityID utils.SixID) ([]models.AdView, error) {
	return s.list(ctx, bson.M{"city_id": cityID})
}

// Update replaces the advertiser-supplied fields of an ad. Only the owning
// advertiser may update.
func (s *adService) Update(ctx context.Context, adID, advertiserID utils.SixID, input AdInput) (*models.Ad, error) {
	existing, err := s.FindByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if existing.AdvertiserID != advertiserID {
		return nil, ErrNotOwner
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	updates := bson.M{
		"title":              input.Title,
		"description":        input.Description,
		"target_audience":    input.TargetAudience,
		"longitude_latitude": input.Location,
		"ad_type":            input.AdType,
		"ad_dimensions":      input.AdDimensions,
		"ad_duration":        input.AdDuration,
		"budget":             input.Budget,
		"state_id":           input.StateID,
		"city_id":            input.CityID,
		"area_id":            input.AreaID,
		"is_featured":        input.IsFeatured,
		"updated_at":         time.Now().UTC(),
	}
	if input.ImageKey != "" {
		updates["image_key"] = input.ImageKey
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Ad
	err = s.db.Collection(adsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": adID}, bson.M{"$set": updates}, opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to update ad %s: %w", adID.String(), err)
	}
	return &updated, nil
}

// Delete removes an ad. Only the owning advertiser may delete.
func (s *adService) Delete(ctx context.Context, adID, advertiserID utils.SixID) error {
	existing, err := s.FindByID(ctx, adID)
	if err != nil {
		return err
	}
	if existing.AdvertiserID != advertiserID {
		return ErrNotOwner
	}
	_, err = s.db.Collection(adsCollection).DeleteOne(ctx, bson.M{"_id": adID})
	if err != nil {
		return fmt.Errorf("failed to delete ad %s: %w", adID.String(), err)
	}
	return nil
}

// View resolves an ad's geography references to names.
func (s *adService) View(ctx context.Context, ad *models.Ad) models.AdView {
	view := models.AdView{
		Ad:        *ad,
		StateName: s.geo.StateName(ctx, ad.StateID),
		CityName:  s.geo.CityName(ctx, ad.CityID),
	}
	if ad.AreaID != nil {
		view.AreaName = s.geo.AreaName(ctx, *ad.AreaID)
	}
	return view
}

// Summary returns the reduced projection joined onto booking views, or nil
// when the ad no longer exists.
func (s *adService) Summary(ctx context.Context, adID utils.SixID) *models.AdSummary {
	ad, err := s.FindByID(ctx, adID)
	if err != nil {
		return nil
	}
	return &models.AdSummary{
		ID:          ad.ID.String(),
		Title:       ad.Title,
		Description: ad.Description,
		Budget:      ad.Budget,
		StateName:   s.geo.StateName(ctx, ad.StateID),
		CityName:    s.geo.CityName(ctx, ad.CityID),
	}
}
