package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/db"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// IGeoService defines the interface for the geography reference collections.
// These are seeded once and read-mostly afterwards; every read is sorted
// alphabetically by name.
type IGeoService interface {
	AddState(ctx context.Context, name string) (*models.State, error)
	GetStates(ctx context.Context) ([]models.State, error)
	AddCity(ctx context.Context, name string, stateID utils.SixID) (*models.City, error)
	GetCities(ctx context.Context) ([]models.City, error)
	GetCitiesByState(ctx context.Context, stateID utils.SixID) ([]models.City, error)
	AddArea(ctx context.Context, name string, cityID, stateID utils.SixID, pinCode string) (*models.Area, error)
	GetAreas(ctx context.Context) ([]models.Area, error)
	GetAreasByCity(ctx context.Context, cityID utils.SixID) ([]models.Area, error)
	StateName(ctx context.Context, id utils.SixID) string
	CityName(ctx context.Context, id utils.SixID) string
	AreaName(ctx context.Context, id utils.SixID) string
}

const (
	statesCollection = "states"
	citiesCollection = "cities"
	areasCollection  = "areas"
)

// geoService implements IGeoService.
type geoService struct {
	db *mongo.Database
}

// NewGeoService creates a new GeoService.
func NewGeoService(database *mongo.Database) IGeoService {
	return &geoService{db: database}
}

var nameSort = options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

// AddState inserts a new state record.
func (s *geoService) AddState(ctx context.Context, name string) (*models.State, error) {
	if name == "" {
		return nil, fmt.Errorf("state name is required")
	}
	state := &models.State{Base: models.NewBase(), Name: name}
	err := db.Try(func() error {
		state.GenID()
		_, insertErr := s.db.Collection(statesCollection).InsertOne(ctx, state)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert state %q: %w", name, err)
	}
	return state, nil
}

// GetStates returns all states sorted alphabetically.
func (s *geoService) GetStates(ctx context.Context) ([]models.State, error) {
	cursor, err := s.db.Collection(statesCollection).Find(ctx, bson.M{}, nameSort)
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	defer cursor.Close(ctx)
	var states []models.State
	if err = cursor.All(ctx, &states); err != nil {
		return nil, fmt.Errorf("failed to decode states: %w", err)
	}
	return states, nil
}

// AddCity inserts a new city under an existing state.
func (s *geoService) AddCity(ctx context.Context, name string, stateID utils.SixID) (*models.City, error) {
	if name == "" {
		return nil, fmt.Errorf("city name is required")
	}
	// Parent must resolve; cities are never orphaned
	count, err := s.db.Collection(statesCollection).CountDocuments(ctx, bson.M{"_id": stateID})
	if err != nil {
		return nil, fmt.Errorf("failed to check state %s: %w", stateID.String(), err)
	}
	if count == 0 {
		return nil, mongo.ErrNoDocuments
	}

	city := &models.City{Base: models.NewBase(), Name: name, StateID: stateID}
	err = db.Try(func() error {
		city.GenID()
		_, insertErr := s.db.Collection(citiesCollection).InsertOne(ctx, city)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert city %q: %w", name, err)
	}
	return city, nil
}

// GetCities returns all cities sorted alphabetically.
func (s *geoService) GetCities(ctx context.Context) ([]models.City, error) {
	cursor, err := s.db.Collection(citiesCollection).Find(ctx, bson.M{}, nameSort)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	defer cursor.Close(ctx)
	var cities []models.City
	if err = cursor.All(ctx, &cities); err != nil {
		return nil, fmt.Errorf("failed to decode cities: %w", err)
	}
	return cities, nil
}

// GetCitiesByState returns the cities of one state sorted alphabetically.
func (s *geoService) GetCitiesByState(ctx context.Context, stateID utils.SixID) ([]models.City, error) {
	cursor, err := s.db.Collection(citiesCollection).Find(ctx, bson.M{"state_id": stateID}, nameSort)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities for state %s: %w", stateID.String(), err)
	}
	defer cursor.Close(ctx)
	var cities []models.City
	if err = cursor.All(ctx, &cities); err != nil {
		return nil, fmt.Errorf("failed to decode cities: %w", err)
	}
	return cities, nil
}

// AddArea inserts a new area under an existing city.
func (s *geoService) AddArea(ctx context.Context, name string, cityID, stateID utils.SixID, pinCode string) (*models.Area, error) {
	if name == "" {
		return nil, fmt.Errorf("area name is required")
	}
	count, err := s.db.Collection(citiesCollection).CountDocuments(ctx, bson.M{"_id": cityID})
	if err != nil {
		return nil, fmt.Errorf("failed to check city %s: %w", cityID.String(), err)
	}
	if count == 0 {
		return nil, mongo.ErrNoDocuments
	}

	area := &models.Area{Base: models.NewBase(), Name: name, CityID: cityID, StateID: stateID, PinCode: pinCode}
	err = db.Try(func() error {
		area.GenID()
		_, insertErr := s.db.Collection(areasCollection).InsertOne(ctx, area)
		return insertErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert area %q: %w", name, err)
	}
	return area, nil
}

// GetAreas returns all areas sorted alphabetically.
func (s *geoService) GetAreas(ctx context.Context) ([]models.Area, error) {
	cursor, err := s.db.Collection(areasCollection).Find(ctx, bson.M{}, nameSort)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	defer cursor.Close(ctx)
	var areas []models.Area
	if err = cursor.All(ctx, &areas); err != nil {
		return nil, fmt.Errorf("failed to decode areas: %w", err)
	}
	return areas, nil
}

// GetAreasByCity returns the areas of one city sorted alphabetically.
func (s *geoService) GetAreasByCity(ctx context.Context, cityID utils.SixID) ([]models.Area, error) {
	cursor, err := s.db.Collection(areasCollection).Find(ctx, bson.M{"city_id": cityID}, nameSort)
	if err != nil {
		return nil, fmt.Errorf("failed to list areas for city %s: %w", cityID.String(), err)
	}
	defer cursor.Close(ctx)
	var areas []models.Area
	if err = cursor.All(ctx, &areas); err != nil {
		return nil, fmt.Errorf("failed to decode areas: %w", err)
	}
	return areas, nil
}

// name looks up a single record's name for join projections. Missing or
// unresolvable references degrade to an empty name rather than failing the view.
func (s *geoService) name(ctx context.Context, collection string, id utils.SixID) string {
	if id.IsZero() {
		return ""
	}
	var doc struct {
		Name string `bson:"name"`
	}
	if err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return ""
	}
	return doc.Name
}

func (s *geoService) StateName(ctx context.Context, id utils.SixID) string {
	return s.name(ctx, statesCollection, id)
}

func (s *geoService) CityName(ctx context.Context, id utils.SixID) string {
	return s.name(ctx, citiesCollection, id)
}

func (s *geoService) AreaName(ctx context.Context, id utils.SixID) string {
	return s.name(ctx, areasCollection, id)
}
