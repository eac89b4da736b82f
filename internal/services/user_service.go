package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/auth"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/config"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/db"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// ErrEmailExists is returned when an attempt is made to use an email that already exists.
var ErrEmailExists = errors.New("email already in use by another account")

// ErrInvalidCredentials is returned on login with an unknown email or wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrValidation wraps user-input validation failures so handlers can map them to 400.
type ErrValidation struct {
	Msg string
}

func (e *ErrValidation) Error() string { return e.Msg }

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IUserService defines the interface for user-related operations.
// This allows for easier mocking in tests.
type IUserService interface {
	Register(ctx context.Context, firstName, lastName, email, password string, role models.Role) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FindByID(ctx context.Context, userID utils.SixID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID utils.SixID, firstName, lastName, email string) (*models.User, error)
	ChangePassword(ctx context.Context, userID utils.SixID, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, userID utils.SixID, newPassword string) error
}

const usersCollection = "users"

// userService implements IUserService.
type userService struct {
	db             *mongo.Database
	cfg            *config.Config
	passwordPolicy *regexp.Regexp
}

// NewUserService creates a new UserService.
func NewUserService(database *mongo.Database, cfg *config.Config) IUserService {
	policy := regexp.MustCompile("^.{8,}$")
	if cfg != nil && cfg.PasswordRegexp != "" {
		if compiled, err := regexp.Compile(cfg.PasswordRegexp); err == nil {
			policy = compiled
		}
	}
	return &userService{db: database, cfg: cfg, passwordPolicy: policy}
}

// Register validates and creates a new account. Both viewers and advertisers
// register through this path; only the role differs.
func (s *userService) Register(ctx context.Context, firstName, lastName, email, password string, role models.Role) (*models.User, error) {
	if len(firstName) < 3 {
		return nil, &ErrValidation{Msg: "firstName should be at least 3 characters long"}
	}
	if len(lastName) < 3 {
		return nil, &ErrValidation{Msg: "lastName should be at least 3 characters long"}
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegexp.MatchString(email) {
		return nil, &ErrValidation{Msg: "invalid email format"}
	}
	if !s.passwordPolicy.MatchString(password) {
		return nil, &ErrValidation{Msg: "password does not meet the password policy"}
	}
	if !role.IsValid() {
		return nil, &ErrValidation{Msg: "invalid role"}
	}

	// Pre-check for duplicates; the unique index on email is the backstop
	existing, err := s.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = db.Try(func() error {
		user.GenID()
		_, insertErr := s.db.Collection(usersCollection).InsertOne(ctx, user)
		return insertErr
	})
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to insert user %s: %w", email, err)
	}
	return user, nil
}

// Authenticate checks email/password and returns the account on success.
// Unknown email and wrong password return the same error so callers can't
// probe which addresses are registered.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FindByID returns a user by id or mongo.ErrNoDocuments.
func (s *userService) FindByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by ID %s: %w", userID.String(), err)
	}
	return &user, nil
}

// FindByEmail returns a user by email or mongo.ErrNoDocuments.
func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates name and email of an account.
func (s *userService) UpdateProfile(ctx context.Context, userID utils.SixID, firstName, lastName, email string) (*models.User, error) {
	updates := bson.M{"updated_at": time.Now().UTC()}
	if firstName != "" {
		if len(firstName) < 3 {
			return nil, &ErrValidation{Msg: "firstName should be at least 3 characters long"}
		}
		updates["first_name"] = firstName
	}
	if lastName != "" {
		if len(lastName) < 3 {
			return nil, &ErrValidation{Msg: "lastName should be at least 3 characters long"}
		}
		updates["last_name"] = lastName
	}
	if email != "" {
		email = strings.ToLower(strings.TrimSpace(email))
		if !emailRegexp.MatchString(email) {
			return nil, &ErrValidation{Msg: "invalid email format"}
		}
		updates["email"] = email
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	err := s.db.Collection(usersCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": updates}, opts).
		Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		if db.IsMongoDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to update profile for user %s: %w", userID.String(), err)
	}
	return &updated, nil
}

// ChangePassword verifies the current password then stores a new hash.
func (s *userService) ChangePassword(ctx context.Context, userID utils.SixID, oldPassword, newPassword string) error {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPasswordHash(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if !s.passwordPolicy.MatchString(newPassword) {
		return &ErrValidation{Msg: "password does not meet the password policy"}
	}
	return s.ResetPassword(ctx, userID, newPassword)
}

// ResetPassword stores a new password hash without checking the old one.
// Callers must have already proven identity (reset-token flow or ChangePassword).
func (s *userService) ResetPassword(ctx context.Context, userID utils.SixID, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	result, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"password": hash, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to update password for user %s: %w", userID.String(), err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
