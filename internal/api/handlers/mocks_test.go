package handlers_test

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/api/middleware"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/payment"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/services"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// authAs injects an authenticated identity the way AuthMiddleware would.
func authAs(userID utils.SixID, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID.String())
		c.Set(middleware.ContextKeyUserRole, role)
		c.Next()
	}
}

// --- Mocks ---

type MockBookingService struct {
	mock.Mock
}

var _ services.IBookingService = (*MockBookingService)(nil)

func (m *MockBookingService) Create(ctx context.Context, clientID, adID utils.SixID, input services.BookingInput) (*models.Booking, error) {
	args := m.Called(ctx, clientID, adID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) GetAll(ctx context.Context) ([]models.BookingView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookingView), args.Error(1)
}

func (m *MockBookingService) GetByClient(ctx context.Context, clientID utils.SixID) ([]models.BookingView, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookingView), args.Error(1)
}

func (m *MockBookingService) FindByID(ctx context.Context, bookingID utils.SixID) (*models.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, bookingID, advertiserID utils.SixID, status models.BookingStatus) (*models.Booking, error) {
	args := m.Called(ctx, bookingID, advertiserID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type MockPaymentIntentService struct {
	mock.Mock
}

var _ services.IPaymentIntentService = (*MockPaymentIntentService)(nil)

func (m *MockPaymentIntentService) Create(ctx context.Context, userID utils.SixID, orderID string, amount int64, currency, receipt string) (*models.PaymentIntent, error) {
	args := m.Called(ctx, userID, orderID, amount, currency, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentIntent), args.Error(1)
}

func (m *MockPaymentIntentService) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentIntent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentIntent), args.Error(1)
}

func (m *MockPaymentIntentService) MarkVerified(ctx context.Context, orderID, paymentID string) (*models.PaymentIntent, error) {
	args := m.Called(ctx, orderID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentIntent), args.Error(1)
}

func (m *MockPaymentIntentService) Consume(ctx context.Context, orderID string, userID utils.SixID) (*models.PaymentIntent, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentIntent), args.Error(1)
}

func (m *MockPaymentIntentService) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

var _ services.IUserService = (*MockUserService)(nil)

func (m *MockUserService) Register(ctx context.Context, firstName, lastName, email, password string, role models.Role) (*models.User, error) {
	args := m.Called(ctx, firstName, lastName, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindByID(ctx context.Context, userID utils.SixID) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID utils.SixID, firstName, lastName, email string) (*models.User, error) {
	args := m.Called(ctx, userID, firstName, lastName, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID utils.SixID, oldPassword, newPassword string) error {
	args := m.Called(ctx, userID, oldPassword, newPassword)
	return args.Error(0)
}

func (m *MockUserService) ResetPassword(ctx context.Context, userID utils.SixID, newPassword string) error {
	args := m.Called(ctx, userID, newPassword)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

var _ payment.IGateway = (*MockGateway)(nil)

func (m *MockGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*payment.Order, error) {
	args := m.Called(ctx, amount, currency, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Order), args.Error(1)
}

func (m *MockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0)
}

type MockAdService struct {
	mock.Mock
}

var _ services.IAdService = (*MockAdService)(nil)

func (m *MockAdService) Create(ctx context.Context, advertiserID utils.SixID, input services.AdInput) (*models.Ad, error) {
	args := m.Called(ctx, advertiserID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ad), args.Error(1)
}

func (m *MockAdService) FindByID(ctx context.Context, adID utils.SixID) (*models.Ad, error) {
	args := m.Called(ctx, adID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ad), args.Error(1)
}

func (m *MockAdService) GetAll(ctx context.Context) ([]models.AdView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdView), args.Error(1)
}

func (m *MockAdService) GetByAdvertiser(ctx context.Context, advertiserID utils.SixID) ([]models.AdView, error) {
	args := m.Called(ctx, advertiserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdView), args.Error(1)
}

func (m *MockAdService) GetByCity(ctx context.Context, cityID utils.SixID) ([]models.AdView, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdView), args.Error(1)
}

func (m *MockAdService) Update(ctx context.Context, adID, advertiserID utils.SixID, input services.AdInput) (*models.Ad, error) {
	args := m.Called(ctx, adID, advertiserID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ad), args.Error(1)
}

func (m *MockAdService) Delete(ctx context.Context, adID, advertiserID utils.SixID) error {
	args := m.Called(ctx, adID, advertiserID)
	return args.Error(0)
}

func (m *MockAdService) View(ctx context.Context, ad *models.Ad) models.AdView {
	args := m.Called(ctx, ad)
	return args.Get(0).(models.AdView)
}

func (m *MockAdService) Summary(ctx context.Context, adID utils.SixID) *models.AdSummary {
	args := m.Called(ctx, adID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.AdSummary)
}
