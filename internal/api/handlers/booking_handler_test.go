package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/api/handlers"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/services"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

func bookingTestRouter(svc *MockBookingService, userID utils.SixID, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewBookingHandler(svc)

	r := gin.New()
	r.Use(authAs(userID, role))
	r.POST("/bookads/:adId", handler.BookAd)
	r.GET("/getbookings", handler.GetBookings)
	r.GET("/getbookingsbyuser", handler.GetBookingsByUser)
	r.PUT("/updatebookingstatus/:id", handler.UpdateBookingStatus)
	return r
}

func putJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestBookingHandler_BookAd_CreatesPending(t *testing.T) {
	svc := new(MockBookingService)
	viewerID := utils.NewSixID()
	adID := utils.NewSixID()
	r := bookingTestRouter(svc, viewerID, models.RoleViewer)

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	end := start.Add(7 * 24 * time.Hour)
	created := &models.Booking{
		ClientID:         viewerID,
		AdID:             adID,
		StartTime:        start,
		EndTime:          end,
		DisplayFrequency: models.FrequencyStandard,
		Status:           models.StatusPending,
	}
	svc.On("Create", mock.Anything, viewerID, adID, mock.MatchedBy(func(in services.BookingInput) bool {
		return in.StartTime.Equal(start) && in.EndTime.Equal(end) && in.Payment.OrderID == "order_h1"
	})).Return(created, nil)

	w := postJSON(r, "/bookads/"+adID.String(), gin.H{
		"startTime": start.Format(time.RFC3339),
		"endTime":   end.Format(time.RFC3339),
		"payment":   gin.H{"orderId": "order_h1", "paymentId": "pay_h1"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var got models.Booking
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.StatusPending, got.Status)
	svc.AssertExpectations(t)
}

func TestBookingHandler_BookAd_BadWindow(t *testing.T) {
	svc := new(MockBookingService)
	viewerID := utils.NewSixID()
	adID := utils.NewSixID()
	r := bookingTestRouter(svc, viewerID, models.RoleViewer)

	svc.On("Create", mock.Anything, viewerID, adID, mock.Anything).
		Return(nil, &services.ErrValidation{Msg: "startTime must be before endTime"})

	start := time.Now().Add(48 * time.Hour).UTC()
	w := postJSON(r, "/bookads/"+adID.String(), gin.H{
		"startTime": start.Format(time.RFC3339),
		"endTime":   start.Add(-time.Hour).Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_BookAd_SlotTaken(t *testing.T) {
	svc := new(MockBookingService)
	viewerID := utils.NewSixID()
	adID := utils.NewSixID()
	r := bookingTestRouter(svc, viewerID, models.RoleViewer)

	svc.On("Create", mock.Anything, viewerID, adID, mock.Anything).Return(nil, services.ErrSlotTaken)

	start := time.Now().Add(24 * time.Hour).UTC()
	w := postJSON(r, "/bookads/"+adID.String(), gin.H{
		"startTime": start.Format(time.RFC3339),
		"endTime":   start.Add(time.Hour).Format(time.RFC3339),
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_GetBookings_ReturnsViews(t *testing.T) {
	svc := new(MockBookingService)
	r := bookingTestRouter(svc, utils.NewSixID(), models.RoleAdvertiser)

	views := []models.BookingView{
		{
			Booking: models.Booking{Status: models.StatusPending},
			Ad:      &models.AdSummary{Title: "Billboard on CG Road", CityName: "Ahmedabad"},
			Client:  &models.ClientSummary{FirstName: "Asha", Email: "asha@example.com"},
		},
	}
	svc.On("GetAll", mock.Anything).Return(views, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/getbookings", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []models.BookingView
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	assert.Equal(t, "Billboard on CG Road", got[0].Ad.Title)
	assert.Equal(t, "Asha", got[0].Client.FirstName)
}

func TestBookingHandler_GetBookingsByUser_ScopedToCaller(t *testing.T) {
	svc := new(MockBookingService)
	viewerID := utils.NewSixID()
	r := bookingTestRouter(svc, viewerID, models.RoleViewer)

	svc.On("GetByClient", mock.Anything, viewerID).Return([]models.BookingView{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/getbookingsbyuser", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestBookingHandler_UpdateBookingStatus_Confirm(t *testing.T) {
	svc := new(MockBookingService)
	advertiserID := utils.NewSixID()
	bookingID := utils.NewSixID()
	r := bookingTestRouter(svc, advertiserID, models.RoleAdvertiser)

	updated := &models.Booking{Status: models.StatusConfirmed}
	svc.On("UpdateStatus", mock.Anything, bookingID, advertiserID, models.StatusConfirmed).Return(updated, nil)

	w := putJSON(r, "/updatebookingstatus/"+bookingID.String(), gin.H{"status": "confirmed"})

	assert.Equal(t, http.StatusOK, w.Code)
	var got models.Booking
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.StatusConfirmed, got.Status)
}

func TestBookingHandler_UpdateBookingStatus_InvalidStatus(t *testing.T) {
	svc := new(MockBookingService)
	advertiserID := utils.NewSixID()
	bookingID := utils.NewSixID()
	r := bookingTestRouter(svc, advertiserID, models.RoleAdvertiser)

	svc.On("UpdateStatus", mock.Anything, bookingID, advertiserID, models.BookingStatus("cancelled")).
		Return(nil, services.ErrInvalidStatus)

	w := putJSON(r, "/updatebookingstatus/"+bookingID.String(), gin.H{"status": "cancelled"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_UpdateBookingStatus_NotFound(t *testing.T) {
	svc := new(MockBookingService)
	advertiserID := utils.NewSixID()
	bookingID := utils.NewSixID()
	r := bookingTestRouter(svc, advertiserID, models.RoleAdvertiser)

	svc.On("UpdateStatus", mock.Anything, bookingID, advertiserID, models.StatusRejected).
		Return(nil, mongo.ErrNoDocuments)

	w := putJSON(r, "/updatebookingstatus/"+bookingID.String(), gin.H{"status": "rejected"})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_UpdateBookingStatus_NotOwner(t *testing.T) {
	svc := new(MockBookingService)
	advertiserID := utils.NewSixID()
	bookingID := utils.NewSixID()
	r := bookingTestRouter(svc, advertiserID, models.RoleAdvertiser)

	svc.On("UpdateStatus", mock.Anything, bookingID, advertiserID, models.StatusConfirmed).
		Return(nil, services.ErrNotOwner)

	w := putJSON(r, "/updatebookingstatus/"+bookingID.String(), gin.H{"status": "confirmed"})

	assert.Equal(t, http.StatusForbidden, w.Code)
}
