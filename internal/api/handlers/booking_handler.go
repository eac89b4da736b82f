package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/models"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/services"
)

// BookingHandler handles the booking reservation endpoints.
type BookingHandler struct {
	bookings services.IBookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings services.IBookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type bookAdRequest struct {
	StartTime           time.Time               `json:"startTime" binding:"required"`
	EndTime             time.Time               `json:"endTime" binding:"required"`
	DisplayFrequency    models.DisplayFrequency `json:"displayFrequency"`
	SpecialPlacement    string                  `json:"specialPlacement"`
	ContactPerson       string                  `json:"contactPerson"`
	SpecialInstructions string                  `json:"specialInstructions"`
	AnalyticsRequired   bool                    `json:"analyticsRequired"`
	Payment             models.Payment          `json:"payment"`
}

// BookAd handles POST /bookads/:adId.
func (h *BookingHandler) BookAd(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		return
	}
	adID, ok := pathID(c, "adId")
	if !ok {
		return
	}

	var req bookAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startTime and endTime are required"})
		return
	}

	booking, err := h.bookings.Create(c.Request.Context(), clientID, adID, services.BookingInput{
		StartTime:           req.StartTime,
		EndTime:             req.EndTime,
		DisplayFrequency:    req.DisplayFrequency,
		SpecialPlacement:    req.SpecialPlacement,
		ContactPerson:       req.ContactPerson,
		SpecialInstructions: req.SpecialInstructions,
		AnalyticsRequired:   req.AnalyticsRequired,
		Payment:             req.Payment,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GetBookings handles GET /getbookings: every booking with ad and client
// projections, newest first.
func (h *BookingHandler) GetBookings(c *gin.Context) {
	views, err := h.bookings.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetBookingsByUser handles GET /getbookingsbyuser: the caller's own bookings.
func (h *BookingHandler) GetBookingsByUser(c *gin.Context) {
	clientID, ok := currentUserID(c)
	if !ok {
		return
	}
	views, err := h.bookings.GetByClient(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

type updateStatusRequest struct {
	Status models.BookingStatus `json:"status" binding:"required"`
}

// UpdateBookingStatus handles PUT /updatebookingstatus/:id. Only the
// advertiser who owns the booked ad may decide a pending booking.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	advertiserID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), bookingID, advertiserID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
