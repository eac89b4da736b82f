package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/services"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/storage"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/tasks"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// AdHandler handles ad inventory endpoints.
type AdHandler struct {
	ads        services.IAdService
	storage    storage.IS3Storage
	taskClient *tasks.Client
}

// NewAdHandler creates a new AdHandler. storage and taskClient may be nil when
// creative uploads are not configured.
func NewAdHandler(ads services.IAdService, s3 storage.IS3Storage, taskClient *tasks.Client) *AdHandler {
	return &AdHandler{ads: ads, storage: s3, taskClient: taskClient}
}

type adRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	TargetAudience []string `json:"targetAudience"`
	Location       string   `json:"longitude_latitude"`
	AdType         string   `json:"adType"`
	AdDimensions   string   `json:"adDimensions"`
	AdDuration     string   `json:"adDuration"`
	Budget         string   `json:"budget"`
	ImageKey       string   `json:"imageKey"`
	StateID        string   `json:"stateId"`
	CityID         string   `json:"cityId"`
	AreaID         string   `json:"areaId"`
	IsFeatured     bool     `json:"isFeatured"`
}

func (r *adRequest) toInput() (services.AdInput, error) {
	input := services.AdInput{
		Title:          r.Title,
		Description:    r.Description,
		TargetAudience: r.TargetAudience,
		Location:       r.Location,
		AdType:         r.AdType,
		AdDimensions:   r.AdDimensions,
		AdDuration:     r.AdDuration,
		Budget:         r.Budget,
		ImageKey:       r.ImageKey,
		IsFeatured:     r.IsFeatured,
	}
	if r.StateID != "" {
		id, err := utils.ParseSixID(r.StateID)
		if err != nil {
			return input, err
		}
		input.StateID = id
	}
	if r.CityID != "" {
		id, err := utils.ParseSixID(r.CityID)
		if err != nil {
			return input, err
		}
		input.CityID = id
	}
	if r.AreaID != "" {
		id, err := utils.ParseSixID(r.AreaID)
		if err != nil {
			return input, err
		}
		input.AreaID = &id
	}
	return input, nil
}

// enqueueNormalize queues creative normalization when an image key was attached.
func (h *AdHandler) enqueueNormalize(c *gin.Context, imageKey, adID string) {
	if imageKey == "" || h.taskClient == nil {
		return
	}
	if err := h.taskClient.EnqueueImageNormalize(c.Request.Context(), imageKey, adID); err != nil {
		log.Printf("Failed to enqueue creative normalization for ad %s: %v", adID, err)
	}
}

// CreateAd handles POST /advertiser/createads.
func (h *AdHandler) CreateAd(c *gin.Context) {
	advertiserID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req adRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geography reference"})
		return
	}

	ad, err := h.ads.Create(c.Request.Context(), advertiserID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.enqueueNormalize(c, ad.ImageKey, ad.ID.String())
	c.JSON(http.StatusCreated, ad)
}

// UpdateAd handles PUT /advertiser/updateads/:id.
func (h *AdHandler) UpdateAd(c *gin.Context) {
	advertiserID, ok := currentUserID(c)
	if !ok {
		return
	}
	adID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req adRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geography reference"})
		return
	}

	ad, err := h.ads.Update(c.Request.Context(), adID, advertiserID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if req.ImageKey != "" {
		h.enqueueNormalize(c, req.ImageKey, ad.ID.String())
	}
	c.JSON(http.StatusOK, ad)
}

// DeleteAd handles DELETE /advertiser/deleteads/:id.
func (h *AdHandler) DeleteAd(c *gin.Context) {
	advertiserID, ok := currentUserID(c)
	if !ok {
		return
	}
	adID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.ads.Delete(c.Request.Context(), adID, advertiserID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ad deleted"})
}

type uploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// GetUploadURL handles POST /advertiser/uploadurl: hands the advertiser a
// pre-signed PUT URL for a creative and the key to reference on the ad.
func (h *AdHandler) GetUploadURL(c *gin.Context) {
	advertiserID, ok := currentUserID(c)
	if !ok {
		return
	}
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Creative uploads are not configured"})
		return
	}

	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and contentType are required"})
		return
	}

	url, key, err := h.storage.PresignCreativeUpload(c.Request.Context(), advertiserID.String(), req.Filename, req.ContentType)
	if err != nil {
		log.Printf("Failed to presign creative upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload URL"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": url, "imageKey": key})
}

// GetAllAds handles GET /getallads.
func (h *AdHandler) GetAllAds(c *gin.Context) {
	views, err := h.ads.GetAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetAd handles GET /getad/:id.
func (h *AdHandler) GetAd(c *gin.Context) {
	adID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ad, err := h.ads.FindByID(c.Request.Context(), adID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ads.View(c.Request.Context(), ad))
}

// GetAdsByAdvertiser handles GET /getadsbyadvertiser/:id.
func (h *AdHandler) GetAdsByAdvertiser(c *gin.Context) {
	advertiserID, ok := pathID(c, "id")
	if !ok {
		return
	}
	views, err := h.ads.GetByAdvertiser(c.Request.Context(), advertiserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetAdsByCity handles GET /getadsbycity/:cityId.
func (h *AdHandler) GetAdsByCity(c *gin.Context) {
	cityID, ok := pathID(c, "cityId")
	if !ok {
		return
	}
	views, err := h.ads.GetByCity(c.Request.Context(), cityID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
