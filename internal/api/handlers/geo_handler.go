package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dp0603/E-Advertisement-Deployed/internal/services"
	"github.com/Dp0603/E-Advertisement-Deployed/internal/utils"
)

// GeoHandler handles the geography reference endpoints.
type GeoHandler struct {
	geo services.IGeoService
}

// NewGeoHandler creates a new GeoHandler.
func NewGeoHandler(geo services.IGeoService) *GeoHandler {
	return &GeoHandler{geo: geo}
}

type addStateRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddState handles POST /state/addstate.
func (h *GeoHandler) AddState(c *gin.Context) {
	var req addStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	state, err := h.geo.AddState(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// GetStates handles GET /state/getstates.
func (h *GeoHandler) GetStates(c *gin.Context) {
	states, err := h.geo.GetStates(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, states)
}

type addCityRequest struct {
	Name    string `json:"name" binding:"required"`
	StateID string `json:"stateId" binding:"required"`
}

// AddCity handles POST /city/addcity.
func (h *GeoHandler) AddCity(c *gin.Context) {
	var req addCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and stateId are required"})
		return
	}
	stateID, err := utils.ParseSixID(req.StateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stateId"})
		return
	}
	city, err := h.geo.AddCity(c.Request.Context(), req.Name, stateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, city)
}

// GetCities handles GET /city/getcities.
func (h *GeoHandler) GetCities(c *gin.Context) {
	cities, err := h.geo.GetCities(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}

// GetCitiesByState handles GET /city/getcitybystate/:stateId.
func (h *GeoHandler) GetCitiesByState(c *gin.Context) {
	stateID, ok := pathID(c, "stateId")
	if !ok {
		return
	}
	cities, err := h.geo.GetCitiesByState(c.Request.Context(), stateID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cities)
}

type addAreaRequest struct {
	Name    string `json:"name" binding:"required"`
	CityID  string `json:"cityId" binding:"required"`
	StateID string `json:"stateId" binding:"required"`
	PinCode string `json:"pincode"`
}

// AddArea handles POST /area/addarea.
func (h *GeoHandler) AddArea(c *gin.Context) {
	var req addAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, cityId and stateId are required"})
		return
	}
	cityID, err := utils.ParseSixID(req.CityID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cityId"})
		return
	}
	stateID, err := utils.ParseSixID(req.StateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stateId"})
		return
	}
	area, err := h.geo.AddArea(c.Request.Context(), req.Name, cityID, stateID, req.PinCode)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, area)
}

// GetAreas handles GET /area/getareas.
func (h *GeoHandler) GetAreas(c *gin.Context) {
	areas, err := h.geo.GetAreas(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, areas)
}

// GetAreasByCity handles GET /area/getareabycity/:cityId.
func (h *GeoHandler) GetAreasByCity(c *gin.Context) {
	cityID, ok := pathID(c, "cityId")
	if !ok {
		return
	}
	areas, err := h.geo.GetAreasByCity(c.Request.Context(), cityID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, areas)
}
