package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rumbo/internal/models/request_models"
	"rumbo/internal/services"
	"rumbo/pkg/utils"
)

type ItineraryController struct {
	itineraryService services.ItineraryServiceInterface
}

func NewItineraryController(itineraryService services.ItineraryServiceInterface) *ItineraryController {
	return &ItineraryController{
		itineraryService: itineraryService,
	}
}

// ProposeRoutes godoc
// @Summary Propose candidate routes
// @Description Return two candidate routes for the requested destination and day count; pass feedback with a selected route to revise it
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param request body request_models.RouteProposalRequest true "Route proposal payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /itineraries/route [post]
func (i *ItineraryController) ProposeRoutes(c *gin.Context) {
	var req request_models.RouteProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	routes, err := i.itineraryService.ProposeRoutes(c.Request.Context(), optionalUserID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, routes, "Routes proposed successfully")
}

// Generate godoc
// @Summary Generate a full itinerary
// @Description Run the generation pipeline and persist the resulting draft itinerary
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param request body request_models.GenerateItineraryRequest true "Generation payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /itineraries/generate [post]
func (i *ItineraryController) Generate(c *gin.Context) {
	var req request_models.GenerateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	itinerary, err := i.itineraryService.Generate(c.Request.Context(), optionalUserID(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, itinerary, "Itinerary generated successfully")
}

// GetItinerary godoc
// @Summary Get an itinerary
// @Description Return a stored itinerary with its structured trip
// @Tags Itineraries
// @Produce json
// @Param id path string true "Itinerary id"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /itineraries/{id} [get]
func (i *ItineraryController) GetItinerary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid itinerary id")
		return
	}

	itinerary, err := i.itineraryService.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, itinerary, "Itinerary retrieved successfully")
}

// FindSimilar godoc
// @Summary Find similar itineraries
// @Description Return shared itineraries closest to this one by embedding distance
// @Tags Itineraries
// @Produce json
// @Param id path string true "Itinerary id"
// @Param limit query int false "Maximum results, default 5"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /itineraries/{id}/similar [get]
func (i *ItineraryController) FindSimilar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid itinerary id")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit <= 0 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid limit")
		return
	}

	similar, err := i.itineraryService.FindSimilar(c.Request.Context(), id, limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, similar, "Similar itineraries retrieved successfully")
}

// AddAccommodation godoc
// @Summary Attach an accommodation
// @Description Attach an accommodation link to an itinerary; images are fetched automatically
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param id path string true "Itinerary id"
// @Param request body request_models.AddAccommodationRequest true "Accommodation payload"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /itineraries/{id}/accommodations [post]
// @Security BearerAuth
func (i *ItineraryController) AddAccommodation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid itinerary id")
		return
	}

	var req request_models.AddAccommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	accommodation, err := i.itineraryService.AddAccommodation(c.Request.Context(), id, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, accommodation, "Accommodation added successfully")
}

// optionalUserID reads the authenticated user id when the JWT middleware set
// one; anonymous requests get nil.
func optionalUserID(c *gin.Context) *uuid.UUID {
	raw := c.GetString("user_id")
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
