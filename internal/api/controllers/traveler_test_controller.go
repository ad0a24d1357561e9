package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rumbo/internal/models/request_models"
	"rumbo/internal/services"
	"rumbo/pkg/utils"
)

type TravelerTestController struct {
	testService services.TravelerTestServiceInterface
}

func NewTravelerTestController(testService services.TravelerTestServiceInterface) *TravelerTestController {
	return &TravelerTestController{
		testService: testService,
	}
}

// ListQuestions godoc
// @Summary List questionnaire questions
// @Description Return the active questions with their options, in display order
// @Tags TravelerTest
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /traveler-test/questions [get]
func (t *TravelerTestController) ListQuestions(c *gin.Context) {
	questions, err := t.testService.ListQuestions(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, questions, "Questions retrieved successfully")
}

// StartTest godoc
// @Summary Start a traveler test
// @Description Open a new test for the authenticated user; only one test may be active at a time
// @Tags TravelerTest
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /traveler-test [post]
// @Security BearerAuth
func (t *TravelerTestController) StartTest(c *gin.Context) {
	userID := c.GetString("user_id")

	started, err := t.testService.StartTest(c.Request.Context(), userID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, started, "Test started successfully")
}

// SubmitTest godoc
// @Summary Submit test answers
// @Description Validate the answers, classify the traveler and complete the test atomically
// @Tags TravelerTest
// @Accept json
// @Produce json
// @Param test_id path string true "Test id"
// @Param request body request_models.SubmitTestRequest true "Answers keyed by question id"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Router /traveler-test/{test_id}/submit [post]
// @Security BearerAuth
func (t *TravelerTestController) SubmitTest(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid test id")
		return
	}

	var req request_models.SubmitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	result, err := t.testService.SubmitAndComplete(c.Request.Context(), testID, req.Answers)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, result, "Test completed successfully")
}
