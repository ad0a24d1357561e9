package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rumbo/internal/models/request_models"
	"rumbo/internal/services"
	"rumbo/pkg/utils"
)

type AgentController struct {
	agentService services.AgentServiceInterface
}

func NewAgentController(agentService services.AgentServiceInterface) *AgentController {
	return &AgentController{
		agentService: agentService,
	}
}

// SendMessage godoc
// @Summary Send a message to the itinerary editor
// @Description Post a user turn or a resume payload for a pending confirmation; returns the updated thread state
// @Tags Agent
// @Accept json
// @Produce json
// @Param id path string true "Itinerary id"
// @Param thread_id path string true "Conversation thread id"
// @Param request body request_models.AgentMessageRequest true "Message or resume payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /itineraries/{id}/agent/{thread_id}/messages [post]
func (a *AgentController) SendMessage(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid trip id")
		return
	}
	threadID := c.Param("thread_id")

	var req request_models.AgentMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	state, err := a.agentService.SendMessage(c.Request.Context(), tripID, threadID, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, state, "Message processed successfully")
}

// StreamMessage godoc
// @Summary Stream an editor turn over SSE
// @Description Same contract as the message endpoint, but emits token, tool_call, interrupt and done events as they happen
// @Tags Agent
// @Accept json
// @Produce text/event-stream
// @Param id path string true "Itinerary id"
// @Param thread_id path string true "Conversation thread id"
// @Param request body request_models.AgentMessageRequest true "Message or resume payload"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} utils.APIResponse
// @Router /itineraries/{id}/agent/{thread_id}/messages/stream [post]
func (a *AgentController) StreamMessage(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid trip id")
		return
	}
	threadID := c.Param("thread_id")

	var req request_models.AgentMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	err = a.agentService.SendMessageStream(c.Request.Context(), tripID, threadID, req, func(ev services.StreamEvent) error {
		c.SSEvent(ev.Event, ev.Data)
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		c.SSEvent("error", gin.H{"message": err.Error()})
		c.Writer.Flush()
	}
}

// GetState godoc
// @Summary Get conversation state
// @Description Return the messages and pending interrupt of an editor thread
// @Tags Agent
// @Produce json
// @Param thread_id path string true "Conversation thread id"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /itineraries/agent/{thread_id} [get]
func (a *AgentController) GetState(c *gin.Context) {
	threadID := c.Param("thread_id")

	state, err := a.agentService.GetState(c.Request.Context(), threadID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, state, "State retrieved successfully")
}
