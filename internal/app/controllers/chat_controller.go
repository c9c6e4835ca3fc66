package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/collabhub/internal/app/models/dto"
	"github.com/emre/collabhub/internal/app/services"
	"github.com/emre/collabhub/internal/middleware"
)

// ChatController handles channel messages, threads, reactions, pinning and Q&A
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{chatService: chatService}
}

// ListMessages godoc
// @Summary List channel messages
// @Description Retrieve top-level messages of the community channel, newest first
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param before query string false "Messages created before this RFC3339 timestamp"
// @Param after query string false "Messages created after this RFC3339 timestamp"
// @Param senderId query int false "Filter by sender ID"
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} dto.MessageListResponse
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /communities/{id}/messages [get]
func (c *ChatController) ListMessages(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	communityID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.ListMessagesRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.chatService.ListMessages(ctx.Request.Context(), communityID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// PostMessage godoc
// @Summary Post a message
// @Description Post a TEXT message as JSON, or a FILE message as multipart form data
// @Tags chat
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.CreateMessageRequest true "Message data"
// @Success 201 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /communities/{id}/messages [post]
func (c *ChatController) PostMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	communityID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.CreateMessageRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	// FILE messages carry the upload as a multipart part named "file"
	fileHeader, _ := ctx.FormFile("file")

	response, err := c.chatService.PostMessage(ctx.Request.Context(), communityID, userID, &req, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// GetMessage godoc
// @Summary Get a message
// @Description Retrieve one message with sender, file and reaction detail
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Message ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /messages/{messageId} [get]
func (c *ChatController) GetMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	messageID, err := pathID(ctx, "messageId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.chatService.GetMessage(ctx.Request.Context(), messageID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetThread godoc
// @Summary Get a thread
// @Description Retrieve a thread root and its replies in chronological order
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Thread root message ID"
// @Success 200 {object} dto.ThreadResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /messages/{messageId}/thread [get]
func (c *ChatController) GetThread(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	messageID, err := pathID(ctx, "messageId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.chatService.GetThread(ctx.Request.Context(), messageID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// PostThreadReply godoc
// @Summary Reply in a thread
// @Tags chat
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Thread root message ID"
// @Param request body dto.CreateThreadReplyRequest true "Reply data"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Replies cannot start their own thread"
// @Router /messages/{messageId}/thread [post]
func (c *ChatController) PostThreadReply(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	messageID, err := pathID(ctx, "messageId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.CreateThreadReplyRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	fileHeader, _ := ctx.FormFile("file")

	response, err := c.chatService.PostThreadReply(ctx.Request.Context(), messageID, userID, &req, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// EditMessage godoc
// @Summary Edit a message
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Message ID"
// @Param request body dto.UpdateMessageRequest true "New content"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse "Not the sender"
// @Router /messages/{messageId} [put]
func (c *ChatController) EditMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	messageID, err := pathID(ctx, "messageId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.UpdateMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.chatService.EditMessage(ctx.Request.Context(), messageID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// DeleteMessage godoc
// @Summary Delete a message
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Message ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /messages/{messageId} [delete]
func (c *ChatController) DeleteMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	messageID, err := pathID(ctx, "messageId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.chatService.DeleteMessage(ctx.Request.Context(), messageID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Message deleted"})
}

// Pin godoc
// @Summary Pin a message
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Message ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Moderators only"
// @Router /messages/{messageId}/pin [post]
func (c *ChatController) Pin(ctx *gin.Context) {
	c.setPinned(ctx, true)
}

// Unpin godoc
// @Summary Unpin a message
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Message ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Moderators only"
// @Router /messages/{messageId}/pin [delete]
func (c *ChatController) Unpin(ctx *gin.Context) {
	c.setPinned(ctx, false)
}

func (c *ChatController) setPinned(ctx *gin.Context, pinned bool) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	messageID, err := pathID(ctx, "messageId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.chatService.SetPinned(ctx.Request.Context(), messageID, userID, pinned); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Message pinned"
	if !pinned {
		message = "Message unpinned"
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: message})
}

// ListPinned godoc
// @Summary List pinned messages
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.MessageListResponse
// @Router /communities/{id}/messages/pinned [get]
func (c *ChatController) ListPinned(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	communityID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.chatService.ListPinned(ctx.Request.Context(), communityID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ListQuestions godoc
// @Summary List questions
// @Description Retrieve the community's Q&A view, optionally only unanswered questions
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param unansweredOnly query bool false "Only questions without an accepted answer"
// @Success 200 {object} dto.MessageListResponse
// @Router /communities/{id}/messages/questions [get]
func (c *ChatController) ListQuestions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	communityID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.ListQuestionsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.chatService.ListQuestions(ctx.Request.Context(), communityID, userID, req.UnansweredOnly)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ToggleReaction godoc
// @Summary Toggle a reaction
// @Description Add the user's emoji reaction if absent, remove it if present
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Message ID"
// @Param request body dto.ReactionRequest true "Emoji"
// @Success 200 {object} dto.SuccessResponse
// @Router /messages/{messageId}/reactions [post]
func (c *ChatController) ToggleReaction(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	messageID, err := pathID(ctx, "messageId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.ReactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	added, err := c.chatService.ToggleReaction(ctx.Request.Context(), messageID, userID, req.Emoji)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := "Reaction added"
	if !added {
		message = "Reaction removed"
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: message})
}

// RemoveReaction godoc
// @Summary Remove a reaction
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Message ID"
// @Param request body dto.ReactionRequest true "Emoji"
// @Success 200 {object} dto.SuccessResponse
// @Router /messages/{messageId}/reactions [delete]
func (c *ChatController) RemoveReaction(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	messageID, err := pathID(ctx, "messageId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.ReactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.chatService.RemoveReaction(ctx.Request.Context(), messageID, userID, req.Emoji); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Reaction removed"})
}

// MarkQuestion godoc
// @Summary Mark a message as a question
// @Description Flag the sender's own root message as a question for the Q&A view
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Message ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} dto.ErrorResponse "Not the sender"
// @Router /messages/{messageId}/question [post]
func (c *ChatController) MarkQuestion(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	messageID, err := pathID(ctx, "messageId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.chatService.MarkQuestion(ctx.Request.Context(), messageID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// AcceptAnswer godoc
// @Summary Accept an answer
// @Description Mark a thread reply as the accepted answer of a question
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param messageId path int true "Question message ID"
// @Param request body dto.AcceptAnswerRequest true "Answer reference"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse "Not a question or answer outside the thread"
// @Router /messages/{messageId}/answer [post]
func (c *ChatController) AcceptAnswer(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	questionID, err := pathID(ctx, "messageId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.AcceptAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.chatService.AcceptAnswer(ctx.Request.Context(), questionID, req.AnswerID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Answer accepted"})
}
