package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/collabhub/internal/app/models"
	"github.com/emre/collabhub/internal/app/models/dto"
	"github.com/emre/collabhub/internal/app/services"
	"github.com/emre/collabhub/internal/middleware"
)

// CommunityController handles community and membership operations
type CommunityController struct {
	communityService services.CommunityService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService) *CommunityController {
	return &CommunityController{communityService: communityService}
}

// Create godoc
// @Summary Create a community
// @Description Create a community, the caller becomes its owner
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommunityRequest true "Community data"
// @Success 201 {object} dto.CommunityResponse
// @Failure 409 {object} dto.ErrorResponse "Name or slug already taken"
// @Router /communities [post]
func (c *CommunityController) Create(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}

	var req dto.CreateCommunityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.communityService.CreateCommunity(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// Get godoc
// @Summary Get a community
// @Description Retrieve a community by numeric ID, or by slug when the path segment is not a number
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID or slug"
// @Success 200 {object} dto.CommunityResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /communities/{id} [get]
func (c *CommunityController) Get(ctx *gin.Context) {
	// Non-numeric path segments are treated as slugs
	id, err := pathID(ctx, "id")
	if err != nil {
		response, err := c.communityService.GetCommunityBySlug(ctx.Request.Context(), ctx.Param("id"))
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, response)
		return
	}

	response, err := c.communityService.GetCommunity(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// List godoc
// @Summary List communities
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search in name and description"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} dto.CommunityListResponse
// @Router /communities [get]
func (c *CommunityController) List(ctx *gin.Context) {
	var req dto.ListCommunitiesRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.communityService.ListCommunities(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Update godoc
// @Summary Update community settings
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.UpdateCommunityRequest true "Settings"
// @Success 200 {object} dto.CommunityResponse
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Router /communities/{id} [put]
func (c *CommunityController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.UpdateCommunityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.communityService.UpdateCommunity(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// UpdateAvatar godoc
// @Summary Upload a community avatar
// @Tags communities
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param avatar formData file true "Avatar image"
// @Success 200 {object} dto.CommunityResponse
// @Router /communities/{id}/avatar [put]
func (c *CommunityController) UpdateAvatar(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("avatar")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.communityService.UpdateAvatar(ctx.Request.Context(), id, userID, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Delete godoc
// @Summary Delete a community
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Router /communities/{id} [delete]
func (c *CommunityController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.communityService.DeleteCommunity(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Community deleted"})
}

// Join godoc
// @Summary Join a community
// @Description Join an OPEN community immediately or request to join an APPROVAL one
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.JoinResponse
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Router /communities/{id}/join [post]
func (c *CommunityController) Join(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.communityService.Join(ctx.Request.Context(), id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Leave godoc
// @Summary Leave a community
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 409 {object} dto.ErrorResponse "Owner cannot leave"
// @Router /communities/{id}/leave [post]
func (c *CommunityController) Leave(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.communityService.Leave(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Left community"})
}

// ListMembers godoc
// @Summary List community members
// @Description List active members, or pending join requests with status=PENDING (moderators only)
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param status query string false "Membership status filter" Enums(ACTIVE, PENDING) default(ACTIVE)
// @Success 200 {object} dto.MemberListResponse
// @Router /communities/{id}/members [get]
func (c *CommunityController) ListMembers(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	status := models.MembershipStatusActive
	if ctx.Query("status") == string(models.MembershipStatusPending) {
		status = models.MembershipStatusPending
	}

	response, err := c.communityService.ListMembers(ctx.Request.Context(), id, userID, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ApproveMember godoc
// @Summary Approve a pending join request
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param userId path int true "User ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /communities/{id}/members/{userId}/approve [post]
func (c *CommunityController) ApproveMember(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}
	memberID, err := pathID(ctx, "userId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.communityService.ApproveMember(ctx.Request.Context(), id, actorID, memberID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Member approved"})
}

// RejectMember godoc
// @Summary Reject a pending join request
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param userId path int true "User ID"
// @Success 200 {object} dto.SuccessResponse
// @Router /communities/{id}/members/{userId}/reject [post]
func (c *CommunityController) RejectMember(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}
	memberID, err := pathID(ctx, "userId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.communityService.RejectMember(ctx.Request.Context(), id, actorID, memberID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Request rejected"})
}

// UpdateMemberRole godoc
// @Summary Change a member's role
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param userId path int true "User ID"
// @Param request body dto.UpdateMemberRoleRequest true "New role"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Router /communities/{id}/members/{userId}/role [put]
func (c *CommunityController) UpdateMemberRole(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}
	memberID, err := pathID(ctx, "userId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.communityService.UpdateMemberRole(ctx.Request.Context(), id, actorID, memberID, models.CommunityRole(req.Role)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Role updated"})
}

// TransferOwnership godoc
// @Summary Transfer community ownership
// @Description Hand the community to another active member; the previous owner becomes a moderator
// @Tags communities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.TransferOwnershipRequest true "New owner"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Router /communities/{id}/owner [put]
func (c *CommunityController) TransferOwnership(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.TransferOwnershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.communityService.TransferOwnership(ctx.Request.Context(), id, actorID, req.NewOwnerID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Ownership transferred"})
}

// RemoveMember godoc
// @Summary Remove a member
// @Tags communities
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param userId path int true "User ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /communities/{id}/members/{userId} [delete]
func (c *CommunityController) RemoveMember(ctx *gin.Context) {
	actorID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}
	memberID, err := pathID(ctx, "userId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.communityService.RemoveMember(ctx.Request.Context(), id, actorID, memberID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Member removed"})
}
