package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/collabhub/internal/app/models/dto"
	"github.com/emre/collabhub/internal/app/services"
	"github.com/emre/collabhub/internal/middleware"
)

// ResourceController handles shared resource operations
type ResourceController struct {
	resourceService services.ResourceService
}

// NewResourceController creates a new ResourceController
func NewResourceController(resourceService services.ResourceService) *ResourceController {
	return &ResourceController{resourceService: resourceService}
}

// Create godoc
// @Summary Share a resource
// @Description Share a LINK resource as JSON, or a FILE resource as multipart form data
// @Tags resources
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param request body dto.CreateResourceRequest true "Resource data"
// @Success 201 {object} dto.ResourceResponse
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /communities/{id}/resources [post]
func (c *ResourceController) Create(ctx *gin.Context) {
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

	var req dto.CreateResourceRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	fileHeader, _ := ctx.FormFile("file")

	response, err := c.resourceService.CreateResource(ctx.Request.Context(), communityID, userID, &req, fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// Get godoc
// @Summary Get a resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param resourceId path int true "Resource ID"
// @Success 200 {object} dto.ResourceResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /resources/{resourceId} [get]
func (c *ResourceController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	resourceID, err := pathID(ctx, "resourceId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.resourceService.GetResource(ctx.Request.Context(), resourceID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// List godoc
// @Summary List community resources
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "Community ID"
// @Param kind query string false "Resource kind filter" Enums(FILE, LINK)
// @Param search query string false "Search in title and description"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ResourceListResponse
// @Router /communities/{id}/resources [get]
func (c *ResourceController) List(ctx *gin.Context) {
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

	var req dto.ListResourcesRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.resourceService.ListResources(ctx.Request.Context(), communityID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Update godoc
// @Summary Edit a resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resourceId path int true "Resource ID"
// @Param request body dto.UpdateResourceRequest true "Resource data"
// @Success 200 {object} dto.ResourceResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /resources/{resourceId} [put]
func (c *ResourceController) Update(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	resourceID, err := pathID(ctx, "resourceId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	var req dto.UpdateResourceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.resourceService.UpdateResource(ctx.Request.Context(), resourceID, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Delete godoc
// @Summary Delete a resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param resourceId path int true "Resource ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /resources/{resourceId} [delete]
func (c *ResourceController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	resourceID, err := pathID(ctx, "resourceId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	if err := c.resourceService.DeleteResource(ctx.Request.Context(), resourceID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Resource deleted"})
}

// Download godoc
// @Summary Download a resource file
// @Description Stream the resource's file and count the download
// @Tags resources
// @Produce octet-stream
// @Security BearerAuth
// @Param resourceId path int true "Resource ID"
// @Success 200 {file} binary
// @Failure 400 {object} dto.ErrorResponse "Resource has no file"
// @Router /resources/{resourceId}/download [get]
func (c *ResourceController) Download(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	resourceID, err := pathID(ctx, "resourceId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	file, err := c.resourceService.Download(ctx.Request.Context(), resourceID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.FileAttachment(file.FilePath, file.FileName)
}

// Like godoc
// @Summary Like a resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param resourceId path int true "Resource ID"
// @Success 200 {object} dto.LikeResponse
// @Router /resources/{resourceId}/like [post]
func (c *ResourceController) Like(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	resourceID, err := pathID(ctx, "resourceId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.resourceService.Like(ctx.Request.Context(), resourceID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Unlike godoc
// @Summary Remove a like
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param resourceId path int true "Resource ID"
// @Success 200 {object} dto.LikeResponse
// @Router /resources/{resourceId}/like [delete]
func (c *ResourceController) Unlike(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		unauthorized(ctx)
		return
	}
	resourceID, err := pathID(ctx, "resourceId")
	if err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	response, err := c.resourceService.Unlike(ctx.Request.Context(), resourceID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}
