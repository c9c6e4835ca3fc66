package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emre/collabhub/internal/app/controllers"
	"github.com/emre/collabhub/internal/middleware"
	"github.com/emre/collabhub/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	communityController *controllers.CommunityController,
	chatController *controllers.ChatController,
	resourceController *controllers.ResourceController,
	eventController *controllers.EventController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
		auth.POST("/logout", authController.Logout)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Own profile
		users := authenticated.Group("/users")
		{
			users.GET("/me", userController.GetProfile)
			users.PUT("/me", userController.UpdateProfile)
			users.PUT("/me/avatar", userController.UpdateAvatar)
			users.PUT("/me/password", userController.ChangePassword)
		}

		// Communities and membership
		communities := authenticated.Group("/communities")
		{
			communities.GET("", communityController.List)
			communities.POST("", communityController.Create)
			communities.GET("/:id", communityController.Get)
			communities.PUT("/:id", communityController.Update)
			communities.DELETE("/:id", communityController.Delete)
			communities.PUT("/:id/avatar", communityController.UpdateAvatar)
			communities.PUT("/:id/owner", communityController.TransferOwnership)

			communities.POST("/:id/join", communityController.Join)
			communities.POST("/:id/leave", communityController.Leave)
			communities.GET("/:id/members", communityController.ListMembers)
			communities.POST("/:id/members/:userId/approve", communityController.ApproveMember)
			communities.POST("/:id/members/:userId/reject", communityController.RejectMember)
			communities.PUT("/:id/members/:userId/role", communityController.UpdateMemberRole)
			communities.DELETE("/:id/members/:userId", communityController.RemoveMember)

			// Channel chat
			communities.GET("/:id/messages", chatController.ListMessages)
			communities.POST("/:id/messages", chatController.PostMessage)
			communities.GET("/:id/messages/pinned", chatController.ListPinned)
			communities.GET("/:id/messages/questions", chatController.ListQuestions)

			// Live channel subscription
			communities.GET("/:id/ws", wsHandler.HandleConnection)

			// Shared resources
			communities.GET("/:id/resources", resourceController.List)
			communities.POST("/:id/resources", resourceController.Create)

			// Calendar
			communities.GET("/:id/events", eventController.List)
			communities.POST("/:id/events", eventController.Create)
		}

		// Message-scoped operations
		messages := authenticated.Group("/messages")
		{
			messages.GET("/:messageId", chatController.GetMessage)
			messages.PUT("/:messageId", chatController.EditMessage)
			messages.DELETE("/:messageId", chatController.DeleteMessage)
			messages.GET("/:messageId/thread", chatController.GetThread)
			messages.POST("/:messageId/thread", chatController.PostThreadReply)
			messages.POST("/:messageId/pin", chatController.Pin)
			messages.DELETE("/:messageId/pin", chatController.Unpin)
			messages.POST("/:messageId/reactions", chatController.ToggleReaction)
			messages.DELETE("/:messageId/reactions", chatController.RemoveReaction)
			messages.POST("/:messageId/question", chatController.MarkQuestion)
			messages.POST("/:messageId/answer", chatController.AcceptAnswer)
		}

		// Resource-scoped operations
		resources := authenticated.Group("/resources")
		{
			resources.GET("/:resourceId", resourceController.Get)
			resources.PUT("/:resourceId", resourceController.Update)
			resources.DELETE("/:resourceId", resourceController.Delete)
			resources.GET("/:resourceId/download", resourceController.Download)
			resources.POST("/:resourceId/like", resourceController.Like)
			resources.DELETE("/:resourceId/like", resourceController.Unlike)
		}

		// Event-scoped operations
		events := authenticated.Group("/events")
		{
			events.GET("/:eventId", eventController.Get)
			events.PUT("/:eventId", eventController.Update)
			events.DELETE("/:eventId", eventController.Delete)
			events.PUT("/:eventId/rsvp", eventController.RSVP)
			events.DELETE("/:eventId/rsvp", eventController.CancelRSVP)
			events.GET("/:eventId/rsvps", eventController.ListRSVPs)
		}
	}
}
