package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/chat"
	"github.com/ZhaoZeLuWei/HelpMe/internal/handler"
	"github.com/ZhaoZeLuWei/HelpMe/internal/middlewares"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

// Deps carries everything the handlers are built from.
type Deps struct {
	DB        *gorm.DB
	Hub       *util.Hub
	ChatStore chat.Store
	Notifier  *chat.Notifier
	Storage   *util.ImageStorage
	JWT       *configs.TokenJWT
	App       *configs.AppConfig
	Log       *zap.Logger
}

func SetupRoutes(r *gin.Engine, d *Deps) {
	accountHandler := handler.NewAccountHandler(d.DB, d.Storage, d.JWT, d.App, d.Log)
	userHandler := handler.NewUserHandler(d.DB, d.Log)
	eventHandler := handler.NewEventHandler(d.DB, d.Storage, d.Log)
	uploadHandler := handler.NewUploadHandler(d.DB, d.Storage, d.Log)
	mediaHandler := handler.NewMediaHandler(d.Storage)
	verificationHandler := handler.NewVerificationHandler(d.DB, d.Storage, d.Notifier, d.Log)
	adminHandler := handler.NewAdminHandler(d.DB, d.ChatStore, d.Storage, d.JWT, d.Log)
	orderHandler := handler.NewOrderHandler(d.DB, d.Notifier, d.Log)
	reviewHandler := handler.NewReviewHandler(d.DB, d.Log)
	chatHandler := handler.NewChatHandler(d.DB, d.ChatStore, d.Log)
	websocketHandler := handler.NewWebsocketHandler(d.Hub, d.ChatStore, d.Log)

	r.GET("/img/:filename", mediaHandler.ServeImage)

	r.POST("/check-phone", accountHandler.PostCheckPhone)
	r.POST("/register", middlewares.RequireMultipart(), accountHandler.PostRegisterRequest)
	r.POST("/login", accountHandler.PostLoginRequest)
	r.POST("/admin/login", adminHandler.PostAdminLogin)

	r.GET("/api/cards", eventHandler.GetCards)
	r.GET("/events/:id", eventHandler.GetEvent)
	r.GET("/users/:id/events", userHandler.GetUserEvents)
	r.GET("/users/:id/profile", middlewares.OptionalJWT(d.JWT), userHandler.GetUserProfile)
	r.GET("/users/:id/comments", userHandler.GetUserComments)

	user := r.Group("/")
	{
		user.Use(middlewares.JWTMiddleware(d.JWT))
		user.Use(middlewares.Authorize(d.DB))
		user.Use(middlewares.AuthorizeRoles(constants.RoleUser))

		user.PUT("/users/:id/profile", userHandler.PutUserProfile)

		user.POST("/events", middlewares.RequireMultipart(), eventHandler.PostEvent)
		user.PUT("/events/:id", eventHandler.PutEvent)
		user.DELETE("/events/:id", eventHandler.DeleteEvent)

		user.POST("/upload/images", uploadHandler.UploadImages)
		user.DELETE("/upload/delete", uploadHandler.DeleteImage)

		user.POST("/verifications", middlewares.RequireMultipart(), verificationHandler.PostVerification)

		user.POST("/orders", orderHandler.PostOrder)
		user.GET("/orders", orderHandler.GetOrders)
		user.GET("/orders/open", orderHandler.GetOpenOrders)
		user.GET("/orders/:id", orderHandler.GetOrder)
		user.PUT("/orders/:id", orderHandler.PutOrder)
		user.PUT("/orders/:id/accept", orderHandler.PutAcceptOrder)
		user.PUT("/orders/:id/complete", orderHandler.PutCompleteOrder)
		user.PUT("/orders/:id/cancel", orderHandler.PutCancelOrder)
		user.GET("/orders/:id/reviews", reviewHandler.GetOrderReviews)
		user.POST("/reviews", reviewHandler.PostReview)

		user.POST("/api/rooms", chatHandler.PostRoom)
		user.GET("/api/rooms/list", chatHandler.GetRooms)
		user.GET("/api/messages/history", chatHandler.GetHistory)

		user.GET("/ws", websocketHandler.Connect)
	}

	staff := r.Group("/")
	{
		staff.Use(middlewares.JWTMiddleware(d.JWT))
		staff.Use(middlewares.Authorize(d.DB))
		staff.Use(middlewares.AuthorizeStaff())

		staff.GET("/adminVerify", verificationHandler.GetProviders)
		staff.GET("/adminVerify/detail/:providerId", verificationHandler.GetVerificationDetail)
		staff.POST("/adminVerify/approve", verificationHandler.PostApprove)
		staff.POST("/adminVerify/reject", verificationHandler.PostReject)

		staff.GET("/admin/users", adminHandler.GetUsers)
		staff.GET("/admin/users/:id", adminHandler.GetUser)
		staff.DELETE("/admin/users/:id", middlewares.AuthorizeAdmin(), adminHandler.DeleteUser)
	}
}
