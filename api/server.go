package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/greencycle/ewaste-BE/internal/auction"
	"github.com/greencycle/ewaste-BE/internal/db"
	"github.com/greencycle/ewaste-BE/internal/geo"
	"github.com/greencycle/ewaste-BE/internal/realtime"
	"github.com/greencycle/ewaste-BE/internal/storage"
	"github.com/greencycle/ewaste-BE/internal/token"
	"github.com/greencycle/ewaste-BE/internal/util"
	"github.com/rs/zerolog/log"
)

type Server struct {
	router     *gin.Engine
	dbStore    db.Store
	engine     *auction.Engine
	hub        *realtime.Hub
	locator    *geo.Locator
	geocoder   *geo.Geocoder
	fileStore  storage.FileStore
	tokenMaker token.Maker
	config     *util.Config
}

// NewServer creates a new HTTP server and set up routing.
func NewServer(
	store db.Store,
	engine *auction.Engine,
	hub *realtime.Hub,
	locator *geo.Locator,
	geocoder *geo.Geocoder,
	fileStore storage.FileStore,
	config *util.Config,
) (*Server, error) {
	tokenMaker, err := token.NewJWTMaker(config.TokenSecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create token maker: %w", err)
	}
	log.Info().Msg("token maker created")

	server := &Server{
		dbStore:    store,
		engine:     engine,
		hub:        hub,
		locator:    locator,
		geocoder:   geocoder,
		fileStore:  fileStore,
		tokenMaker: tokenMaker,
		config:     config,
	}

	server.setupRouter()
	return server, nil
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.GET("/healthz", server.healthCheck)

	v1 := router.Group("/v1")

	v1.POST("/auth/register", server.registerUser)
	v1.POST("/auth/login", server.loginUser)

	userGroup := v1.Group("/users", authMiddleware(server.tokenMaker))
	{
		userGroup.GET("me", server.getCurrentUser)
	}

	componentGroup := v1.Group("/components")
	{
		componentGroup.GET("", server.listComponents)
		componentGroup.GET(":id", server.getComponentDetails)
		componentGroup.GET("by-slug/:slug", server.getComponentBySlug)

		componentGroup.Use(authMiddleware(server.tokenMaker))
		componentGroup.POST("", server.createComponent)
		componentGroup.POST(":id/bids", server.placeBid)
		componentGroup.POST(":id/purchase", server.buyComponent)
		componentGroup.DELETE(":id", server.deleteComponent)
	}

	notificationGroup := v1.Group("/notifications", authMiddleware(server.tokenMaker))
	{
		notificationGroup.GET("", server.listNotifications)
		notificationGroup.PATCH(":id/read", server.markNotificationRead)
		notificationGroup.DELETE(":id", server.deleteNotification)
	}

	shopGroup := v1.Group("/shops")
	{
		shopGroup.GET("", server.listShops)
		shopGroup.GET("nearby", server.listNearbyShops)

		shopGroup.Use(authMiddleware(server.tokenMaker), requiredAdminRole())
		shopGroup.POST("", server.createShop)
		shopGroup.DELETE(":id", server.deleteShop)
	}

	forumGroup := v1.Group("/forum/posts")
	{
		forumGroup.GET("", server.listForumPosts)
		forumGroup.GET(":id", server.getForumPostDetails)

		forumGroup.Use(authMiddleware(server.tokenMaker))
		forumGroup.POST("", server.createForumPost)
		forumGroup.DELETE(":id", server.deleteForumPost)
		forumGroup.POST(":id/replies", server.createForumReply)
	}

	v1.GET("/ws", server.handleWebSocket)

	server.router = router
}

func (server *Server) healthCheck(c *gin.Context) {
	if err := server.dbStore.Ping(c); err != nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start runs the HTTP server on the configured address.
func (server *Server) Start() error {
	return server.router.Run(server.config.HTTPServerAddress)
}
