package router

import (
	"agora/internal/handlers"
	"agora/internal/middleware"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	DB       *gorm.DB
	Identity *middleware.Identity
	Users    *services.UserService
	Content  *services.ContentService
	Threads  *services.ThreadService
	Likes    *services.LikeService
	Karma    *services.KarmaService
}

// NewDeps wires every service onto one database handle.
func NewDeps(conn *gorm.DB, userCacheSize int) (Deps, error) {
	users := services.NewUserService(conn)
	identity, err := middleware.NewIdentity(users, userCacheSize)
	if err != nil {
		return Deps{}, err
	}
	return Deps{
		DB:       conn,
		Identity: identity,
		Users:    users,
		Content:  services.NewContentService(conn),
		Threads:  services.NewThreadService(conn),
		Likes:    services.NewLikeService(conn),
		Karma:    services.NewKarmaService(conn),
	}, nil
}

// RegisterRoutes mounts the JSON API. Session middleware must already be
// installed on r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	healthHandler := handlers.NewHealthHandler(d.DB)
	authHandler := handlers.NewAuthHandler(d.Users, d.Karma, d.Identity)
	postHandler := handlers.NewPostHandler(d.Content, d.Threads)
	commentHandler := handlers.NewCommentHandler(d.Content, d.Threads)
	likeHandler := handlers.NewLikeHandler(d.Likes)
	leaderboardHandler := handlers.NewLeaderboardHandler(d.Karma)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(d.Identity.LoadUser())
	{
		api.GET("/health", healthHandler.Health)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		api.GET("/posts", postHandler.List)
		api.GET("/posts/:id", postHandler.Detail)
		api.GET("/comments/:id", commentHandler.Detail)
		api.GET("/leaderboard", leaderboardHandler.Top)
	}

	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/auth/user", authHandler.CurrentUser)
		authorized.POST("/posts", postHandler.Create)
		authorized.POST("/comments", commentHandler.Create)
		authorized.POST("/likes", likeHandler.Like)
	}
}
