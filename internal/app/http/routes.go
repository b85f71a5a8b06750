package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	adminapi "lorekeeper/internal/api/admin"
	authapi "lorekeeper/internal/api/auth"
	storiesapi "lorekeeper/internal/api/stories"
	usersapi "lorekeeper/internal/api/users"
	worksapi "lorekeeper/internal/api/works"
	"lorekeeper/internal/app/http/middleware"
	"lorekeeper/internal/domain/users"
)

type Deps struct {
	JWTSecret string
	Auth      *authapi.Handler
	Users     *usersapi.Handler
	Admin     *adminapi.Handler
	Stories   *storiesapi.Handler
	Works     *worksapi.Handler
}

// RegisterRoutes mounts everything under /api. Reads are public, writes need an admin token.
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	public := api.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/signin", d.Auth.Signin)

	read := api.Group("/")
	read.Use(middleware.OptionalAuth(d.JWTSecret))
	read.GET("/story-sets", d.Stories.Sets.Tree)
	read.GET("/story-sets/:id", d.Stories.Sets.Detail)
	read.GET("/stories", d.Stories.List)
	read.GET("/stories/:id", d.Stories.Get)
	read.GET("/stories/:id/relations", d.Stories.Relations)

	read.GET("/works-sets", d.Works.Sets.Tree)
	read.GET("/works-sets/:id", d.Works.Sets.Detail)
	read.GET("/works", d.Works.List)
	read.GET("/works/:id", d.Works.Get)

	// Admin
	admin := api.Group("/")
	admin.Use(
		middleware.AuthMiddleware(d.JWTSecret),
		middleware.RequireRole(users.RoleAdmin),
		middleware.SanitizeAndCleanInputMiddleware(),
	)

	admin.GET("/me", d.Users.GetCurrentUser)
	admin.POST("/me/password", d.Users.ChangePassword)
	admin.GET("/admin/dashboard", d.Admin.AdminDashboard)

	admin.POST("/story-sets", d.Stories.Sets.Create)
	admin.PUT("/story-sets/:id", d.Stories.Sets.Update)
	admin.DELETE("/story-sets/:id", d.Stories.Sets.Delete)

	admin.POST("/stories", d.Stories.Create)
	admin.PUT("/stories/:id", d.Stories.Update)
	admin.DELETE("/stories/:id", d.Stories.Delete)

	admin.POST("/story-set-rel/add", d.Stories.AddToSet)
	admin.POST("/story-set-rel/remove", d.Stories.RemoveFromSet)
	admin.POST("/story-set-rel/order", d.Stories.Reorder)

	admin.POST("/stories/:id/relations", d.Stories.AddRelation)
	admin.DELETE("/story-relations/:id", d.Stories.RemoveRelation)

	admin.POST("/works-sets", d.Works.Sets.Create)
	admin.PUT("/works-sets/:id", d.Works.Sets.Update)
	admin.DELETE("/works-sets/:id", d.Works.Sets.Delete)

	admin.POST("/works", d.Works.Create)
	admin.PUT("/works/:id", d.Works.Update)
	admin.DELETE("/works/:id", d.Works.Delete)

	admin.POST("/works-set-rel/add", d.Works.AddToSet)
	admin.POST("/works-set-rel/remove", d.Works.RemoveFromSet)
	admin.POST("/works-set-rel/order", d.Works.Reorder)
}
