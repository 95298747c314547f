package blog

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API on router. protect guards every route
// that needs an authenticated user.
func RegisterRoutes(router fiber.Router, h *Controller, protect fiber.Handler) {
	auth := router.Group("/auth")
	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Get("/me", protect, h.Me)

	categories := router.Group("/categories")
	categories.Get("/", h.ListCategories)
	categories.Get("/:id", h.GetCategory)
	categories.Post("/", protect, h.CreateCategory)
	categories.Put("/:id", protect, h.UpdateCategory)
	categories.Delete("/:id", protect, h.DeleteCategory)

	posts := router.Group("/posts")
	posts.Get("/", h.ListPosts)
	posts.Get("/:id", h.GetPost)
	posts.Post("/", protect, h.CreatePost)
	posts.Put("/:id", protect, h.UpdatePost)
	posts.Delete("/:id", protect, h.DeletePost)

	posts.Post("/:postId/comments", protect, h.CreateComment)
	posts.Get("/:postId/comments", protect, h.ListComments)

	posts.Post("/:postId/like", protect, h.LikePost)
	posts.Delete("/:postId/unlike", protect, h.UnlikePost)
	posts.Get("/:postId/likes", protect, h.CountLikes)
	posts.Get("/:postId/liked", protect, h.HasLiked)
	posts.Get("/:postId/likers", protect, h.ListLikers)

	comments := router.Group("/comments", protect)
	comments.Put("/:id", h.UpdateComment)
	comments.Delete("/:id", h.DeleteComment)
}

// HealthHandler reports the process is up
func HealthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
