// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"framasa/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
	GetTree(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// This eliminates the need to manually wire up routes for each catalog.
// Authentication is enforced at the group level; hard deletes are admin-only.
//
// Usage:
//
//	repo := catalog_repo.NewCategoryRepo(txm)
//	service := domain.NewCatalogService(repo, txm, ...)
//	handler := handlers.NewCategoryHandler(baseHandler, service)
//	RegisterCatalogRoutes(catalogs.Group("/categories"), handler)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/tree", handler.GetTree)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", middleware.RequireAdmin(), handler.Delete)
	group.POST("/:id/deletion-mark", handler.SetDeletionMark)
}
