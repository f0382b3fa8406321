// Package httpapi exposes the authentication and catalog services over a
// JSON REST API.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avasiljevs/stockroom/internal/logging"
	"github.com/avasiljevs/stockroom/internal/server/auth"
	"github.com/avasiljevs/stockroom/internal/server/models"
	"github.com/avasiljevs/stockroom/internal/server/services"
)

// AuthService is the part of the auth service the transport relies on.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	SigningConfig() auth.SigningConfig
}

// ProductService is the part of the catalog service the transport relies on.
type ProductService interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context, page, pageSize int) ([]*models.Product, error)
	Create(ctx context.Context, name, createdBy string) (*models.Product, error)
	Update(ctx context.Context, id int64, name, modifiedBy string) error
	Delete(ctx context.Context, id int64) error
	Items(ctx context.Context, productID int64) ([]*models.Item, error)
	AddItem(ctx context.Context, productID int64, quantity int) (*models.Item, error)
	ImageUploadURL(ctx context.Context, productID int64) (string, string, error)
	ImageDownloadURL(ctx context.Context, productID int64) (string, error)
}

// Server wires the services into a gin engine.
type Server struct {
	engine   *gin.Engine
	auth     AuthService
	products ProductService
	logger   logging.Logger
}

func NewServer(a AuthService, p ProductService, l logging.Logger) *Server {
	s := &Server{
		auth:     a,
		products: p,
		logger:   l.With("module", "httpapi"),
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.POST("/auth/login", s.login)
	engine.POST("/auth/refresh", s.refresh)

	api := engine.Group("/api", requireAuth(a.SigningConfig()))
	api.GET("/products", s.listProducts)
	api.POST("/products", s.createProduct)
	api.GET("/products/:id", s.getProduct)
	api.PUT("/products/:id", s.updateProduct)
	api.DELETE("/products/:id", s.deleteProduct)
	api.GET("/products/:id/items", s.listItems)
	api.POST("/products/:id/items", s.addItem)
	api.POST("/products/:id/image/upload-url", s.imageUploadURL)
	api.GET("/products/:id/image/download-url", s.imageDownloadURL)

	s.engine = engine
	return s
}

// Handler returns the root http handler for mounting into an http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}
