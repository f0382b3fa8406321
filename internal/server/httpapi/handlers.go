package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avasiljevs/stockroom/internal/common"
	"github.com/avasiljevs/stockroom/internal/server/models"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type productRequest struct {
	Name string `json:"name" binding:"required"`
}

type productResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	CreatedBy  string     `json:"created_by"`
	CreatedOn  time.Time  `json:"created_on"`
	ModifiedBy string     `json:"modified_by,omitempty"`
	ModifiedOn *time.Time `json:"modified_on,omitempty"`
	HasImage   bool       `json:"has_image"`
}

type itemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type itemResponse struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func toProductResponse(p *models.Product) productResponse {
	r := productResponse{
		ID:        p.ID,
		Name:      p.ProductName,
		CreatedBy: p.CreatedBy,
		CreatedOn: p.CreatedOn,
		HasImage:  p.ImageKey != "",
	}
	if !p.ModifiedOn.IsZero() {
		r.ModifiedBy = p.ModifiedBy
		t := p.ModifiedOn
		r.ModifiedOn = &t
	}
	return r
}

// writeError maps service errors onto HTTP statuses. Authentication failures
// deliberately carry no detail.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrorUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
	default:
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair, err := s.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pair, err := s.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

func (s *Server) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	products, err := s.products.List(c.Request.Context(), page, pageSize)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product, err := s.products.Create(c.Request.Context(), req.Name, c.GetString(usernameKey))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(product))
}

func (s *Server) getProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := s.products.GetByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

func (s *Server) updateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.products.Update(c.Request.Context(), id, req.Name, c.GetString(usernameKey)); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := s.products.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) listItems(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	items, err := s.products.Items(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemResponse{ID: item.ID, ProductID: item.ProductID, Quantity: item.Quantity})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) addItem(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := s.products.AddItem(c.Request.Context(), id, req.Quantity)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, itemResponse{ID: item.ID, ProductID: item.ProductID, Quantity: item.Quantity})
}

func (s *Server) imageUploadURL(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	key, url, err := s.products.ImageUploadURL(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "url": url})
}

func (s *Server) imageDownloadURL(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	url, err := s.products.ImageDownloadURL(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
