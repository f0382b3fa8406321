package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avasiljevs/stockroom/internal/common"
	"github.com/avasiljevs/stockroom/internal/logging"
	"github.com/avasiljevs/stockroom/internal/server/auth"
	"github.com/avasiljevs/stockroom/internal/server/models"
	"github.com/avasiljevs/stockroom/internal/server/services"
)

var testSigning = auth.SigningConfig{
	Secret:    []byte("test-secret"),
	Issuer:    "stockroom",
	Audience:  "stockroom-api",
	AccessTTL: time.Minute,
}

type fakeAuthService struct {
	authErr    error
	refreshErr error
	pair       *services.TokenPair

	gotUsername string
	gotPassword string
	gotRefresh  string
}

func (f *fakeAuthService) Authenticate(ctx context.Context, username, password string) (*services.TokenPair, error) {
	f.gotUsername, f.gotPassword = username, password
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.pair, nil
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	f.gotRefresh = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.pair, nil
}

func (f *fakeAuthService) SigningConfig() auth.SigningConfig {
	return testSigning
}

type fakeProductService struct {
	product *models.Product
	items   []*models.Item
	err     error

	gotName      string
	gotCreatedBy string
	gotModifier  string
	gotDeleted   int64
	gotQuantity  int
}

func (f *fakeProductService) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

func (f *fakeProductService) List(ctx context.Context, page, pageSize int) ([]*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.product == nil {
		return nil, nil
	}
	return []*models.Product{f.product}, nil
}

func (f *fakeProductService) Create(ctx context.Context, name, createdBy string) (*models.Product, error) {
	f.gotName, f.gotCreatedBy = name, createdBy
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: 1, ProductName: name, CreatedBy: createdBy, CreatedOn: time.Now()}, nil
}

func (f *fakeProductService) Update(ctx context.Context, id int64, name, modifiedBy string) error {
	f.gotName, f.gotModifier = name, modifiedBy
	return f.err
}

func (f *fakeProductService) Delete(ctx context.Context, id int64) error {
	f.gotDeleted = id
	return f.err
}

func (f *fakeProductService) Items(ctx context.Context, productID int64) ([]*models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func (f *fakeProductService) AddItem(ctx context.Context, productID int64, quantity int) (*models.Item, error) {
	f.gotQuantity = quantity
	if f.err != nil {
		return nil, f.err
	}
	return &models.Item{ID: 1, ProductID: productID, Quantity: quantity}, nil
}

func (f *fakeProductService) ImageUploadURL(ctx context.Context, productID int64) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "products/k", "https://storage.local/put", nil
}

func (f *fakeProductService) ImageDownloadURL(ctx context.Context, productID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.local/get", nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestServer(t *testing.T, a *fakeAuthService, p *fakeProductService) *Server {
	t.Helper()
	if a == nil {
		a = &fakeAuthService{}
	}
	if p == nil {
		p = &fakeProductService{}
	}
	return NewServer(a, p, testLogger())
}

func doJSON(t *testing.T, s *Server, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func bearerToken(t *testing.T, username string) string {
	t.Helper()
	token, err := auth.GenerateToken(username, testSigning)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return token
}

func TestLogin(t *testing.T) {
	a := &fakeAuthService{pair: &services.TokenPair{AccessToken: "at", RefreshToken: "rt"}}
	s := newTestServer(t, a, nil)

	w := doJSON(t, s, http.MethodPost, "/auth/login", `{"username":"alice","password":"secret"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["access_token"] != "at" || resp["refresh_token"] != "rt" {
		t.Fatalf("unexpected body: %v", resp)
	}
	if a.gotUsername != "alice" || a.gotPassword != "secret" {
		t.Fatalf("credentials not passed through: %q/%q", a.gotUsername, a.gotPassword)
	}
}

func TestLoginFailures(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		authErr    error
		wantStatus int
	}{
		{"bad credentials", `{"username":"alice","password":"wrong"}`, common.ErrorUnauthorized, http.StatusUnauthorized},
		{"store down", `{"username":"alice","password":"secret"}`, common.ErrorUnavailable, http.StatusServiceUnavailable},
		{"missing fields", `{"username":"alice"}`, nil, http.StatusBadRequest},
		{"not json", `hello`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeAuthService{authErr: tt.authErr}, nil)
			w := doJSON(t, s, http.MethodPost, "/auth/login", tt.body, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("want %d, got %d: %s", tt.wantStatus, w.Code, w.Body)
			}
		})
	}
}

func TestLoginUnauthorizedBodyIsGeneric(t *testing.T) {
	s := newTestServer(t, &fakeAuthService{authErr: common.ErrorUnauthorized}, nil)

	w := doJSON(t, s, http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
	if w.Body.String() != `{"error":"unauthorized"}` {
		t.Fatalf("401 body must carry no detail, got %s", w.Body)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	a := &fakeAuthService{pair: &services.TokenPair{AccessToken: "at2", RefreshToken: "rt2"}}
	s := newTestServer(t, a, nil)

	w := doJSON(t, s, http.MethodPost, "/auth/refresh", `{"refresh_token":"rt1"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body)
	}
	if a.gotRefresh != "rt1" {
		t.Fatalf("token not passed through: %q", a.gotRefresh)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["refresh_token"] != "rt2" {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestRefreshEndpointRejected(t *testing.T) {
	s := newTestServer(t, &fakeAuthService{refreshErr: common.ErrorUnauthorized}, nil)

	w := doJSON(t, s, http.MethodPost, "/auth/refresh", `{"refresh_token":"stale"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", w.Code)
	}
	if w.Body.String() != `{"error":"unauthorized"}` {
		t.Fatalf("401 body must carry no detail, got %s", w.Body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name   string
		bearer string
	}{
		{"no header", ""},
		{"garbage token", "not-a-jwt"},
		{"wrong key", func() string {
			cfg := testSigning
			cfg.Secret = []byte("other")
			token, _ := auth.GenerateToken("alice", cfg)
			return token
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodGet, "/api/products", "", tt.bearer)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("want 401, got %d", w.Code)
			}
		})
	}
}

func TestCreateProductStampsSubject(t *testing.T) {
	p := &fakeProductService{}
	s := newTestServer(t, nil, p)

	w := doJSON(t, s, http.MethodPost, "/api/products", `{"name":"bolt M6"}`, bearerToken(t, "alice"))
	if w.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", w.Code, w.Body)
	}
	if p.gotName != "bolt M6" || p.gotCreatedBy != "alice" {
		t.Fatalf("want name/creator passed through, got %q/%q", p.gotName, p.gotCreatedBy)
	}
}

func TestGetProduct(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &fakeProductService{product: &models.Product{
		ID: 7, ProductName: "bolt M6", CreatedBy: "alice", CreatedOn: created, ImageKey: "products/k",
	}}
	s := newTestServer(t, nil, p)

	w := doJSON(t, s, http.MethodGet, "/api/products/7", "", bearerToken(t, "alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", w.Code, w.Body)
	}

	var resp productResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ID != 7 || resp.Name != "bolt M6" || !resp.HasImage {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if resp.ModifiedOn != nil {
		t.Fatalf("unmodified product must omit modification fields")
	}
}

func TestGetProductNotFound(t *testing.T) {
	s := newTestServer(t, nil, &fakeProductService{err: common.ErrorNotFound})

	w := doJSON(t, s, http.MethodGet, "/api/products/7", "", bearerToken(t, "alice"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestGetProductBadID(t *testing.T) {
	s := newTestServer(t, nil, nil)

	w := doJSON(t, s, http.MethodGet, "/api/products/abc", "", bearerToken(t, "alice"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	p := &fakeProductService{}
	s := newTestServer(t, nil, p)

	w := doJSON(t, s, http.MethodPut, "/api/products/7", `{"name":"bolt M8"}`, bearerToken(t, "bob"))
	if w.Code != http.StatusNoContent {
		t.Fatalf("update: want 204, got %d: %s", w.Code, w.Body)
	}
	if p.gotName != "bolt M8" || p.gotModifier != "bob" {
		t.Fatalf("update args not passed through: %q/%q", p.gotName, p.gotModifier)
	}

	w = doJSON(t, s, http.MethodDelete, "/api/products/7", "", bearerToken(t, "bob"))
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: want 204, got %d", w.Code)
	}
	if p.gotDeleted != 7 {
		t.Fatalf("delete id not passed through: %d", p.gotDeleted)
	}
}

func TestItemsEndpoints(t *testing.T) {
	p := &fakeProductService{items: []*models.Item{
		{ID: 1, ProductID: 7, Quantity: 3},
		{ID: 2, ProductID: 7, Quantity: 5},
	}}
	s := newTestServer(t, nil, p)

	w := doJSON(t, s, http.MethodGet, "/api/products/7/items", "", bearerToken(t, "alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("list items: want 200, got %d: %s", w.Code, w.Body)
	}
	var items []itemResponse
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}

	w = doJSON(t, s, http.MethodPost, "/api/products/7/items", `{"quantity":4}`, bearerToken(t, "alice"))
	if w.Code != http.StatusCreated {
		t.Fatalf("add item: want 201, got %d: %s", w.Code, w.Body)
	}
	if p.gotQuantity != 4 {
		t.Fatalf("quantity not passed through: %d", p.gotQuantity)
	}

	w = doJSON(t, s, http.MethodPost, "/api/products/7/items", `{"quantity":0}`, bearerToken(t, "alice"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero quantity: want 400, got %d", w.Code)
	}
}

func TestImageURLEndpoints(t *testing.T) {
	s := newTestServer(t, nil, &fakeProductService{})

	w := doJSON(t, s, http.MethodPost, "/api/products/7/image/upload-url", "", bearerToken(t, "alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("upload-url: want 200, got %d: %s", w.Code, w.Body)
	}
	var up map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &up); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if up["key"] == "" || up["url"] == "" {
		t.Fatalf("unexpected body: %v", up)
	}

	w = doJSON(t, s, http.MethodGet, "/api/products/7/image/download-url", "", bearerToken(t, "alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("download-url: want 200, got %d: %s", w.Code, w.Body)
	}
}

func TestStoreDownMapsTo503(t *testing.T) {
	s := newTestServer(t, nil, &fakeProductService{err: common.ErrorUnavailable})

	w := doJSON(t, s, http.MethodGet, "/api/products", "", bearerToken(t, "alice"))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", w.Code)
	}
}
