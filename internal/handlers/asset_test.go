package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/assettrack/assettrack-backend/internal/handlers"
	"github.com/assettrack/assettrack-backend/internal/middleware"
	"github.com/assettrack/assettrack-backend/internal/repos"
	"github.com/assettrack/assettrack-backend/internal/server"
	"github.com/assettrack/assettrack-backend/internal/services"
	"github.com/assettrack/assettrack-backend/internal/testutil"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)

	storageService, err := services.NewStorageService(log, t.TempDir())
	if err != nil {
		t.Fatalf("NewStorageService: %v", err)
	}
	authService := services.NewAuthService(
		db, log,
		repos.NewUserRepo(db, log),
		repos.NewUserTokenRepo(db, log),
		"handler-test-secret",
		time.Hour,
		24*time.Hour,
	)
	assetService := services.NewAssetService(
		db, log,
		repos.NewAssetRepo(db, log),
		repos.NewServiceRepo(db, log),
		repos.NewServiceAttachmentRepo(db, log),
		storageService,
	)

	return server.NewRouter(server.RouterConfig{
		AuthHandler:    handlers.NewAuthHandler(authService),
		AuthMiddleware: middleware.NewAuthMiddleware(log, authService),
		AssetHandler:   handlers.NewAssetHandler(log, assetService),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func registerAndLogin(t *testing.T, router *gin.Engine) string {
	t.Helper()
	email := fmt.Sprintf("tester+%d@example.com", time.Now().UnixNano())

	w := doJSON(t, router, http.MethodPost, "/register", gin.H{
		"email":      email,
		"password":   "secret123",
		"first_name": "Test",
		"last_name":  "User",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/login", gin.H{
		"email":    email,
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatalf("login returned no access token")
	}
	return resp.AccessToken
}

type filePart struct {
	field    string
	filename string
	content  string
}

func doMultipart(t *testing.T, router *gin.Engine, token, path string, fields map[string]string, files ...filePart) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.Copy(part, strings.NewReader(f.content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func listAssets(t *testing.T, router *gin.Engine, token string) []services.AssetView {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/asset_all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", w.Code, w.Body.String())
	}
	var views []services.AssetView
	if err := json.Unmarshal(w.Body.Bytes(), &views); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	return views
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/asset_all", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestProtectedRoutesRejectForgedToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/asset_all", nil)
	req.Header.Set("Authorization", "Bearer forged.token.value")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with forged token, got %d", w.Code)
	}
}

func TestLegacyJWTQueryParamStillWorks(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	req := httptest.NewRequest(http.MethodGet, "/asset_all?jwt="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 via jwt query param, got %d %s", w.Code, w.Body.String())
	}
}

func TestAddAssetMissingRequiredFields(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	w := doMultipart(t, router, token, "/asset_add", map[string]string{
		"description": "no name or serial",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", w.Code, w.Body.String())
	}
}

func TestAddAssetMalformedDate(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	w := doMultipart(t, router, token, "/asset_add", map[string]string{
		"name":          "Laptop",
		"asset_sn":      "SN123",
		"acquired_date": "01-15-2024",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d %s", w.Code, w.Body.String())
	}
}

func TestAssetAddListDeleteFlow(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	w := doMultipart(t, router, token, "/asset_add", map[string]string{
		"name":          "Laptop",
		"asset_sn":      "SN123",
		"description":   "dev machine",
		"acquired_date": "2024-01-15",
	}, filePart{field: "image", filename: "front.png", content: "png-bytes"})
	if w.Code != http.StatusOK {
		t.Fatalf("add failed: %d %s", w.Code, w.Body.String())
	}
	var addResp struct {
		StatusCode int `json:"status_code"`
		Asset      struct {
			ID        string `json:"id"`
			ImagePath string `json:"image_path"`
		} `json:"asset"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &addResp); err != nil {
		t.Fatalf("decode add response: %v", err)
	}
	if addResp.StatusCode != http.StatusOK || addResp.Asset.ID == "" {
		t.Fatalf("unexpected add response: %s", w.Body.String())
	}
	if addResp.Asset.ImagePath == "" {
		t.Fatalf("image path not set in add response")
	}

	views := listAssets(t, router, token)
	if len(views) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(views))
	}
	if views[0].Name != "Laptop" || views[0].AssetSN != "SN123" || views[0].AcquiredDate != "2024-01-15" {
		t.Fatalf("listed asset mismatch: %+v", views[0])
	}

	req := httptest.NewRequest(http.MethodPost, "/asset_delete/"+addResp.Asset.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	dw := httptest.NewRecorder()
	router.ServeHTTP(dw, req)
	if dw.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", dw.Code, dw.Body.String())
	}

	if remaining := listAssets(t, router, token); len(remaining) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(remaining))
	}
}

func TestAddAssetWithDisallowedImageWarns(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	w := doMultipart(t, router, token, "/asset_add", map[string]string{
		"name":     "Scanner",
		"asset_sn": "SN200",
	}, filePart{field: "image", filename: "manual.pdf", content: "pdf"})
	if w.Code != http.StatusOK {
		t.Fatalf("add failed: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Warning string `json:"warning"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Warning == "" {
		t.Fatalf("expected warning for rejected file, body: %s", w.Body.String())
	}
}

func TestUsersCannotSeeEachOthersAssets(t *testing.T) {
	router := newTestRouter(t)
	tokenA := registerAndLogin(t, router)
	tokenB := registerAndLogin(t, router)

	w := doMultipart(t, router, tokenA, "/asset_add", map[string]string{
		"name":     "Private",
		"asset_sn": "SN300",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("add failed: %d %s", w.Code, w.Body.String())
	}

	for _, v := range listAssets(t, router, tokenB) {
		if v.AssetSN == "SN300" {
			t.Fatalf("user B can see user A's asset")
		}
	}
}

func TestEditAssetNotFound(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	w := doMultipart(t, router, token, "/asset_edit/2b6a6c19-0000-0000-0000-000000000000", map[string]string{
		"name":     "Ghost",
		"asset_sn": "SN404",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", w.Code, w.Body.String())
	}
}

func TestHealthcheckIsPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("healthcheck: %d", w.Code)
	}
}
