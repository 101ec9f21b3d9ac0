package rest_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shelftrack/api/rest"
	"shelftrack/config"
	"shelftrack/core/inspection"
	"shelftrack/core/inventory"
	"shelftrack/core/registry"
	"shelftrack/core/stats"
	mw "shelftrack/middleware"
	"shelftrack/storage"
	"shelftrack/testutil"
)

type testEnv struct {
	r        *gin.Engine
	db       *gorm.DB
	registry *registry.Registry
	token    string
}

// newTestEnv wires the full router against an in-memory DB and returns a
// logged-in session token.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	c := testutil.SetupTestCache(t)
	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: 72 * time.Hour}
	logger := zap.NewNop()

	reg := registry.New(db, logger)
	mgr := inventory.NewManager(db, reg, logger)
	proc := inspection.NewProcessor(db, logger)
	agg := stats.NewAggregator(db, logger)
	uploads, err := storage.NewUploads(t.TempDir(), 10)
	require.NoError(t, err)

	authH := rest.NewAuthHandler(db, c, sec)
	shelfH := rest.NewShelfHandler(reg, nil)
	matH := rest.NewMaterialHandler(mgr, uploads, nil)
	inspH := rest.NewInspectionHandler(proc, nil)
	statsH := rest.NewStatsHandler(agg)

	r := gin.New()
	r.POST("/api/auth/register", authH.Register)
	r.POST("/api/auth/login", authH.Login)
	api := r.Group("/api", mw.Auth(sec, c))
	{
		api.POST("/auth/logout", authH.Logout)
		api.POST("/auth/refresh", authH.Refresh)
		api.POST("/shelves", shelfH.Create)
		api.GET("/shelves", shelfH.List)
		api.GET("/shelves/:id", shelfH.Get)
		api.DELETE("/shelves/:id", shelfH.Delete)
		api.POST("/materials", matH.Create)
		api.GET("/materials", matH.List)
		api.GET("/materials/:id", matH.Get)
		api.PUT("/materials/:id", matH.Update)
		api.DELETE("/materials/:id", matH.Delete)
		api.POST("/inspections", inspH.Create)
		api.GET("/inspections", inspH.List)
		api.GET("/stats", statsH.Get)
	}

	env := &testEnv{r: r, db: db, registry: reg}

	w := postJSON(r, "/api/auth/register", map[string]string{
		"username": "keeper",
		"email":    "keeper@example.com",
		"password": "pass1234",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postJSON(r, "/api/auth/login", map[string]string{
		"username": "keeper",
		"password": "pass1234",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var lr map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lr))
	env.token = lr["token"].(string)

	return env
}

func postJSON(r *gin.Engine, path string, body interface{}, token string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// doForm sends a multipart form request, optionally attaching one file under
// the "image" field.
func doForm(t *testing.T, r *gin.Engine, method, path string, fields map[string]string, fileContent []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, form.WriteField(k, v))
	}
	if fileContent != nil {
		fw, err := form.CreateFormFile("image", "photo.jpg")
		require.NoError(t, err)
		_, err = io.Copy(fw, bytes.NewReader(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, form.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
