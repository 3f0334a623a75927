package integration

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/routes"
	"github.com/repairhub/repairhub-api/services"
	"github.com/repairhub/repairhub-api/tests/testutil"
	"github.com/repairhub/repairhub-api/utils"
)

// newAppRouter builds the application router on db with local media storage under a
// temporary upload directory. Requests authenticate through testutil.TestUserHeader.
func newAppRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uploadDir := t.TempDir()
	previous := utils.UploadDir
	utils.UploadDir = uploadDir
	t.Cleanup(func() { utils.UploadDir = previous })

	return routes.New(routes.Deps{
		DB: db,
		Config: &config.Config{
			GoEnv:              "test",
			StorageDriver:      config.StorageDriverLocal,
			UploadDir:          uploadDir,
			DashboardCacheTTL:  time.Minute,
			CORSAllowedOrigins: []string{"*"},
		},
		Media:  services.NewLocalMediaStore(uploadDir),
		Cache:  services.NewMemoryCache(),
		Auth:   testutil.HeaderAuthMiddleware(),
		Logger: zap.NewNop(),
	})
}

// perform sends body as JSON on behalf of subject
func perform(t *testing.T, router *gin.Engine, method, path, subject string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set(testutil.TestUserHeader, subject)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// dataOf unmarshals the data member of a success envelope into dst
func dataOf(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.True(t, envelope.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

// errorCodeOf returns the code of an error envelope
func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.False(t, envelope.Success)
	return envelope.Error.Code
}

func dataURI(mime string, content []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(content)
}
