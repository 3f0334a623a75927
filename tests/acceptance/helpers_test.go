package acceptance

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
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

// startServer serves the application over a real listener. Requests authenticate
// through testutil.TestUserHeader and media lands in a temporary directory.
func startServer(t *testing.T, db *gorm.DB) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uploadDir := t.TempDir()
	previous := utils.UploadDir
	utils.UploadDir = uploadDir

	server := httptest.NewServer(routes.New(routes.Deps{
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
	}))
	t.Cleanup(func() {
		server.Close()
		utils.UploadDir = previous
	})
	return server
}

// apiResponse is a decoded response envelope
type apiResponse struct {
	Status     int             `json:"-"`
	Header     http.Header     `json:"-"`
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"totalPages"`
	} `json:"pagination"`
	Unread int64 `json:"unread"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Decode unmarshals the data member into dst
func (r apiResponse) Decode(t *testing.T, dst interface{}) {
	t.Helper()
	require.True(t, r.Success, "expected a success envelope, got %d %s", r.Status, r.Error.Code)
	require.NoError(t, json.Unmarshal(r.Data, dst))
}

// makeRequest sends body as JSON to the server on behalf of subject
func makeRequest(t *testing.T, server *httptest.Server, method, path, subject string, body interface{}) apiResponse {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, server.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set(testutil.TestUserHeader, subject)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	result := apiResponse{Status: resp.StatusCode, Header: resp.Header}
	require.NoError(t, json.Unmarshal(raw, &result), string(raw))
	return result
}

// fetch downloads path without decoding the body
func fetch(t *testing.T, server *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()

	resp, err := server.Client().Get(server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func dataURI(mime string, content []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(content)
}
