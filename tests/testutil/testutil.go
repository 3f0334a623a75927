package testutil

import "testing"

// SetTestEnvironment points every configuration key at harmless test values
func SetTestEnvironment(t *testing.T) {
	t.Helper()

	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "sqlite://memory")
	t.Setenv("AUTH0_DOMAIN", "test.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.test.com")
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("REDIS_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
}
