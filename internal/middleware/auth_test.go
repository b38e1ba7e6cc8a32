package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xelth-com/ecktms/internal/auth"
)

func protected(secret string) http.Handler {
	return Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if ok {
			w.Header().Set("X-Client", claims["id"].(string))
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestAuth_Disabled(t *testing.T) {
	rec := httptest.NewRecorder()
	protected("").ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuth(t *testing.T) {
	bridge, err := auth.NewSigner("ui", auth.TokenTypeBridge, "s3cret", time.Hour).Token()
	require.NoError(t, err)
	client, err := auth.NewSigner("ui", auth.TokenTypeClient, "s3cret", time.Hour).Token()
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong token type", "Bearer " + client, http.StatusUnauthorized},
		{"valid", "Bearer " + bridge, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected("s3cret").ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "ui", rec.Header().Get("X-Client"))
			}
		})
	}
}
