// AngelaMos | 2026
// erp_test.go

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhpc-ltd/blog-api/internal/config"
)

func TestERPClientAuthenticate(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr error
	}{
		{"success true", http.StatusOK, `{"success": true, "name": "Ravi"}`, true, nil},
		{"success false", http.StatusOK, `{"success": false}`, false, nil},
		{"truthy but not bool", http.StatusOK, `{"success": "yes"}`, false, nil},
		{"missing field", http.StatusOK, `{"name": "Ravi"}`, false, nil},
		{"non json body", http.StatusOK, `OK`, false, nil},
		{"unauthorized", http.StatusUnauthorized, `{"success": true}`, false, nil},
		{"server error", http.StatusBadGateway, ``, false, ErrERPUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var got erpRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				assert.Equal(t, "E1001", got.User)
				assert.Equal(t, "pw", got.Password)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewERPClient(config.ERPConfig{URL: srv.URL, Timeout: time.Second})
			ok, err := c.Authenticate(context.Background(), "E1001", "pw")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestERPClientCustomSuccessField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"authenticated": true}`))
	}))
	defer srv.Close()

	c := NewERPClient(config.ERPConfig{URL: srv.URL, SuccessField: "authenticated"})
	ok, err := c.Authenticate(context.Background(), "E1001", "pw")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestERPClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewERPClient(config.ERPConfig{URL: url, Timeout: 200 * time.Millisecond})
	_, err := c.Authenticate(context.Background(), "E1001", "pw")
	assert.ErrorIs(t, err, ErrERPUnavailable)
}
