// AngelaMos | 2026
// handler_test.go

package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhpc-ltd/blog-api/internal/core"
	"github.com/nhpc-ltd/blog-api/internal/middleware"
)

func as(claims *middleware.AccessTokenClaims) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if claims == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithClaims(r.Context(), claims)))
		})
	}
}

func newTestRouter(claims *middleware.AccessTokenClaims) (http.Handler, *memRepo) {
	repo := newMemRepo()
	h := NewHandler(NewService(repo))

	r := chi.NewRouter()
	h.RegisterRoutes(r, as(claims), as(claims))
	h.RegisterAdminRoutes(r, as(claims), middleware.RequireAdmin)
	return r, repo
}

func send(h http.Handler, method, path, body string) (*httptest.ResponseRecorder, core.Response) {
	req := httptest.NewRequestWithContext(context.Background(), method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp core.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

const signup = `{"username":"ravi","email":"ravi@nhpc.in","password":"correct-horse"}`

func TestHandlerRegister(t *testing.T) {
	r, _ := newTestRouter(nil)

	rec, _ := send(r, http.MethodPost, "/user", signup)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correct-horse")

	rec, resp := send(r, http.MethodPost, "/user",
		`{"username":"other","email":"ravi@nhpc.in","password":"correct-horse"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User with this email already exists", resp.Error.Message)

	rec, _ = send(r, http.MethodPost, "/user", `{"username":"x y","email":"bad","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerRegisterAdmin(t *testing.T) {
	body := `{"username":"boss","email":"boss@nhpc.in","password":"correct-horse","type":"admin"}`

	r, _ := newTestRouter(nil)
	rec, _ := send(r, http.MethodPost, "/user", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	r, _ = newTestRouter(&middleware.AccessTokenClaims{UserID: "a1", Role: middleware.RoleAdmin})
	rec, _ = send(r, http.MethodPost, "/user", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandlerIsAdmin(t *testing.T) {
	r, repo := newTestRouter(nil)
	repo.add(User{ID: "u1", Name: "meena", Email: "meena@nhpc.in", Role: RoleAdmin})

	rec, resp := send(r, http.MethodGet, "/isAdmin?name=meena", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"role": RoleAdmin}, resp.Data)

	_, resp = send(r, http.MethodGet, "/isAdmin?name=ghost", "")
	assert.Equal(t, map[string]any{"role": nil}, resp.Data)

	rec, _ = send(r, http.MethodGet, "/isAdmin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerProfileHidesEmail(t *testing.T) {
	r, repo := newTestRouter(nil)
	repo.add(User{ID: "u1", Name: "meena", Email: "meena@nhpc.in", Role: RoleUser})

	rec, resp := send(r, http.MethodGet, "/users/meena", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "meena@nhpc.in")

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, DefaultDesignation, data["designation"])

	rec, _ = send(r, http.MethodGet, "/users/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerUpdateMe(t *testing.T) {
	r, repo := newTestRouter(&middleware.AccessTokenClaims{UserID: "u1", Role: middleware.RoleUser})
	repo.add(User{ID: "u1", Name: "meena", Email: "meena@nhpc.in", Role: RoleUser})

	rec, _ := send(r, http.MethodPut, "/users/me",
		`{"image":"https://cdn.nhpc.in/m.png","designation":"Astronaut","bio":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = send(r, http.MethodPut, "/users/me",
		`{"image":"https://cdn.nhpc.in/m.png","designation":"Manager","bio":"hydro"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := repo.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Manager", stored.Designation)
}

func TestHandlerAdminRoutesRequireAdmin(t *testing.T) {
	r, _ := newTestRouter(&middleware.AccessTokenClaims{UserID: "u1", Role: middleware.RoleUser})
	rec, _ := send(r, http.MethodGet, "/admin/users/", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	r, repo := newTestRouter(&middleware.AccessTokenClaims{UserID: "a1", Role: middleware.RoleAdmin})
	repo.add(User{ID: "u1", Name: "meena", Email: "meena@nhpc.in", Role: RoleUser})

	rec, resp := send(r, http.MethodGet, "/admin/users/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)

	rec, _ = send(r, http.MethodPut, "/admin/users/u1/role", `{"role":"admin"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
