package app

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/crudkit/db/models"
)

type apiResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Data json.RawMessage `json:"data"`
}

type apiService struct {
	ID                uint64 `json:"id"`
	Name              string `json:"name"`
	Port              uint16 `json:"port"`
	MaxAccessDuration string `json:"max_access_duration"`
	CreatedAt         string `json:"created_at"`
}

func TestAppServeIntegration(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 10*time.Second)
	defer cancel()

	app, err := newTestApp(tctx)
	h(assert.NoError(t, err))

	cfgJSON := `{
		"server": {"error_level": "full"},
		"services": {"default_max_access_duration": "2h"},
		"users": {"alice": ["admin"], "bob": ["viewer"]}
	}`
	err = vfs.WriteFile(app.ctx.FS, "/config.json", []byte(cfgJSON), 0o644)
	h(assert.NoError(t, err))

	err = initTestDB(app.ctx, []*models.Service{
		{Name: "web", Port: 80, MaxAccessDuration: time.Hour},
	})
	h(assert.NoError(t, err))

	addrCh := make(chan string, 1)
	app.stderr.waitFor(`started listener.*address=(\S+)`, 1, addrCh)

	runErr := make(chan error, 1)
	go func() {
		runErr <- app.Run("serve", "127.0.0.1:0")
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case err = <-runErr:
		h(assert.NoError(t, err))
		t.FailNow()
	case <-tctx.Done():
		t.Fatal("timed out waiting for the server to start")
	}

	baseURL := fmt.Sprintf("http://%s/api/v1", addr)
	do := func(t *testing.T, method, path, user, body string) (int, http.Header, apiResponse) {
		t.Helper()
		var bodyR io.Reader
		if body != "" {
			bodyR = strings.NewReader(body)
		}
		req, rerr := http.NewRequestWithContext(tctx, method, baseURL+path, bodyR)
		require.NoError(t, rerr)
		if user != "" {
			req.Header.Set("X-Forwarded-User", user)
		}

		resp, rerr := http.DefaultClient.Do(req)
		require.NoError(t, rerr)
		defer resp.Body.Close()

		var apiResp apiResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiResp))

		return resp.StatusCode, resp.Header, apiResp
	}
	errMsg := func(r apiResponse) string {
		if r.Error == nil {
			return ""
		}
		return r.Error.Message
	}
	service := func(t *testing.T, r apiResponse) apiService {
		t.Helper()
		var svc apiService
		require.NoError(t, json.Unmarshal(r.Data, &svc))
		return svc
	}

	t.Run("err/unauthenticated", func(t *testing.T) {
		code, _, resp := do(t, http.MethodGet, "/services", "", "")
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "missing user header", errMsg(resp))

		code, _, resp = do(t, http.MethodGet, "/services", "mallory", "")
		require.Equal(t, http.StatusUnauthorized, code)
		require.Equal(t, "unknown user", errMsg(resp))
	})

	t.Run("ok/get", func(t *testing.T) {
		code, header, resp := do(t, http.MethodGet, "/services/1", "bob", "")
		require.Equal(t, http.StatusOK, code)
		require.NotEmpty(t, header.Get("X-Request-Id"))
		require.Equal(t, "application/json", header.Get("Content-Type"))
		require.Equal(t, apiService{
			ID: 1, Name: "web", Port: 80, MaxAccessDuration: "1h",
			CreatedAt: "2025-01-01T00:00:00Z",
		}, service(t, resp))
	})

	t.Run("err/get", func(t *testing.T) {
		code, _, resp := do(t, http.MethodGet, "/services/99", "bob", "")
		require.Equal(t, http.StatusNotFound, code)
		require.Equal(t, "service with ID 99 doesn't exist", errMsg(resp))

		code, _, resp = do(t, http.MethodGet, "/services/abc", "bob", "")
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "invalid service ID", errMsg(resp))
	})

	t.Run("err/create_forbidden", func(t *testing.T) {
		code, _, resp := do(t, http.MethodPost, "/services", "bob", `{"name": "api", "port": 8000}`)
		require.Equal(t, http.StatusForbidden, code)
		require.Equal(t, "user 'bob' is not allowed to create services/api", errMsg(resp))
	})

	t.Run("ok/create", func(t *testing.T) {
		code, _, resp := do(t, http.MethodPost, "/services", "alice", `{"name": "api", "port": 8000}`)
		require.Equal(t, http.StatusCreated, code)
		require.Equal(t, apiService{
			ID: 2, Name: "api", Port: 8000, MaxAccessDuration: "2h",
			CreatedAt: "2025-01-01T00:00:00Z",
		}, service(t, resp))
	})

	t.Run("err/create", func(t *testing.T) {
		code, _, resp := do(t, http.MethodPost, "/services", "alice", `{"name": "api", "port": 8001}`)
		require.Equal(t, http.StatusConflict, code)
		require.Equal(t, "service with name 'api' already exists", errMsg(resp))

		code, _, resp = do(t, http.MethodPost, "/services", "alice", `{"name": "x", "port": 70000}`)
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, "port must be between 1 and 65535", errMsg(resp))

		code, _, resp = do(t, http.MethodPost, "/services", "alice", `{"owner": "alice"}`)
		require.Equal(t, http.StatusBadRequest, code)
		require.Equal(t, `failed decoding request body: json: unknown field "owner"`, errMsg(resp))
	})

	t.Run("ok/update", func(t *testing.T) {
		code, _, resp := do(t, http.MethodPut, "/services/2", "alice",
			`{"port": 9000, "max_access_duration": "1d"}`)
		require.Equal(t, http.StatusOK, code)
		svc := service(t, resp)
		require.Equal(t, uint16(9000), svc.Port)
		require.Equal(t, "1d", svc.MaxAccessDuration)
	})

	t.Run("ok/list_compact", func(t *testing.T) {
		code, _, resp := do(t, http.MethodGet, "/services?compact=true&order=-port", "bob", "")
		require.Equal(t, http.StatusOK, code)
		var svcs []apiService
		require.NoError(t, json.Unmarshal(resp.Data, &svcs))
		require.Equal(t, []apiService{
			{ID: 2, Name: "api", Port: 9000, MaxAccessDuration: "1d"},
			{ID: 1, Name: "web", Port: 80, MaxAccessDuration: "1h"},
		}, svcs)
	})

	t.Run("ok/delete", func(t *testing.T) {
		code, _, resp := do(t, http.MethodDelete, "/services/2", "alice", "")
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "api", service(t, resp).Name)

		code, _, _ = do(t, http.MethodGet, "/services/2", "alice", "")
		require.Equal(t, http.StatusNotFound, code)
	})

	cancel()
	select {
	case err = <-runErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the server to stop")
	}
}
