package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/auth"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/config"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/core"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store/sqlite"
)

type testEnv struct {
	server *httptest.Server
	store  store.Store
	auth   *auth.Service
	hub    *core.Hub
	db     *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	var rawDB *sql.DB
	st, err := sqlite.NewWithSetup(":memory:", func(db *sql.DB) error {
		rawDB = db
		return nil
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	logger := zerolog.Nop()
	hub := core.NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.JWTSecret = "test-secret"

	server := NewServer(hub, authService, st, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, store: st, auth: authService, hub: hub, db: rawDB}
}

// register creates an account through the service and returns its token and user.
func (e *testEnv) register(t *testing.T, name, email string) (string, *store.User) {
	t.Helper()

	token, user, err := e.auth.Register(context.Background(), name, email, "password123")
	if err != nil {
		t.Fatalf("failed to register %s: %v", email, err)
	}
	return token, user
}

// promote flips a user's role directly in the database. Admin accounts have
// no API path by design; deployments seed them.
func (e *testEnv) promote(t *testing.T, userID int64, role store.Role) string {
	t.Helper()

	if _, err := e.db.Exec("UPDATE users SET role = ? WHERE id = ?", role, userID); err != nil {
		t.Fatalf("failed to promote user %d: %v", userID, err)
	}

	user, err := e.store.GetUserByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to reload user %d: %v", userID, err)
	}
	token, err := auth.GenerateToken(&auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}, user)
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}
	return token
}

// doJSON performs a request against the test server and decodes the response
// body into out when non-nil.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any, out any) *stdhttp.Response {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := stdhttp.NewRequest(method, e.server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp
}
