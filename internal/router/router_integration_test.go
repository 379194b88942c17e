//go:build integration

package router

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"cafebook/internal/auth"
	"cafebook/internal/config"
	"cafebook/internal/infra"
	"cafebook/internal/model"
	"cafebook/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

type e2eEnv struct {
	server *httptest.Server
	token  string
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var (
		req *http.Request
		err error
	)
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("cafebook_test"),
		tcPostgres.WithUsername("cafebook"),
		tcPostgres.WithPassword("cafebook"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                    "test",
		Timezone:               "UTC",
		DatabaseURL:            pgURL,
		RedisURL:               rdURL,
		JWTSecret:              "e2e-secret",
		AccessTokenMinutes:     60,
		RefreshTokenHours:      24,
		OTPTTLSeconds:          300,
		ProductCacheTTLSeconds: 60,
		ShiftStart:             "07:00",
		AttendanceRadiusMeters: 100,
		PDFStoragePath:         t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed a manager holding every permission.
	role := &model.Role{Code: "manager", Name: "Quản lý"}
	require.NoError(t, db.Create(role).Error)
	group := &model.PermissionGroup{Name: "Tất cả"}
	for _, code := range []string{
		model.PermProductManage, model.PermProductView, model.PermOrderCreate,
		model.PermInvoiceView, model.PermStatisticsView,
	} {
		group.Permissions = append(group.Permissions, model.Permission{Module: "e2e", Action: code, Code: code})
	}
	require.NoError(t, db.Create(group).Error)
	require.NoError(t, db.Model(role).Association("PermissionGroups").Append(group))
	require.NoError(t, db.Create(&model.Employee{
		Phone: "0900000000", Name: "Quản lý E2E", NationalID: "079000000000", RoleID: role.ID, Active: true,
	}).Error)
	hash, err := bcrypt.GenerateFromPassword([]byte("cafebook2026"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Credential{Phone: "0900000000", PasswordHash: string(hash)}).Error)

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: cfg.JWTSecret, AccessTTL: cfg.AccessTTL(), RefreshTTL: cfg.RefreshTTL(),
	}, nil)
	require.NoError(t, err)

	r, err := New(Deps{
		Config:     cfg,
		DB:         db,
		Redis:      rdb,
		Tokens:     tokens,
		Dispatcher: worker.NewDispatcher(rdb),
		Registry:   prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	resp := do(t, srv, http.MethodPost, "/v1/auth/login",
		jsonBody(t, map[string]string{"phone": "0900000000", "password": "cafebook2026"}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, resp, &login)
	require.NotEmpty(t, login.AccessToken)

	return &e2eEnv{server: srv, token: login.AccessToken}
}

func TestE2E_OrderCycle(t *testing.T) {
	env := setupE2E(t)

	resp := do(t, env.server, http.MethodPost, "/v1/products",
		jsonBody(t, map[string]any{"name": "Cà phê sữa đá", "price": "25000", "category": "drink"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &prod)

	resp = do(t, env.server, http.MethodPost, "/v1/invoices", nil, env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var inv struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &inv)

	// Concurrent batches against one invoice must yield a gap-free 1..N.
	sizes := []int{3, 4, 2, 5, 1, 3}
	var wg sync.WaitGroup
	for _, n := range sizes {
		items := make([]map[string]any, n)
		for i := range items {
			items[i] = map[string]any{"product_id": prod.ID, "quantity": 1}
		}
		body, err := json.Marshal(map[string]any{"items": items})
		require.NoError(t, err)

		wg.Add(1)
		go func(body []byte) {
			defer wg.Done()
			r := do(t, env.server, http.MethodPost, "/v1/invoices/"+itoa(inv.ID)+"/lines", bytes.NewBuffer(body), env.token)
			r.Body.Close()
			assert.Equal(t, http.StatusCreated, r.StatusCode)
		}(body)
	}
	wg.Wait()

	resp = do(t, env.server, http.MethodGet, "/v1/invoices/"+itoa(inv.ID), nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var full struct {
		Lines []struct {
			LineNo int `json:"line_no"`
		} `json:"lines"`
	}
	decodeJSON(t, resp, &full)

	got := make([]int, len(full.Lines))
	for i, l := range full.Lines {
		got[i] = l.LineNo
	}
	sort.Ints(got)
	want := make([]int, 0, 18)
	for i := 1; i <= 18; i++ {
		want = append(want, i)
	}
	assert.Equal(t, want, got)

	today := time.Now().UTC().Format("2006-01-02")
	resp = do(t, env.server, http.MethodGet, "/v1/statistics?type=day&date="+today, nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		InvoiceCount int64  `json:"invoice_count"`
		Revenue      string `json:"revenue"`
		ItemsSold    int    `json:"items_sold"`
	}
	decodeJSON(t, resp, &stats)
	assert.EqualValues(t, 1, stats.InvoiceCount)
	assert.Equal(t, 18, stats.ItemsSold)
	assert.Equal(t, "450000", stats.Revenue)
}

func TestE2E_UnknownProductAbortsBatch(t *testing.T) {
	env := setupE2E(t)

	resp := do(t, env.server, http.MethodPost, "/v1/invoices", nil, env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var inv struct {
		ID uint `json:"id"`
	}
	decodeJSON(t, resp, &inv)

	resp = do(t, env.server, http.MethodPost, "/v1/invoices/"+itoa(inv.ID)+"/lines",
		jsonBody(t, map[string]any{"items": []map[string]any{{"product_id": 9999, "quantity": 1}}}), env.token)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, env.server, http.MethodGet, "/v1/invoices/"+itoa(inv.ID), nil, env.token)
	var full struct {
		Lines []json.RawMessage `json:"lines"`
	}
	decodeJSON(t, resp, &full)
	assert.Empty(t, full.Lines)
}
