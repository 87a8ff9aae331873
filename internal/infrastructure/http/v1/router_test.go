package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kantina/internal/core/apperror"
	"kantina/internal/core/entity"
	"kantina/internal/core/types"
	"kantina/internal/domain/auth"
	"kantina/internal/domain/catalogs/counterparty"
	"kantina/internal/domain/catalogs/product"
	"kantina/internal/domain/catalogs/warehouse"
	"kantina/internal/domain/documents/stockdoc"
	"kantina/internal/domain/reports"
	"kantina/internal/infrastructure/cache"
	"kantina/internal/infrastructure/http/v1/handlers"
	"kantina/internal/jobs"
	"kantina/pkg/logger"
)

type stubUserRepo struct {
	user *auth.User
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, apperror.NewNotFound("user", email)
}

type stubSnapshots struct {
	snap *reports.Snapshot
}

func (s *stubSnapshots) Snapshot(context.Context) (*reports.Snapshot, error) {
	return s.snap, nil
}

func testSnapshot() *reports.Snapshot {
	flour := product.New("P-001", "Flour", "kg")
	main := warehouse.New("W-001", "Main")
	alfa := counterparty.New(counterparty.KindSupplier, "S-001", "Alfa")
	receipt := &stockdoc.Receipt{
		Document:    entity.NewDocument("R-1", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		SupplierID:  alfa.ID,
		WarehouseID: main.ID,
		Lines: []stockdoc.ReceiptLine{
			{ProductID: flour.ID, Quantity: types.MustQty("100"), UnitPrice: types.MustMoney("10")},
		},
	}
	receipt.Status = entity.StatusConfirmed
	return &reports.Snapshot{
		Version:       1,
		Products:      []*product.Product{flour},
		Warehouses:    []*warehouse.Warehouse{main},
		Suppliers:     []*counterparty.Counterparty{alfa},
		GoodsReceipts: []*stockdoc.Receipt{receipt},
	}
}

func testRouter(t *testing.T) (http.Handler, *auth.JWTService) {
	t.Helper()

	reportCache, err := cache.NewReportCache(time.Minute)
	require.NoError(t, err)
	return testRouterWithCache(t, reportCache)
}

func testRouterWithCache(t *testing.T, reportCache handlers.ReportCache) (http.Handler, *auth.JWTService) {
	t.Helper()

	log := logger.Default()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := auth.NewUser("admin@kantina.local", string(hash))

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	authService := auth.NewService(&stubUserRepo{user: user}, jwtService, log)

	router := NewRouter(RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		AuthService:  authService,
		Reports:      reports.NewService(log),
		Snapshots:    &stubSnapshots{snap: testSnapshot()},
		Cache:        reportCache,
	})
	return router, jwtService
}

func doRequest(router http.Handler, method, url, token string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginAndFetchTurnover(t *testing.T) {
	router, _ := testRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"admin@kantina.local","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)

	w = doRequest(router, http.MethodGet,
		"/api/v1/reports/turnover?from=2025-06-01&to=2025-06-30", login.AccessToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var report reports.TurnoverReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report.Rows, 1)
	require.Equal(t, "Flour", report.Rows[0].ProductName)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, _ := testRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/auth/login", "",
		`{"email":"admin@kantina.local","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportsRequireToken(t *testing.T) {
	router, _ := testRouter(t)

	w := doRequest(router, http.MethodGet,
		"/api/v1/reports/turnover?from=2025-06-01&to=2025-06-30", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTurnoverRejectsBadDates(t *testing.T) {
	router, jwtService := testRouter(t)
	token, _, err := jwtService.GenerateAccessToken("u1", "admin@kantina.local")
	require.NoError(t, err)

	w := doRequest(router, http.MethodGet,
		"/api/v1/reports/turnover?from=junk&to=2025-06-30", token, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, apperror.CodeValidation, resp.Code)
}

func TestAgingServedFromCacheIsIdentical(t *testing.T) {
	router, jwtService := testRouter(t)
	token, _, err := jwtService.GenerateAccessToken("u1", "admin@kantina.local")
	require.NoError(t, err)

	first := doRequest(router, http.MethodGet,
		"/api/v1/reports/suppliers/aging?cutoff=2025-06-30", token, "")
	require.Equal(t, http.StatusOK, first.Code)

	second := doRequest(router, http.MethodGet,
		"/api/v1/reports/suppliers/aging?cutoff=2025-06-30", token, "")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

// Reports warmed by the worker process must be served by the API: both
// sides open their own client to the same Redis instance.
func TestWorkerWarmedReportServedToAPI(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	serverClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = serverClient.Close() })
	serverCache, err := cache.NewRedisCache(serverClient, time.Minute)
	require.NoError(t, err)
	router, jwtService := testRouterWithCache(t, serverCache)

	workerClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = workerClient.Close() })
	workerCache, err := cache.NewRedisCache(workerClient, time.Minute)
	require.NoError(t, err)

	log := logger.Default()
	warmup := jobs.NewWarmupHandler(reports.NewService(log), &stubSnapshots{snap: testSnapshot()}, workerCache, log)
	day := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, warmup.Warm(ctx, day))

	// A sentinel overwrite proves the response comes from the shared
	// store, not a recomputation.
	sentinel := []byte(`{"cutoff":"sentinel"}`)
	workerCache.Set(ctx, fmt.Sprintf("%d:supplier-aging:2025-06-30", testSnapshot().Version), sentinel)

	token, _, err := jwtService.GenerateAccessToken("u1", "admin@kantina.local")
	require.NoError(t, err)

	w := doRequest(router, http.MethodGet,
		"/api/v1/reports/suppliers/aging?cutoff=2025-06-30", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, sentinel, w.Body.Bytes())
}
