//go:build integration

package e2e

// End-to-end integration tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - ruleset creation, simulation run, apply, ledger, rollback
//   - margin guard lifting a low-rotation discount to the floor
//   - price drift between simulate and apply (item skipped)
//   - role enforcement (viewer cannot apply)

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"

	"github.com/Neo52000/ma-papeterie-sub003/internal/config"
	"github.com/Neo52000/ma-papeterie-sub003/internal/infra"
	"github.com/Neo52000/ma-papeterie-sub003/internal/middleware"
	"github.com/Neo52000/ma-papeterie-sub003/internal/router"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
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

// mintToken signs a test JWT the way cmd/gentoken does: tokens are issued
// out of band, the API only validates them.
func mintToken(t *testing.T, secret, username, role string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server  *httptest.Server
	manager string // manager JWT
	viewer  string // viewer JWT
	db      *gorm.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("papeterie_test"),
		tcPostgres.WithUsername("papeterie"),
		tcPostgres.WithPassword("papeterie"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:              8000,
		Env:               "test",
		JWTSecret:         "test-secret-key",
		DatabaseURL:       pgURL,
		MigrationsPath:    "../../migrations",
		RedisURL:          rdURL,
		SalesLookbackDays: 365,
		WorkerPoolSize:    1,
		PDFStoragePath:    t.TempDir(),
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	require.NoError(t, infra.RunMigrations(db, cfg.MigrationsPath))

	gin.SetMode(gin.TestMode)
	r, _ := router.New(cfg, db, rdb, infra.NewMetrics())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		server:  srv,
		manager: mintToken(t, cfg.JWTSecret, "gerante", middleware.RoleManager),
		viewer:  mintToken(t, cfg.JWTSecret, "stagiaire", middleware.RoleViewer),
		db:      db,
	}
}

// seedProduct inserts a product plus optional cost and last-sale rows and
// returns the product id.
func (e *testEnv) seedProduct(t *testing.T, name, category, priceHT string, stock *int, unitCost string, lastSale *time.Time) string {
	t.Helper()
	id := uuid.NewString()
	res := e.db.Exec(
		`INSERT INTO products (id, name, category, price_ht, stock_quantity, is_active)
		 VALUES (?, ?, ?, ?::numeric, ?, true)`,
		id, name, category, priceHT, stock,
	)
	require.NoError(t, res.Error)

	if unitCost != "" {
		res = e.db.Exec(
			`INSERT INTO supplier_prices (product_id, supplier_name, unit_cost)
			 VALUES (?, 'Papeco', ?::numeric)`,
			id, unitCost,
		)
		require.NoError(t, res.Error)
	}
	if lastSale != nil {
		res = e.db.Exec(
			`INSERT INTO sales (product_id, quantity, sold_at) VALUES (?, 1, ?)`,
			id, *lastSale,
		)
		require.NoError(t, res.Error)
	}
	return id
}

func (e *testEnv) createRuleset(t *testing.T, name string, rules []map[string]any) string {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/rulesets",
		jsonBody(t, map[string]any{"name": name, "rules": rules}), e.manager)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var body struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &body)
	require.NotEmpty(t, body.ID)
	return body.ID
}

type simulationBody struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	ProductCount  int    `json:"product_count"`
	AffectedCount int    `json:"affected_count"`
	Items         []struct {
		ProductID      string `json:"product_id"`
		RuleType       string `json:"rule_type"`
		OldPriceHT     string `json:"old_price_ht"`
		NewPriceHT     string `json:"new_price_ht"`
		BlockedByGuard bool   `json:"blocked_by_guard"`
	} `json:"items"`
}

func (e *testEnv) runSimulation(t *testing.T, rulesetID string) simulationBody {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/simulations",
		jsonBody(t, map[string]any{"ruleset_id": rulesetID}), e.manager)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sim simulationBody
	decodeJSON(t, resp, &sim)
	return sim
}

func (e *testEnv) productPrice(t *testing.T, productID string) string {
	t.Helper()
	var price string
	require.NoError(t, e.db.Raw(`SELECT price_ht::text FROM products WHERE id = ?`, productID).Scan(&price).Error)
	return price
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full cycle: ruleset → simulation → apply → ledger → rollback.
func TestE2E_SimulateApplyRollback(t *testing.T) {
	env := setupTestEnv(t)

	currentMonth := int(time.Now().UTC().Month())
	rulesetID := env.createRuleset(t, "Rentrée scolaire", []map[string]any{
		{
			"name":      "Hausse saisonnière",
			"rule_type": "seasonality",
			"priority":  10,
			"params":    json.RawMessage(fmt.Sprintf(`{"months":[%d],"adjustment_percent":10}`, currentMonth)),
		},
	})

	prodID := env.seedProduct(t, "Cahier 96p", "cahiers", "2.50", nil, "1.20", nil)

	sim := env.runSimulation(t, rulesetID)
	assert.Equal(t, "completed", sim.Status)
	require.Len(t, sim.Items, 1)
	assert.Equal(t, prodID, sim.Items[0].ProductID)
	assert.Equal(t, "2.75", sim.Items[0].NewPriceHT)

	// Dry run only: live price untouched.
	assert.Equal(t, "2.50", env.productPrice(t, prodID))

	// Apply commits the price and writes the ledger.
	applyResp := do(t, env.server, "POST", "/v1/simulations/"+sim.ID+"/apply", nil, env.manager)
	require.Equal(t, http.StatusOK, applyResp.StatusCode)
	var applied struct {
		AppliedCount int `json:"applied_count"`
		SkippedCount int `json:"skipped_count"`
	}
	decodeJSON(t, applyResp, &applied)
	assert.Equal(t, 1, applied.AppliedCount)
	assert.Equal(t, 0, applied.SkippedCount)
	assert.Equal(t, "2.75", env.productPrice(t, prodID))

	logsResp := do(t, env.server, "GET", "/v1/products/"+prodID+"/price-logs", nil, env.viewer)
	require.Equal(t, http.StatusOK, logsResp.StatusCode)
	var logs struct {
		Data []struct {
			IsRollback bool `json:"is_rollback"`
		} `json:"data"`
		Total int64 `json:"total"`
	}
	decodeJSON(t, logsResp, &logs)
	require.EqualValues(t, 1, logs.Total)
	assert.False(t, logs.Data[0].IsRollback)

	// A second apply loses the status race.
	secondApply := do(t, env.server, "POST", "/v1/simulations/"+sim.ID+"/apply", nil, env.manager)
	assert.Equal(t, http.StatusConflict, secondApply.StatusCode)

	// Rollback restores the price and appends mirror ledger entries.
	rbResp := do(t, env.server, "POST", "/v1/simulations/"+sim.ID+"/rollback", nil, env.manager)
	require.Equal(t, http.StatusOK, rbResp.StatusCode)
	var rolledBack struct {
		RolledBackCount int `json:"rolled_back_count"`
	}
	decodeJSON(t, rbResp, &rolledBack)
	assert.Equal(t, 1, rolledBack.RolledBackCount)
	assert.Equal(t, "2.50", env.productPrice(t, prodID))

	logsResp = do(t, env.server, "GET", "/v1/products/"+prodID+"/price-logs", nil, env.viewer)
	decodeJSON(t, logsResp, &logs)
	require.EqualValues(t, 2, logs.Total)

	var mirrors int
	for _, entry := range logs.Data {
		if entry.IsRollback {
			mirrors++
		}
	}
	assert.Equal(t, 1, mirrors)
}

// The margin guard lifts a low-rotation discount back to the floor price.
func TestE2E_MarginGuardLiftsDiscount(t *testing.T) {
	env := setupTestEnv(t)

	rulesetID := env.createRuleset(t, "Déstockage prudent", []map[string]any{
		{
			"name":      "Remise faible rotation",
			"rule_type": "low_rotation",
			"priority":  10,
			"params":    json.RawMessage(`{"days_without_sale":60,"discount_percent":20}`),
		},
		{
			"name":      "Marge plancher",
			"rule_type": "margin_guard",
			"priority":  100,
			"params":    json.RawMessage(`{"min_margin_percent":20}`),
		},
	})

	// Last sold 90 days ago; 20% off 12.00 is 9.60, below the 10.63 floor
	// for a 8.50 cost at 20% margin.
	lastSale := time.Now().UTC().AddDate(0, 0, -90)
	prodID := env.seedProduct(t, "Agenda 2025", "agendas", "12.00", nil, "8.50", &lastSale)

	sim := env.runSimulation(t, rulesetID)
	require.Len(t, sim.Items, 1)
	assert.Equal(t, prodID, sim.Items[0].ProductID)
	assert.Equal(t, "10.63", sim.Items[0].NewPriceHT)
	assert.True(t, sim.Items[0].BlockedByGuard)
}

// A price changed between simulate and apply is skipped, the rest commits.
func TestE2E_ApplySkipsDriftedPrice(t *testing.T) {
	env := setupTestEnv(t)

	currentMonth := int(time.Now().UTC().Month())
	rulesetID := env.createRuleset(t, "Promo du mois", []map[string]any{
		{
			"name":      "Hausse du mois",
			"rule_type": "seasonality",
			"priority":  10,
			"params":    json.RawMessage(fmt.Sprintf(`{"months":[%d],"adjustment_percent":10}`, currentMonth)),
		},
	})

	driftedID := env.seedProduct(t, "Stylo plume", "stylos", "8.00", nil, "", nil)
	stableID := env.seedProduct(t, "Crayon HB", "crayons", "1.00", nil, "", nil)

	sim := env.runSimulation(t, rulesetID)
	require.Len(t, sim.Items, 2)

	// Someone reprices the first product behind the simulation's back.
	require.NoError(t, env.db.Exec(`UPDATE products SET price_ht = 9.50 WHERE id = ?`, driftedID).Error)

	applyResp := do(t, env.server, "POST", "/v1/simulations/"+sim.ID+"/apply", nil, env.manager)
	require.Equal(t, http.StatusOK, applyResp.StatusCode)
	var applied struct {
		AppliedCount int `json:"applied_count"`
		SkippedCount int `json:"skipped_count"`
	}
	decodeJSON(t, applyResp, &applied)
	assert.Equal(t, 1, applied.AppliedCount)
	assert.Equal(t, 1, applied.SkippedCount)

	assert.Equal(t, "9.50", env.productPrice(t, driftedID))
	assert.Equal(t, "1.10", env.productPrice(t, stableID))
}

// Viewers can simulate but never touch live prices.
func TestE2E_ViewerCannotApply(t *testing.T) {
	env := setupTestEnv(t)

	currentMonth := int(time.Now().UTC().Month())
	rulesetID := env.createRuleset(t, "Lecture seule", []map[string]any{
		{
			"name":      "Hausse test",
			"rule_type": "seasonality",
			"priority":  10,
			"params":    json.RawMessage(fmt.Sprintf(`{"months":[%d],"adjustment_percent":5}`, currentMonth)),
		},
	})
	env.seedProduct(t, "Gomme blanche", "gommes", "0.80", nil, "", nil)

	// Dry runs are allowed for viewers.
	resp := do(t, env.server, "POST", "/v1/simulations",
		jsonBody(t, map[string]any{"ruleset_id": rulesetID}), env.viewer)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sim simulationBody
	decodeJSON(t, resp, &sim)

	applyResp := do(t, env.server, "POST", "/v1/simulations/"+sim.ID+"/apply", nil, env.viewer)
	assert.Equal(t, http.StatusForbidden, applyResp.StatusCode)

	// Creating rulesets is also off limits.
	createResp := do(t, env.server, "POST", "/v1/rulesets",
		jsonBody(t, map[string]any{"name": "Interdit"}), env.viewer)
	assert.Equal(t, http.StatusForbidden, createResp.StatusCode)
}
