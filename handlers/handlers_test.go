package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"points-ledger-system/models"
	"points-ledger-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	app        *fiber.App
	db         *gorm.DB
	members    *services.MemberService
	categories *services.CategoryService
	ledger     *services.LedgerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate",
		filepath.Join(t.TempDir(), "ledger.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.PointTransaction{},
		&models.LeaderboardStat{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	members := services.NewMemberService(db)
	categories := services.NewCategoryService(db)
	ledger := services.NewLedgerService(db)
	leaderboard := services.NewLeaderboardService(db)

	app := fiber.New()
	// Same registration order as main: webhooks stay outside the session
	// middleware.
	SetupWebhookRoutes(app, members)
	SetupPointsRoutes(app, members, ledger)
	SetupLeaderboardRoutes(app, members, leaderboard)
	SetupCategoryRoutes(app, categories)

	return &testEnv{app: app, db: db, members: members, categories: categories, ledger: ledger}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asMember(req *http.Request, whopUserID string) *http.Request {
	req.Header.Set("X-Whop-User-Id", whopUserID)
	req.Header.Set("X-Whop-Company-Id", "biz_1")
	req.Header.Set("X-Whop-Username", "member")
	return req
}

func asAdmin(req *http.Request, whopUserID string) *http.Request {
	asMember(req, whopUserID)
	req.Header.Set("X-Whop-Role", "admin")
	return req
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s: %v", req.Method, req.URL, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRoutesRequireIdentity(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/leaderboard", "/members", "/categories", "/points/history"} {
		resp := doRequest(t, env.app, httptest.NewRequest("GET", target, nil))
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("GET %s without identity: got %d, want 401", target, resp.StatusCode)
		}
	}
}

func TestAddPointsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	req := asMember(jsonRequest(t, "POST", "/points/add", map[string]any{
		"whop_user_id": "user_a", "amount": 10, "category_id": "x",
	}), "user_m")
	resp := doRequest(t, env.app, req)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("non-admin add: got %d, want 403", resp.StatusCode)
	}
}

func TestAddPointsFlow(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.members.UpsertUser("user_a", models.UserProfile{Username: "alice"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	cat, err := env.categories.CreateCategory("Engagement", "#3b82f6", "biz_1")
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}

	req := asAdmin(jsonRequest(t, "POST", "/points/add", map[string]any{
		"whop_user_id": "user_a",
		"amount":       100,
		"category_id":  cat.ID,
		"reason":       "bonus",
	}), "admin_1")
	resp := doRequest(t, env.app, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("admin add: got %d, want 200", resp.StatusCode)
	}

	// Balance visible on the live leaderboard immediately.
	lbReq := asMember(httptest.NewRequest("GET", "/leaderboard?period=all_time", nil), "user_a")
	lbResp := doRequest(t, env.app, lbReq)
	if lbResp.StatusCode != fiber.StatusOK {
		t.Fatalf("leaderboard: got %d, want 200", lbResp.StatusCode)
	}
	var lbBody struct {
		Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	}
	decodeBody(t, lbResp, &lbBody)
	if len(lbBody.Leaderboard) != 1 {
		t.Fatalf("leaderboard entries: got %d, want 1", len(lbBody.Leaderboard))
	}
	if lbBody.Leaderboard[0].TotalPoints != 100 || lbBody.Leaderboard[0].Rank != 1 {
		t.Fatalf("leaderboard entry: got %+v", lbBody.Leaderboard[0])
	}

	// Rank endpoint for a specific member.
	rankResp := doRequest(t, env.app, asMember(httptest.NewRequest("GET", "/members/user_a/rank", nil), "user_a"))
	var rankBody struct {
		Rank int `json:"rank"`
	}
	decodeBody(t, rankResp, &rankBody)
	if rankBody.Rank != 1 {
		t.Fatalf("member rank: got %d, want 1", rankBody.Rank)
	}
}

func TestAddPointsUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	req := asAdmin(jsonRequest(t, "POST", "/points/add", map[string]any{
		"whop_user_id": "ghost", "amount": 10, "category_id": "x",
	}), "admin_1")
	resp := doRequest(t, env.app, req)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unknown user: got %d, want 404", resp.StatusCode)
	}
}

func TestAddPointsMissingFields(t *testing.T) {
	env := newTestEnv(t)

	req := asAdmin(jsonRequest(t, "POST", "/points/add", map[string]any{
		"whop_user_id": "user_a",
	}), "admin_1")
	resp := doRequest(t, env.app, req)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing fields: got %d, want 400", resp.StatusCode)
	}
}

func TestWebhookUserJoined(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(t, "POST", "/webhooks", map[string]any{
		"type": "user.joined",
		"data": map[string]any{
			"user_id":  "user_w",
			"username": "webhooked",
			"email":    "w@example.com",
		},
	})
	resp := doRequest(t, env.app, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("webhook: got %d, want 200", resp.StatusCode)
	}

	user, err := env.members.GetUserByWhopID("user_w")
	if err != nil {
		t.Fatalf("webhook did not create user: %v", err)
	}
	if user.Username != "webhooked" || user.TotalPoints != 0 {
		t.Fatalf("webhook user: got %+v", user)
	}
}

func TestWebhookUnknownTypeIgnored(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(t, "POST", "/webhooks", map[string]any{
		"type": "payment.succeeded",
		"data": map[string]any{"user_id": "user_w"},
	})
	resp := doRequest(t, env.app, req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unknown webhook type must be acknowledged: got %d, want 200", resp.StatusCode)
	}

	var count int64
	if err := env.db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("unknown webhook type created users: got %d, want 0", count)
	}
}

func TestDeleteDefaultCategoryRejected(t *testing.T) {
	env := newTestEnv(t)

	if err := env.categories.SeedDefaults(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var def models.Category
	if err := env.db.Where("is_default = ?", true).First(&def).Error; err != nil {
		t.Fatalf("load default: %v", err)
	}

	resp := doRequest(t, env.app, asAdmin(httptest.NewRequest("DELETE", "/categories/"+def.ID, nil), "admin_1"))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("delete default category: got %d, want 400", resp.StatusCode)
	}
}

func TestSelfRankUpsertsViewer(t *testing.T) {
	env := newTestEnv(t)

	resp := doRequest(t, env.app, asMember(httptest.NewRequest("GET", "/rank", nil), "user_new"))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("self rank: got %d, want 200", resp.StatusCode)
	}
	var body struct {
		Rank int `json:"rank"`
	}
	decodeBody(t, resp, &body)
	if body.Rank != 1 {
		t.Fatalf("first viewer rank: got %d, want 1", body.Rank)
	}

	if _, err := env.members.GetUserByWhopID("user_new"); err != nil {
		t.Fatalf("viewer was not upserted: %v", err)
	}
}
