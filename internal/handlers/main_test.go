package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/przhiin/OAKSLAND/internal/config"
	"github.com/przhiin/OAKSLAND/internal/database"
	"github.com/przhiin/OAKSLAND/internal/models"
	"github.com/przhiin/OAKSLAND/internal/routes"
	"github.com/przhiin/OAKSLAND/internal/utils"
)

type sentMail struct {
	To      string
	Subject string
	Body    string
}

// captureMailer records outbound mail so tests can read delivered codes.
type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

// lastCode extracts the 6-digit code from the most recent mail.
func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail was sent")
	match := codePattern.FindStringSubmatch(m.sent[len(m.sent)-1].Body)
	require.NotNil(t, match, "mail carries no code: %q", m.sent[len(m.sent)-1].Body)
	return match[1]
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	mr     *miniredis.Miniredis
	cfg    *config.Config
	mailer *captureMailer
}

const testGoogleClientID = "oaksland-test.apps.googleusercontent.com"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		JWTAccessSecret:  "test-access-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessExpires:    15 * time.Minute,
		RefreshExpires:   24 * time.Hour,
		GoogleClientID:   testGoogleClientID,
	}

	mailer := &captureMailer{}
	app := fiber.New()
	routes.Register(app, db, rdb, cfg, mailer)

	return &testEnv{app: app, db: db, mr: mr, cfg: cfg, mailer: mailer}
}

// request performs a JSON request against the app, optionally authenticated.
func (e *testEnv) request(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &payload), "body: %s", data)
	return payload
}

func (e *testEnv) createUser(t *testing.T, email, password string, superuser bool) *models.User {
	t.Helper()

	user := &models.User{
		FirstName:     "Test",
		LastName:      "User",
		Email:         email,
		EmailVerified: true,
		IsSuperuser:   superuser,
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createProduct(t *testing.T, name, price string) *models.Product {
	t.Helper()

	amount, err := decimal.NewFromString(price)
	require.NoError(t, err)

	product := &models.Product{
		Name:     name,
		Slug:     utils.Slugify(name),
		Price:    amount,
		IsActive: true,
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *testEnv) accessToken(t *testing.T, user *models.User) string {
	t.Helper()

	pair, err := utils.GenerateTokenPair(e.cfg.JWTAccessSecret, e.cfg.JWTRefreshSecret,
		user.ID, e.cfg.AccessExpires, e.cfg.RefreshExpires)
	require.NoError(t, err)
	return pair.AccessToken
}
