package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"

	"warehousebot/internal/config"
	"warehousebot/internal/http/handlers"
	"warehousebot/internal/repos"
	"warehousebot/internal/state"
)

const (
	testPassword = "letmein"
	testToken    = "chat-secret"
)

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Actor  int64          `json:"actor"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	b  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

// captureLogs collects the JSON log lines written while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedBuf{b: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil && e.Action != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func findAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

func newTestApp(t *testing.T) (*fiber.App, *handlers.Deps) {
	t.Helper()
	cfg := config.Config{
		DBDSN:        ":memory:",
		MediaDir:     t.TempDir(),
		BotPassword:  testPassword,
		ChatToken:    testToken,
		TimeZone:     "UTC",
		CodeAttempts: 5,
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repos.SeedDemo(db, "2025/01/01 00:00:00"); err != nil {
		t.Fatal(err)
	}
	deps, err := handlers.NewDeps(db, cfg, state.NewSQLStore(db))
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	views := html.New("../../web/templates", ".html")
	return handlers.NewApp(deps, views), deps
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func get(t *testing.T, app *fiber.App, url string) (int, []byte) {
	t.Helper()
	return do(t, app, httptest.NewRequest(http.MethodGet, url, nil))
}

func sendJSON(t *testing.T, app *fiber.App, method, url string, body any, header map[string]string) (int, []byte) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(method, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	return do(t, app, req)
}
