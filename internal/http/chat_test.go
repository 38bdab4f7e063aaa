package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"warehousebot/internal/chat"
)

var tokenHeader = map[string]string{"X-Chat-Token": testToken}

func event(t *testing.T, app *fiber.App, body map[string]any) chat.Reply {
	t.Helper()
	code, raw := sendJSON(t, app, http.MethodPost, "/chat/events", body, tokenHeader)
	if code != fiber.StatusOK {
		t.Fatalf("status %d: %s", code, raw)
	}
	var r chat.Reply
	if err := json.Unmarshal(raw, &r); err != nil {
		t.Fatal(err)
	}
	return r
}

func textEvent(id int64, text string) map[string]any {
	return map[string]any{"actor": map[string]any{"id": id, "username": "op"}, "kind": "text", "text": text}
}

func selectEvent(id int64, tag string) map[string]any {
	return map[string]any{"actor": map[string]any{"id": id}, "kind": "selection", "tag": tag}
}

func upload(t *testing.T, app *fiber.App, actorID, filename string, data []byte) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if actorID != "" {
		_ = w.WriteField("actor_id", actorID)
	}
	fw, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(data)
	_ = w.Close()
	req := httptest.NewRequest(http.MethodPost, "/chat/attachments", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Chat-Token", testToken)
	return do(t, app, req)
}

func TestChatRequiresToken(t *testing.T) {
	app, _ := newTestApp(t)
	var code int
	entries := captureLogs(t, func() {
		code, _ = sendJSON(t, app, http.MethodPost, "/chat/events", textEvent(1, "/start"), nil)
	})
	if code != fiber.StatusUnauthorized {
		t.Fatalf("no token: %d", code)
	}
	if _, ok := findAction(entries, "chat.token.reject"); !ok {
		t.Fatalf("no security entry: %+v", entries)
	}
	code, _ = sendJSON(t, app, http.MethodPost, "/chat/events", textEvent(1, "/start"), map[string]string{"X-Chat-Token": "wrong"})
	if code != fiber.StatusUnauthorized {
		t.Fatalf("wrong token: %d", code)
	}
}

func TestChatEventValidation(t *testing.T) {
	app, _ := newTestApp(t)
	bad := []map[string]any{
		{"actor": map[string]any{"id": 0}, "kind": "text", "text": "hi"},
		{"actor": map[string]any{"id": 1}, "kind": "shout", "text": "hi"},
		{"actor": map[string]any{"id": 1}, "kind": "selection"},
	}
	for _, b := range bad {
		if code, body := sendJSON(t, app, http.MethodPost, "/chat/events", b, tokenHeader); code != fiber.StatusBadRequest {
			t.Fatalf("%v: status %d: %s", b, code, body)
		}
	}
}

func TestChatLoginAndBrowse(t *testing.T) {
	app, d := newTestApp(t)

	var r chat.Reply
	entries := captureLogs(t, func() {
		r = event(t, app, textEvent(7, "guess"))
	})
	if r.Text == "" || strings.HasPrefix(r.Text, "Logged in") {
		t.Fatalf("bad password accepted: %q", r.Text)
	}
	if e, ok := findAction(entries, "auth.fail"); !ok || e.Actor != 7 {
		t.Fatalf("no auth.fail entry: %+v", entries)
	}

	r = event(t, app, textEvent(7, testPassword))
	if !strings.HasPrefix(r.Text, "Logged in") {
		t.Fatalf("login: %q", r.Text)
	}

	r = event(t, app, selectEvent(7, "item:create"))
	found := false
	for _, row := range r.Buttons {
		for _, b := range row {
			if b.Tag == "item:create:cat:1" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("no category buttons: %+v", r)
	}

	r = event(t, app, selectEvent(7, "item:create:skip:video"))
	if !r.Stale {
		t.Fatalf("out-of-step selection not stale: %+v", r)
	}

	// Another actor is still locked out.
	r = event(t, app, selectEvent(8, "item:menu"))
	if strings.HasPrefix(r.Text, "Logged in") || len(r.Buttons) != 0 {
		t.Fatalf("actor 8 got through: %+v", r)
	}
	if ok, _ := d.Auth.Authenticated(8); ok {
		t.Fatal("actor 8 authenticated")
	}
}

func TestChatAttachmentChecks(t *testing.T) {
	app, _ := newTestApp(t)
	if code, body := upload(t, app, "", "a.jpg", []byte("x")); code != fiber.StatusBadRequest {
		t.Fatalf("missing actor: %d %s", code, body)
	}
	var code int
	entries := captureLogs(t, func() {
		code, _ = upload(t, app, "7", "a.exe", []byte("x"))
	})
	if code != fiber.StatusBadRequest {
		t.Fatalf("bad type: %d", code)
	}
	if _, ok := findAction(entries, "chat.attachment.type.reject"); !ok {
		t.Fatalf("no security entry: %+v", entries)
	}
}

func TestChatAttachmentStoresImage(t *testing.T) {
	app, d := newTestApp(t)
	event(t, app, textEvent(7, testPassword))
	for _, tag := range []string{
		"item:create", "item:create:cat:1", "item:create:sub:1", "item:create:brand:1", "item:create:measure:1",
	} {
		if r := event(t, app, selectEvent(7, tag)); r.Stale {
			t.Fatalf("%s stale: %q", tag, r.Text)
		}
	}
	event(t, app, textEvent(7, "Drill"))
	event(t, app, textEvent(7, "DR-9"))
	event(t, app, selectEvent(7, "item:create:skip:description"))
	event(t, app, textEvent(7, "12"))
	event(t, app, selectEvent(7, "item:create:skip:video"))

	code, body := upload(t, app, "7", "front.PNG", []byte("png"))
	if code != fiber.StatusOK {
		t.Fatalf("upload: %d %s", code, body)
	}
	items, err := d.Items.Search("DR-9")
	if err != nil || len(items) != 1 {
		t.Fatalf("item not created: %+v %v", items, err)
	}
	imgs, err := d.Items.ListImages(items[0].ID)
	if err != nil || len(imgs) != 1 || !strings.HasSuffix(imgs[0].Path, ".png") {
		t.Fatalf("images = %+v %v", imgs, err)
	}
}
