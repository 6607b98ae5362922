package adapthttp_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	adapthttp "trackit/internal/adapter/http"
	"trackit/internal/adapter/memory"
	"trackit/internal/app"
	"trackit/internal/auth"
)

// ---------------------------------------------------------------------------
// Test-server helpers
// ---------------------------------------------------------------------------

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := memory.New()
	tokens := auth.New([]byte("test-secret"), time.Hour)
	habitRepo := memory.NewHabitRepo(db)
	authSvc := app.NewAuthService(db, tokens)
	habitSvc := app.NewHabitService(habitRepo)
	statsSvc := app.NewStatsService(habitRepo)

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := adapthttp.New(authSvc, habitSvc, statsSvc, adapthttp.OIDCConfig{}, webDir)
	return httptest.NewServer(srv.Handler())
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func register(t *testing.T, ts *httptest.Server, username, password, email string) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"username": username, "password": password, "email": email,
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register %s: expected 200, got %d", username, resp.StatusCode)
	}
}

func login(t *testing.T, ts *httptest.Server, username, password string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", username, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login returned empty token")
	}
	if body["username"] != username {
		t.Fatalf("login returned username %v, want %s", body["username"], username)
	}
	return token
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	tests := []struct {
		name    string
		payload map[string]string
		wantErr string
	}{
		{"missing username", map[string]string{"password": "secret1", "email": "a@b.com"}, "username is required"},
		{"short username", map[string]string{"username": "ab", "password": "secret1", "email": "a@b.com"}, "username must be at least 3 characters long"},
		{"short password", map[string]string{"username": "abc", "password": "12345", "email": "a@b.com"}, "password must be at least 6 characters long"},
		{"bad email", map[string]string{"username": "abc", "password": "secret1", "email": "nope"}, "invalid email format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", tc.payload)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			body := decodeBody(t, resp)
			if body["error"] != tc.wantErr {
				t.Fatalf("expected error %q, got %v", tc.wantErr, body["error"])
			}
		})
	}

	// A 3-character username with valid password/email succeeds.
	register(t, ts, "abc", "secret1", "abc@b.com")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	register(t, ts, "alice", "secret1", "a@b.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]string{
		"username": "alice", "password": "secret2", "email": "other@b.com",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["error"] != "username already exists" {
		t.Fatalf("expected duplicate-username error, got %v", body["error"])
	}
}

func TestLoginGenericRejection(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	register(t, ts, "alice", "secret1", "a@b.com")

	// Wrong password and unknown username are indistinguishable.
	for _, creds := range []map[string]string{
		{"username": "alice", "password": "wrongpass"},
		{"username": "nobody", "password": "secret1"},
	} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", creds)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if body["error"] != "invalid username or password" {
			t.Fatalf("expected generic rejection, got %v", body["error"])
		}
	}
}

func TestHabitsRequireAuthentication(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	// No token: the request reaches the handler anonymously and is refused.
	resp, err := http.Get(ts.URL + "/api/habits")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", resp.StatusCode)
	}

	// Invalid token: rejected by the gate before the handler.
	resp2 := doJSON(t, http.MethodGet, ts.URL+"/api/habits", "garbage", nil)
	defer resp2.Body.Close() //nolint:errcheck
	if resp2.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for invalid token, got %d", resp2.StatusCode)
	}
}

func TestEndToEndOwnership(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	register(t, ts, "alice", "secret1", "a@b.com")
	register(t, ts, "bob", "secret2", "b@b.com")
	aliceToken := login(t, ts, "alice", "secret1")
	bobToken := login(t, ts, "bob", "secret2")

	// Alice creates a habit.
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/habits", aliceToken, map[string]string{"name": "read"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", resp.StatusCode)
	}
	created := decodeBody(t, resp)
	id := int64(created["id"].(float64))
	if created["name"] != "read" {
		t.Fatalf("unexpected created habit: %v", created)
	}

	// The habit is in alice's list, not bob's.
	listResp := doJSON(t, http.MethodGet, ts.URL+"/api/habits", bobToken, nil)
	defer listResp.Body.Close() //nolint:errcheck
	var bobHabits []map[string]any
	if err := json.NewDecoder(listResp.Body).Decode(&bobHabits); err != nil {
		t.Fatal(err)
	}
	if len(bobHabits) != 0 {
		t.Fatalf("bob should not see alice's habits: %v", bobHabits)
	}

	// Bob cannot update, delete, or toggle it.
	habitURL := fmt.Sprintf("%s/api/habits/%d", ts.URL, id)
	if resp := doJSON(t, http.MethodPatch, habitURL, bobToken, map[string]string{"name": "stolen"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("update by non-owner: expected 400, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, http.MethodDelete, habitURL, bobToken, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("delete by non-owner: expected 400, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, http.MethodPatch, habitURL+"/toggle", bobToken, map[string]any{"completed": true}); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("toggle by non-owner: expected 403, got %d", resp.StatusCode)
	}

	// Alice can.
	if resp := doJSON(t, http.MethodPatch, habitURL, aliceToken, map[string]string{"name": "read more"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("update by owner: expected 200, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, http.MethodDelete, habitURL, aliceToken, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete by owner: expected 200, got %d", resp.StatusCode)
	}
}

func TestToggleCompletion(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	register(t, ts, "alice", "secret1", "a@b.com")
	token := login(t, ts, "alice", "secret1")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/habits", token, map[string]string{"name": "read"})
	created := decodeBody(t, resp)
	toggleURL := fmt.Sprintf("%s/api/habits/%d/toggle", ts.URL, int64(created["id"].(float64)))

	// Missing completed field.
	if resp := doJSON(t, http.MethodPatch, toggleURL, token, map[string]any{}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing completed, got %d", resp.StatusCode)
	}

	// Complete twice; both succeed and keep a completion timestamp.
	for i := 0; i < 2; i++ {
		resp := doJSON(t, http.MethodPatch, toggleURL, token, map[string]any{"completed": true})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("toggle %d: expected 200, got %d", i, resp.StatusCode)
		}
		body := decodeBody(t, resp)
		if body["completed"] != true || body["completedAt"] == nil {
			t.Fatalf("toggle %d: expected completed with timestamp, got %v", i, body)
		}
	}

	// Clearing removes the timestamp.
	clearResp := doJSON(t, http.MethodPatch, toggleURL, token, map[string]any{"completed": false})
	body := decodeBody(t, clearResp)
	if body["completed"] != false || body["completedAt"] != nil {
		t.Fatalf("expected completion cleared, got %v", body)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", resp.StatusCode)
	}

	register(t, ts, "alice", "secret1", "a@b.com")
	token := login(t, ts, "alice", "secret1")

	createResp := doJSON(t, http.MethodPost, ts.URL+"/api/habits", token, map[string]string{"name": "read"})
	created := decodeBody(t, createResp)
	toggleURL := fmt.Sprintf("%s/api/habits/%d/toggle", ts.URL, int64(created["id"].(float64)))
	toggleResp := doJSON(t, http.MethodPatch, toggleURL, token, map[string]any{"completed": true})
	defer toggleResp.Body.Close() //nolint:errcheck

	statsResp := doJSON(t, http.MethodGet, ts.URL+"/api/stats?days=7", token, nil)
	if statsResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", statsResp.StatusCode)
	}
	body := decodeBody(t, statsResp)
	if body["days"] != float64(7) {
		t.Fatalf("expected days=7, got %v", body["days"])
	}
	stats, ok := body["stats"].(map[string]any)
	if !ok {
		t.Fatalf("missing stats object: %v", body)
	}
	if stats["total"] != float64(1) || stats["completed"] != float64(1) {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestSSODisabled(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/config")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decodeBody(t, resp)
	if body["sso_enabled"] != false {
		t.Fatalf("expected sso_enabled=false, got %v", body["sso_enabled"])
	}

	loginResp, err := http.Get(ts.URL + "/api/auth/sso/login")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer loginResp.Body.Close() //nolint:errcheck
	if loginResp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 when sso disabled, got %d", loginResp.StatusCode)
	}
}
