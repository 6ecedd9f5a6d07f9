// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/secretballot/auth"
	"github.com/danielhkuo/secretballot/cliparse"
	"github.com/danielhkuo/secretballot/db"
	"github.com/danielhkuo/secretballot/models"
)

// TestSecret signs interaction requests in tests.
const TestSecret = "test-interaction-secret"

// SetupTestDB opens a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration. Render pacing is off
// and the window is long enough that votes only end when tests end them.
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              3318,
		DatabaseType:      db.TypeSQLite,
		DatabaseURL:       ":memory:",
		InteractionSecret: TestSecret,
		VoteWindow:        time.Hour,
		FanoutLimit:       10,
		RenderInterval:    0,
		LogLevel:          "error",
	}
}

// Participants returns voters u1..un with inbox addresses dm/u1..dm/un
func Participants(n int) []models.Participant {
	out := make([]models.Participant, n)
	for i := range out {
		id := fmt.Sprintf("u%d", i+1)
		out[i] = models.Participant{ID: id, DisplayName: "User " + id, Address: "dm/" + id}
	}
	return out
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// SignedRequest creates a POST request whose body is signed with secret
func SignedRequest(path string, body interface{}, secret string) *http.Request {
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.SignatureHeader, auth.Sign(jsonBody, secret))
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
