package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func setupIdentityRouter() *gin.Engine {
	r := gin.New()
	r.Use(IdentityMiddleware())
	r.GET("/whoami", func(c *gin.Context) {
		identity := CurrentIdentity(c)
		resp := gin.H{"session_key": identity.SessionKey}
		if identity.UserID != nil {
			resp["user_id"] = identity.UserID.String()
		}
		c.JSON(http.StatusOK, resp)
	})
	return r
}

func whoami(t *testing.T, r *gin.Engine, headers map[string]string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/whoami", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)

	body := map[string]string{}
	if w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
	}
	return w, body
}

func TestIdentityMiddlewareMintsSessionKey(t *testing.T) {
	r := setupIdentityRouter()

	w, body := whoami(t, r, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	key := w.Header().Get(SessionHeader)
	if len(key) != 32 {
		t.Fatalf("expected a 32 character session key, got %q", key)
	}
	if body["session_key"] != key {
		t.Errorf("expected context session key %q, got %q", key, body["session_key"])
	}
	if _, ok := body["user_id"]; ok {
		t.Error("anonymous request should not carry a user")
	}
}

func TestIdentityMiddlewareKeepsSessionKey(t *testing.T) {
	r := setupIdentityRouter()

	w, body := whoami(t, r, map[string]string{SessionHeader: "my-session"})
	if w.Header().Get(SessionHeader) != "my-session" {
		t.Errorf("expected echoed session key, got %q", w.Header().Get(SessionHeader))
	}
	if body["session_key"] != "my-session" {
		t.Errorf("expected my-session, got %q", body["session_key"])
	}
}

func TestIdentityMiddlewareRejectsLongSessionKey(t *testing.T) {
	r := setupIdentityRouter()

	w, _ := whoami(t, r, map[string]string{SessionHeader: strings.Repeat("k", 41)})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestIdentityMiddlewareBearer(t *testing.T) {
	r := setupIdentityRouter()
	userID := uuid.New()
	token := testToken(t, userID, "customer")

	w, body := whoami(t, r, map[string]string{"Authorization": "Bearer " + token})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["user_id"] != userID.String() {
		t.Errorf("expected user %s, got %q", userID, body["user_id"])
	}
	if w.Header().Get(SessionHeader) != "" {
		t.Error("authenticated request should not be issued a session key")
	}
}

func TestIdentityMiddlewareInvalidBearer(t *testing.T) {
	r := setupIdentityRouter()

	w, _ := whoami(t, r, map[string]string{"Authorization": "Bearer garbage"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
