package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	rec := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerTransactionsChanged("deleted", 3).
		TriggerSuccessNotification("3 transaction(s) deleted.").
		Write(rec)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	raw := rec.Header().Get("HX-Trigger")
	if raw == "" {
		t.Fatal("HX-Trigger header missing")
	}
	var triggers map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &triggers); err != nil {
		t.Fatalf("HX-Trigger not valid JSON: %v", err)
	}

	changed, ok := triggers["transactions:changed"]
	if !ok {
		t.Fatal("transactions:changed trigger missing")
	}
	if changed["action"] != "deleted" {
		t.Errorf("action = %v, want deleted", changed["action"])
	}
	if changed["count"] != float64(3) {
		t.Errorf("count = %v, want 3", changed["count"])
	}

	notif, ok := triggers["show-notification"]
	if !ok {
		t.Fatal("show-notification trigger missing")
	}
	if notif["type"] != "success" {
		t.Errorf("notification type = %v, want success", notif["type"])
	}
}

func TestHTMXResponseBuilder_StatusAndBody(t *testing.T) {
	rec := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusUnprocessableEntity).
		BodyHTML("<p>nope</p>").
		Write(rec)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	if got := rec.Body.String(); got != "<p>nope</p>" {
		t.Errorf("body = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestHTMXResponseBuilder_Redirect(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().Redirect("/login").Write(rec)
	if got := rec.Header().Get("HX-Redirect"); got != "/login" {
		t.Errorf("HX-Redirect = %q, want /login", got)
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequestError(`<script>alert("x")</script>`).Write(rec)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Errorf("body not escaped: %q", body)
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("body missing escaped payload: %q", body)
	}
}

func TestMethodNotAllowedSetsAllowHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowedError("GET, POST").Write(rec)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "GET, POST" {
		t.Errorf("Allow = %q", got)
	}
}
