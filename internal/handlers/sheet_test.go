package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bidtracker/internal/service"
)

func TestSheetURL_GetAndSet(t *testing.T) {
	s, _, _, _, sheet, _ := newTestService()
	r := newTestRouter(s)

	// unconfigured
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sheet", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["configured"] != false {
		t.Fatalf("expected configured=false, got %v", m["configured"])
	}

	// set
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/v1/sheet",
		bytes.NewBufferString(`{"url":"https://script.google.com/macros/s/x/exec"}`))
	req.Header = authHeader("tok")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("set status=%d, body=%s", w.Code, w.Body.String())
	}
	if sheet.lastSetURL != "https://script.google.com/macros/s/x/exec" {
		t.Fatalf("url not passed through: %q", sheet.lastSetURL)
	}

	// invalid url → 400
	sheet.setErr = errors.New("URL 형식이 올바르지 않습니다.")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/v1/sheet", bytes.NewBufferString(`{"url":"ftp://nope"}`))
	req.Header = authHeader("tok")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid url: status=%d, want 400", w.Code)
	}
}

func TestSheetTest_StatusMapping(t *testing.T) {
	s, _, _, _, sheet, _ := newTestService()
	sheet.testMsg = "연결에 성공했습니다."
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sheet/test", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}

	sheet.testErr = service.ErrNoSheetURL
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sheet/test", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("no url: status=%d, want 400", w.Code)
	}

	sheet.testErr = errors.New("timeout")
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/sheet/test", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("probe failure: status=%d, want 502", w.Code)
	}
}

func TestSheetScript_ReturnsPlainText(t *testing.T) {
	s, _, _, _, sheet, _ := newTestService()
	sheet.script = "function doGet(e) {}"
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sheet/script", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "function doGet(e) {}" {
		t.Fatalf("status=%d, body=%q", w.Code, w.Body.String())
	}
}
