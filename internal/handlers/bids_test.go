package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bidtracker"
	"bidtracker/internal/service"
)

func TestListBids_PassesQueryThrough(t *testing.T) {
	s, _, _, bids, _, _ := newTestService()
	bids.list = []bidtracker.Bid{{ID: "b1", TargetYear: 2026}}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bids?year=2026&sort=clientName&dir=desc", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if bids.lastYear != 2026 || bids.lastSortKey != "clientName" || bids.lastDir != "desc" {
		t.Fatalf("query not passed through: %d %q %q", bids.lastYear, bids.lastSortKey, bids.lastDir)
	}
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["count"].(float64) != 1 {
		t.Fatalf("count = %v, want 1", m["count"])
	}

	// bad year falls back to all years
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/bids?year=abc", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if bids.lastYear != 0 {
		t.Fatalf("year=abc parsed to %d, want 0", bids.lastYear)
	}
}

func TestCreateBid_StatusMapping(t *testing.T) {
	s, _, _, bids, _, _ := newTestService()
	bids.created = bidtracker.Bid{ID: "new-id", TargetYear: 2026}
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{"targetYear":2026,"clientName":"현대엔지니어링"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids", body)
	req.Header = authHeader("tok")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var created bidtracker.Bid
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID != "new-id" {
		t.Fatalf("created ID = %q", created.ID)
	}

	bids.createErr = service.ErrSyncFailed
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/bids", bytes.NewBufferString(`{"targetYear":2026}`))
	req.Header = authHeader("tok")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("sync failure: status=%d, want 502", w.Code)
	}
}

func TestUpdateBid_PathIDWinsAndErrorsMap(t *testing.T) {
	s, _, _, bids, _, _ := newTestService()
	r := newTestRouter(s)

	body := bytes.NewBufferString(`{"id":"spoofed","targetYear":2026,"result":"수주"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/bids/real-id", body)
	req.Header = authHeader("tok")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if bids.lastUpdate.ID != "real-id" {
		t.Fatalf("path id ignored: %q", bids.lastUpdate.ID)
	}

	bids.updateErr = service.ErrBidNotFound
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/v1/bids/missing", bytes.NewBufferString(`{}`))
	req.Header = authHeader("tok")
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing bid: status=%d, want 404", w.Code)
	}
}

func TestDeleteBid_StatusMapping(t *testing.T) {
	s, _, _, bids, _, _ := newTestService()
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/bids/b1", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || bids.lastDelete != "b1" {
		t.Fatalf("status=%d, deleted=%q", w.Code, bids.lastDelete)
	}

	bids.deleteErr = service.ErrSyncFailed
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/bids/b1", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("sync failure: status=%d, want 502", w.Code)
	}
}

func TestReloadAndStats(t *testing.T) {
	s, _, _, bids, _, _ := newTestService()
	bids.list = []bidtracker.Bid{{ID: "b1"}, {ID: "b2"}}
	bids.stats = bidtracker.DashboardStats{TotalBids: 2, WinRate: 50}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids/reload", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("reload status=%d, body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/stats?year=2026", nil)
	req.Header = authHeader("tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status=%d", w.Code)
	}
	var stats bidtracker.DashboardStats
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.WinRate != 50 || bids.lastYear != 2026 {
		t.Fatalf("stats = %+v, year = %d", stats, bids.lastYear)
	}
}
