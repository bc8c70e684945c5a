package handlers

import (
	"context"
	"net/http"
	"time"

	"bidtracker"
	"bidtracker/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	loginUser  bidtracker.AppUser
	loginToken string
	loginErr   error

	parseID  string
	parseErr error

	sessionUser bidtracker.AppUser
	sessionOK   bool

	logoutErr error

	changeUser bidtracker.AppUser
	changeErr  error

	expired bool

	lastLoginName  string
	lastLoginBirth string
	lastLoginPwd   string
	lastParseToken string
	lastChange     [3]string
	logoutCalls    int
}

func (m *mockAuth) Login(_ context.Context, name, birthDate, password string) (bidtracker.AppUser, string, error) {
	m.lastLoginName, m.lastLoginBirth, m.lastLoginPwd = name, birthDate, password
	return m.loginUser, m.loginToken, m.loginErr
}
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}
func (m *mockAuth) Session(context.Context) (bidtracker.AppUser, bool) {
	return m.sessionUser, m.sessionOK
}
func (m *mockAuth) Logout(context.Context) error {
	m.logoutCalls++
	return m.logoutErr
}
func (m *mockAuth) ChangePassword(_ context.Context, current, next, confirm string) (bidtracker.AppUser, error) {
	m.lastChange = [3]string{current, next, confirm}
	return m.changeUser, m.changeErr
}
func (m *mockAuth) PasswordExpired(bidtracker.AppUser) bool { return m.expired }

type mockUsers struct {
	merged    []bidtracker.AppUser
	created   bidtracker.AppUser
	createErr error
	deleteErr error
	updateErr error
	byID      map[string]bidtracker.AppUser

	lastCreateName  string
	lastCreateBirth string
	lastDeleteID    string
}

func (m *mockUsers) Bootstrap(context.Context) error { return nil }
func (m *mockUsers) Merged(context.Context) []bidtracker.AppUser {
	return m.merged
}
func (m *mockUsers) Create(_ context.Context, name, birthDate string, _ bool) (bidtracker.AppUser, error) {
	m.lastCreateName, m.lastCreateBirth = name, birthDate
	return m.created, m.createErr
}
func (m *mockUsers) Delete(_ context.Context, id string) error {
	m.lastDeleteID = id
	return m.deleteErr
}
func (m *mockUsers) UpdateLocal(context.Context, bidtracker.AppUser) error { return m.updateErr }
func (m *mockUsers) Lookup(_ context.Context, id string) (bidtracker.AppUser, bool) {
	u, ok := m.byID[id]
	return u, ok
}

type mockBids struct {
	list      []bidtracker.Bid
	reloadErr error
	created   bidtracker.Bid
	createErr error
	updateErr error
	deleteErr error
	stats     bidtracker.DashboardStats

	lastYear    int
	lastSortKey string
	lastDir     string
	lastUpdate  bidtracker.Bid
	lastDelete  string
}

func (m *mockBids) Reload(context.Context) ([]bidtracker.Bid, error) {
	return m.list, m.reloadErr
}
func (m *mockBids) List(_ context.Context, year int, sortKey, dir string) []bidtracker.Bid {
	m.lastYear, m.lastSortKey, m.lastDir = year, sortKey, dir
	return m.list
}
func (m *mockBids) Create(context.Context, bidtracker.Bid) (bidtracker.Bid, error) {
	return m.created, m.createErr
}
func (m *mockBids) Update(_ context.Context, bid bidtracker.Bid) error {
	m.lastUpdate = bid
	return m.updateErr
}
func (m *mockBids) Delete(_ context.Context, id string) error {
	m.lastDelete = id
	return m.deleteErr
}
func (m *mockBids) Stats(_ context.Context, year int) bidtracker.DashboardStats {
	m.lastYear = year
	return m.stats
}

type mockSheet struct {
	url     string
	urlOK   bool
	setErr  error
	testMsg string
	testErr error
	script  string

	lastSetURL  string
	lastTestURL string
}

func (m *mockSheet) URL(context.Context) (string, bool) { return m.url, m.urlOK }
func (m *mockSheet) SetURL(_ context.Context, rawURL string) error {
	m.lastSetURL = rawURL
	return m.setErr
}
func (m *mockSheet) Test(_ context.Context, rawURL string) (string, error) {
	m.lastTestURL = rawURL
	return m.testMsg, m.testErr
}
func (m *mockSheet) Script() string { return m.script }

type mockMonitor struct {
	status bidtracker.ConnectionStatus
}

func (m *mockMonitor) Run(context.Context, time.Duration)  {}
func (m *mockMonitor) Status() bidtracker.ConnectionStatus { return m.status }

// ---- Shared Test Helpers ----

// newTestService returns a service with every slot mocked and a valid
// non-admin account behind token "tok".
func newTestService() (*service.Service, *mockAuth, *mockUsers, *mockBids, *mockSheet, *mockMonitor) {
	user := bidtracker.AppUser{ID: "user_sjw", Name: "송제우"}
	auth := &mockAuth{parseID: user.ID}
	users := &mockUsers{byID: map[string]bidtracker.AppUser{user.ID: user}}
	bids := &mockBids{}
	sheet := &mockSheet{}
	monitor := &mockMonitor{}
	s := &service.Service{
		Authorization: auth,
		Users:         users,
		Bids:          bids,
		Sheet:         sheet,
		Monitor:       monitor,
	}
	return s, auth, users, bids, sheet, monitor
}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
