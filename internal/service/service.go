package service

import (
	"context"
	"time"

	"bidtracker"
	"bidtracker/internal/repository"
)

// Gateway is the remote sync client as the services consume it. Sync calls
// reduce every failure to false; fetch calls return classified errors.
type Gateway interface {
	Configured(ctx context.Context) bool
	TestConnection(ctx context.Context, rawURL string) (string, error)
	FetchBids(ctx context.Context) ([]bidtracker.Bid, error)
	SyncBid(ctx context.Context, action string, bid *bidtracker.Bid, id string) bool
	FetchUsers(ctx context.Context) ([]bidtracker.AppUser, error)
	SyncUser(ctx context.Context, action string, user *bidtracker.AppUser, id string) bool
}

// Authorization owns login, the persisted session, and the password lifecycle.
type Authorization interface {
	Login(ctx context.Context, name, birthDate, password string) (bidtracker.AppUser, string, error)
	ParseToken(accessToken string) (string, error)
	Session(ctx context.Context) (bidtracker.AppUser, bool)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, current, newPassword, confirm string) (bidtracker.AppUser, error)
	PasswordExpired(u bidtracker.AppUser) bool
}

// Users owns the three-source merged account list.
type Users interface {
	Bootstrap(ctx context.Context) error
	Merged(ctx context.Context) []bidtracker.AppUser
	Create(ctx context.Context, name, birthDate string, isAdmin bool) (bidtracker.AppUser, error)
	Delete(ctx context.Context, id string) error
	UpdateLocal(ctx context.Context, u bidtracker.AppUser) error
	Lookup(ctx context.Context, id string) (bidtracker.AppUser, bool)
}

// Bids is the in-memory registry with optimistic remote sync.
type Bids interface {
	Reload(ctx context.Context) ([]bidtracker.Bid, error)
	List(ctx context.Context, year int, sortKey, dir string) []bidtracker.Bid
	Create(ctx context.Context, bid bidtracker.Bid) (bidtracker.Bid, error)
	Update(ctx context.Context, bid bidtracker.Bid) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, year int) bidtracker.DashboardStats
}

// Sheet owns the remote endpoint configuration surface.
type Sheet interface {
	URL(ctx context.Context) (string, bool)
	SetURL(ctx context.Context, rawURL string) error
	Test(ctx context.Context, rawURL string) (string, error)
	Script() string
}

// Monitor runs the background connectivity prober feeding the header
// indicator. Stop via context cancellation in main() for graceful shutdown.
type Monitor interface {
	Run(ctx context.Context, tick time.Duration)
	Status() bidtracker.ConnectionStatus
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Users
	Bids
	Sheet
	Monitor
}

// Options carries auth tuning from config.
type Options struct {
	SigningKey string
	TokenTTL   time.Duration
}

// NewService wires the store and the remote gateway into concrete services.
func NewService(repos *repository.Repository, gw Gateway, opts Options) *Service {
	users := NewUsersService(repos.KV, gw)
	sheet := NewSheetService(repos.KV, gw)
	return &Service{
		Authorization: NewAuthService(repos.KV, users, gw, opts),
		Users:         users,
		Bids:          NewBidsService(gw),
		Sheet:         sheet,
		Monitor:       NewMonitorService(sheet, gw),
	}
}
