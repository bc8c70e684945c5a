package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bidtracker"
	"bidtracker/internal/remote"
	"bidtracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenTTL = 12 * time.Hour
	dateLayout      = "2006-01-02"

	// Security policy: a password older than this forces the change flow.
	passwordMaxAgeDays = 182

	minPasswordLen = 4
)

// Domain errors for the auth flows. Each rejection carries its own user-facing
// message; login stays deliberately generic so the response never reveals
// which field was wrong.
var (
	ErrInvalidCredentials      = errors.New("사용자 정보가 일치하지 않습니다.")
	ErrNotLoggedIn             = errors.New("로그인이 필요합니다.")
	ErrInvalidToken            = errors.New("invalid token")
	ErrCurrentPasswordMismatch = errors.New("현재 비밀번호가 일치하지 않습니다.")
	ErrPasswordTooShort        = errors.New("새 비밀번호는 최소 4자리 이상이어야 합니다.")
	ErrPasswordUnchanged       = errors.New("기존 비밀번호와 다른 비밀번호를 설정해주세요.")
	ErrPasswordConfirmMismatch = errors.New("새 비밀번호 확인이 일치하지 않습니다.")
	ErrRemoteSyncFailed        = errors.New("DB 동기화에 실패했습니다.")
)

// AuthService validates logins against the merged user list and owns the
// persisted session record.
type AuthService struct {
	kv         repository.KV
	users      Users
	gw         Gateway
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewAuthService(kv repository.KV, users Users, gw Gateway, opts Options) *AuthService {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{
		kv:         kv,
		users:      users,
		gw:         gw,
		signingKey: []byte(opts.SigningKey),
		tokenTTL:   ttl,
		now:        time.Now,
	}
}

var _ Authorization = (*AuthService)(nil)

// Claims defines the JWT claims carried by session tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Login matches name, birthdate and password — after whitespace normalization —
// against exactly the merged user list. Any mismatch yields the same generic
// error so the response never leaks which field was wrong.
func (s *AuthService) Login(ctx context.Context, name, birthDate, password string) (bidtracker.AppUser, string, error) {
	name = strings.TrimSpace(name)
	birthDate = strings.TrimSpace(birthDate)
	password = strings.TrimSpace(password)

	for _, u := range s.users.Merged(ctx) {
		if strings.TrimSpace(u.Name) != name ||
			strings.TrimSpace(u.BirthDate) != birthDate ||
			strings.TrimSpace(u.Password) != password {
			continue
		}
		if err := s.saveSession(ctx, u); err != nil {
			return bidtracker.AppUser{}, "", err
		}
		token, err := s.issueToken(u.ID)
		if err != nil {
			return bidtracker.AppUser{}, "", err
		}
		return u, token, nil
	}
	return bidtracker.AppUser{}, "", ErrInvalidCredentials
}

// ParseToken validates a bearer token and returns the user ID.
func (s *AuthService) ParseToken(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// Session restores the persisted session. A corrupt record is treated as
// logged out and removed.
func (s *AuthService) Session(ctx context.Context) (bidtracker.AppUser, bool) {
	raw, ok, err := s.kv.Get(ctx, repository.KeySession)
	if err != nil || !ok {
		return bidtracker.AppUser{}, false
	}
	var u bidtracker.AppUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		_ = s.kv.Remove(ctx, repository.KeySession)
		return bidtracker.AppUser{}, false
	}
	return u, true
}

// Logout clears the session record.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.kv.Remove(ctx, repository.KeySession)
}

// PasswordExpired reports whether the account must change its password: true
// when no change date is recorded, or when the last change is 182+ days old.
func (s *AuthService) PasswordExpired(u bidtracker.AppUser) bool {
	if u.LastPasswordChangeDate == "" {
		return true
	}
	changed, err := time.Parse(dateLayout, u.LastPasswordChangeDate)
	if err != nil {
		return true
	}
	days := int(s.now().Sub(changed).Hours() / 24)
	return days >= passwordMaxAgeDays
}

// ChangePassword applies the four-rule policy for the logged-in user, stamps
// the change date, and writes through session, local list and — when
// configured — the remote list. A failed remote write fails the whole
// operation before anything local changes.
func (s *AuthService) ChangePassword(ctx context.Context, current, newPassword, confirm string) (bidtracker.AppUser, error) {
	u, ok := s.Session(ctx)
	if !ok {
		return bidtracker.AppUser{}, ErrNotLoggedIn
	}

	switch {
	case current != u.Password:
		return bidtracker.AppUser{}, ErrCurrentPasswordMismatch
	case len([]rune(newPassword)) < minPasswordLen:
		return bidtracker.AppUser{}, ErrPasswordTooShort
	case newPassword == current:
		return bidtracker.AppUser{}, ErrPasswordUnchanged
	case newPassword != confirm:
		return bidtracker.AppUser{}, ErrPasswordConfirmMismatch
	}

	updated := u
	updated.Password = newPassword
	updated.LastPasswordChangeDate = s.now().Format(dateLayout)

	if s.gw.Configured(ctx) {
		if !s.gw.SyncUser(ctx, remote.ActionUpdateUser, &updated, "") {
			return bidtracker.AppUser{}, ErrRemoteSyncFailed
		}
	}
	if err := s.users.UpdateLocal(ctx, updated); err != nil {
		return bidtracker.AppUser{}, err
	}
	if err := s.saveSession(ctx, updated); err != nil {
		return bidtracker.AppUser{}, err
	}
	return updated, nil
}

func (s *AuthService) saveSession(ctx context.Context, u bidtracker.AppUser) error {
	blob, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, repository.KeySession, string(blob))
}

func (s *AuthService) issueToken(userID string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	return token.SignedString(s.signingKey)
}
