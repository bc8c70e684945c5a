package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"bidtracker"
	"bidtracker/internal/remote"
	"bidtracker/internal/repository"
)

var (
	ErrAdminUndeletable = errors.New("기본 관리자 계정은 삭제할 수 없습니다.")
	ErrInvalidUserInput = errors.New("이름과 생년월일 6자리를 정확히 입력해주세요.")
)

// MergeUsers performs a deterministic last-writer-wins merge over an ordered
// list of sources: entries are keyed by ID, later sources override earlier
// ones, and first-seen order is preserved.
func MergeUsers(sources ...[]bidtracker.AppUser) []bidtracker.AppUser {
	index := make(map[string]int)
	var merged []bidtracker.AppUser
	for _, source := range sources {
		for _, u := range source {
			if i, ok := index[u.ID]; ok {
				merged[i] = u
				continue
			}
			index[u.ID] = len(merged)
			merged = append(merged, u)
		}
	}
	return merged
}

// UsersService maintains the account list: bundled defaults, the locally
// persisted list, and the remote rows, merged by ID.
type UsersService struct {
	kv repository.KV
	gw Gateway
}

func NewUsersService(kv repository.KV, gw Gateway) *UsersService {
	return &UsersService{kv: kv, gw: gw}
}

var _ Users = (*UsersService)(nil)

// local reads the persisted account list. A missing or corrupt blob yields nil
// so callers fall back to the bundled defaults.
func (s *UsersService) local(ctx context.Context) []bidtracker.AppUser {
	raw, ok, err := s.kv.Get(ctx, repository.KeyUsers)
	if err != nil || !ok {
		return nil
	}
	var users []bidtracker.AppUser
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil
	}
	return users
}

func (s *UsersService) saveLocal(ctx context.Context, users []bidtracker.AppUser) error {
	blob, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, repository.KeyUsers, string(blob))
}

// Bootstrap seeds the persisted list on first start and folds newly bundled
// accounts into an existing one. Stored entries win ties by ID.
func (s *UsersService) Bootstrap(ctx context.Context) error {
	return s.saveLocal(ctx, MergeUsers(bidtracker.MasterUsers, s.local(ctx)))
}

// Merged returns the full merged list: the locally known accounts, then — best
// effort — the remote rows, the later source overriding by ID.
func (s *UsersService) Merged(ctx context.Context) []bidtracker.AppUser {
	sources := [][]bidtracker.AppUser{s.localMerged(ctx)}
	if s.gw.Configured(ctx) {
		if cloud, err := s.gw.FetchUsers(ctx); err == nil && len(cloud) > 0 {
			sources = append(sources, cloud)
		}
	}
	return MergeUsers(sources...)
}

// Create registers a new account locally and pushes it to the remote list when
// one is configured. The remote write is best effort, matching the rest of the
// account surface.
func (s *UsersService) Create(ctx context.Context, name, birthDate string, isAdmin bool) (bidtracker.AppUser, error) {
	name = strings.TrimSpace(name)
	birthDate = strings.TrimSpace(birthDate)
	if name == "" || len(birthDate) != 6 {
		return bidtracker.AppUser{}, ErrInvalidUserInput
	}
	for _, r := range birthDate {
		if r < '0' || r > '9' {
			return bidtracker.AppUser{}, ErrInvalidUserInput
		}
	}

	// The birthdate doubles as the initial password; the empty change date
	// forces the change-password flow on first login.
	u := bidtracker.AppUser{
		ID:        bidtracker.NewID(),
		Name:      name,
		BirthDate: birthDate,
		Password:  birthDate,
		IsAdmin:   isAdmin,
	}
	if err := s.saveLocal(ctx, append(s.localMerged(ctx), u)); err != nil {
		return bidtracker.AppUser{}, err
	}
	if s.gw.Configured(ctx) {
		s.gw.SyncUser(ctx, remote.ActionCreateUser, &u, "")
	}
	return u, nil
}

// Delete removes an account. The bundled admin is never deletable.
func (s *UsersService) Delete(ctx context.Context, id string) error {
	if id == bidtracker.AdminUserID {
		return ErrAdminUndeletable
	}
	users := s.localMerged(ctx)
	kept := users[:0]
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if err := s.saveLocal(ctx, kept); err != nil {
		return err
	}
	if s.gw.Configured(ctx) {
		s.gw.SyncUser(ctx, remote.ActionDeleteUser, nil, id)
	}
	return nil
}

// UpdateLocal replaces (or appends) the entry in the persisted list. Used by
// the password-change flow.
func (s *UsersService) UpdateLocal(ctx context.Context, updated bidtracker.AppUser) error {
	users := s.localMerged(ctx)
	found := false
	for i := range users {
		if users[i].ID == updated.ID {
			users[i] = updated
			found = true
			break
		}
	}
	if !found {
		users = append(users, updated)
	}
	return s.saveLocal(ctx, users)
}

// Lookup finds an account in the locally known list. Used by request
// middleware, so it never touches the network.
func (s *UsersService) Lookup(ctx context.Context, id string) (bidtracker.AppUser, bool) {
	for _, u := range s.localMerged(ctx) {
		if u.ID == id {
			return u, true
		}
	}
	return bidtracker.AppUser{}, false
}

// localMerged returns the persisted list when one exists, the bundled defaults
// otherwise. Once a list has been written it is authoritative: a deleted
// bundled account must not resurface on the next read.
func (s *UsersService) localMerged(ctx context.Context) []bidtracker.AppUser {
	if users := s.local(ctx); users != nil {
		return users
	}
	return append([]bidtracker.AppUser(nil), bidtracker.MasterUsers...)
}
