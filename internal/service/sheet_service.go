package service

import (
	"context"
	"errors"
	"strings"

	"bidtracker/internal/remote"
	"bidtracker/internal/repository"
)

var ErrNoSheetURL = errors.New("원격 저장소 URL이 설정되지 않았습니다.")

// SheetService owns the remote-endpoint configuration: the persisted URL, the
// connectivity test, and the companion script the user installs on the
// spreadsheet side.
type SheetService struct {
	kv repository.KV
	gw Gateway
}

func NewSheetService(kv repository.KV, gw Gateway) *SheetService {
	return &SheetService{kv: kv, gw: gw}
}

var _ Sheet = (*SheetService)(nil)

// URL returns the configured endpoint URL, ok=false when unset.
func (s *SheetService) URL(ctx context.Context) (string, bool) {
	value, ok, err := s.kv.Get(ctx, repository.KeySheetURL)
	if err != nil || !ok || value == "" {
		return "", false
	}
	return value, true
}

// SetURL validates and persists the endpoint URL. An empty URL clears the
// configuration, disabling the remote features.
func (s *SheetService) SetURL(ctx context.Context, rawURL string) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return s.kv.Remove(ctx, repository.KeySheetURL)
	}
	if err := remote.ValidateURL(rawURL); err != nil {
		return err
	}
	return s.kv.Set(ctx, repository.KeySheetURL, rawURL)
}

// Test probes the given URL, or the stored one when rawURL is empty.
func (s *SheetService) Test(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		stored, ok := s.URL(ctx)
		if !ok {
			return "", ErrNoSheetURL
		}
		rawURL = stored
	}
	return s.gw.TestConnection(ctx, rawURL)
}

// Script returns the Apps Script source to paste into the spreadsheet editor.
func (s *SheetService) Script() string {
	return appsScriptSource
}
