package service

import (
	"context"
	"sync"
	"time"

	"bidtracker"
)

// MonitorService probes the remote endpoint in the background and keeps the
// snapshot behind the dashboard header indicator.
type MonitorService struct {
	sheet Sheet
	gw    Gateway

	mu     sync.RWMutex
	status bidtracker.ConnectionStatus
}

func NewMonitorService(sheet Sheet, gw Gateway) *MonitorService {
	return &MonitorService{
		sheet:  sheet,
		gw:     gw,
		status: bidtracker.ConnectionStatus{Message: "아직 확인되지 않았습니다."},
	}
}

var _ Monitor = (*MonitorService)(nil)

// Run probes immediately and then on every tick until ctx is cancelled.
func (s *MonitorService) Run(ctx context.Context, tick time.Duration) {
	s.probe(ctx)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx)
		}
	}
}

// Status returns the latest snapshot.
func (s *MonitorService) Status() bidtracker.ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *MonitorService) probe(ctx context.Context) {
	next := bidtracker.ConnectionStatus{
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
	}

	url, ok := s.sheet.URL(ctx)
	if !ok {
		next.Message = "원격 저장소가 설정되지 않았습니다."
	} else {
		next.Configured = true
		msg, err := s.gw.TestConnection(ctx, url)
		if err != nil {
			next.Message = err.Error()
		} else {
			next.Connected = true
			next.Message = msg
		}
	}

	s.mu.Lock()
	s.status = next
	s.mu.Unlock()
}
