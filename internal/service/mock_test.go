package service

import (
	"context"
	"sync"

	"bidtracker"
)

// ---- in-memory KV ----

type fakeKV struct {
	mu sync.Mutex
	m  map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{m: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.m[key]
	return v, ok, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[key] = value
	return nil
}

func (f *fakeKV) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, key)
	return nil
}

// ---- gateway fake ----

type syncCall struct {
	action string
	id     string
}

type fakeGateway struct {
	configured bool

	testMsg string
	testErr error

	bids     []bidtracker.Bid // remote source of truth, returned by FetchBids
	fetchErr error

	users         []bidtracker.AppUser
	fetchUsersErr error

	syncBidOK  bool
	syncUserOK bool

	bidCalls  []syncCall
	userCalls []syncCall
}

func (g *fakeGateway) Configured(context.Context) bool { return g.configured }

func (g *fakeGateway) TestConnection(context.Context, string) (string, error) {
	return g.testMsg, g.testErr
}

func (g *fakeGateway) FetchBids(context.Context) ([]bidtracker.Bid, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return append([]bidtracker.Bid(nil), g.bids...), nil
}

func (g *fakeGateway) SyncBid(_ context.Context, action string, bid *bidtracker.Bid, id string) bool {
	if id == "" && bid != nil {
		id = bid.ID
	}
	g.bidCalls = append(g.bidCalls, syncCall{action: action, id: id})
	return g.syncBidOK
}

func (g *fakeGateway) FetchUsers(context.Context) ([]bidtracker.AppUser, error) {
	if g.fetchUsersErr != nil {
		return nil, g.fetchUsersErr
	}
	return append([]bidtracker.AppUser(nil), g.users...), nil
}

func (g *fakeGateway) SyncUser(_ context.Context, action string, user *bidtracker.AppUser, id string) bool {
	if id == "" && user != nil {
		id = user.ID
	}
	g.userCalls = append(g.userCalls, syncCall{action: action, id: id})
	return g.syncUserOK
}
