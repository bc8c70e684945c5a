package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"bidtracker"
	"bidtracker/internal/remote"
)

var (
	ErrBidNotFound = errors.New("해당 입찰 건을 찾을 수 없습니다.")
	ErrSyncFailed  = errors.New("원격 저장소 동기화에 실패했습니다.")
)

// BidsService holds the fetched/seeded bid list in memory and keeps it in sync
// with the remote store. Mutations are optimistic: applied locally first, then
// synced, and rolled back when the sync reports failure.
type BidsService struct {
	gw Gateway

	mu     sync.Mutex
	bids   []bidtracker.Bid
	loaded bool
}

func NewBidsService(gw Gateway) *BidsService {
	return &BidsService{gw: gw}
}

var _ Bids = (*BidsService)(nil)

// Reload refreshes the registry from the remote store. Without a configured
// endpoint the bundled sample dataset is used. A failed fetch keeps the
// current list (or seeds the sample data into an empty one) and reports the
// classified error.
func (s *BidsService) Reload(ctx context.Context) ([]bidtracker.Bid, error) {
	if !s.gw.Configured(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.bids = append([]bidtracker.Bid(nil), bidtracker.SampleBids...)
		s.loaded = true
		return append([]bidtracker.Bid(nil), s.bids...), nil
	}

	fetched, err := s.gw.FetchBids(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if len(s.bids) == 0 {
			s.bids = append([]bidtracker.Bid(nil), bidtracker.SampleBids...)
		}
		s.loaded = true
		return append([]bidtracker.Bid(nil), s.bids...), err
	}
	s.bids = fetched
	s.loaded = true
	return append([]bidtracker.Bid(nil), s.bids...), nil
}

func (s *BidsService) ensureLoaded(ctx context.Context) {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		_, _ = s.Reload(ctx)
	}
}

// List returns the year-filtered view, optionally sorted by one column.
// year <= 0 disables the filter; dir is "asc" unless "desc". The sort is
// stable: ties keep their prior relative order.
func (s *BidsService) List(ctx context.Context, year int, sortKey, dir string) []bidtracker.Bid {
	s.ensureLoaded(ctx)

	s.mu.Lock()
	view := make([]bidtracker.Bid, 0, len(s.bids))
	for _, b := range s.bids {
		if year <= 0 || b.TargetYear == year {
			view = append(view, b)
		}
	}
	s.mu.Unlock()

	if sortKey != "" {
		desc := dir == "desc"
		sort.SliceStable(view, func(i, j int) bool {
			c := compareBids(view[i], view[j], sortKey)
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	return view
}

// Create prepends a client-stamped record and syncs it. On sync failure the
// registry is rolled back by reloading from the remote source of truth.
func (s *BidsService) Create(ctx context.Context, bid bidtracker.Bid) (bidtracker.Bid, error) {
	s.ensureLoaded(ctx)
	if bid.ID == "" {
		bid.ID = bidtracker.NewID()
	}

	s.mu.Lock()
	s.bids = append([]bidtracker.Bid{bid}, s.bids...)
	s.mu.Unlock()

	if s.gw.Configured(ctx) && !s.gw.SyncBid(ctx, remote.ActionCreate, &bid, "") {
		s.rollbackFromRemote(ctx, bid.ID)
		return bidtracker.Bid{}, ErrSyncFailed
	}
	return bid, nil
}

// Update replaces the record with the matching ID, same sync contract as
// Create.
func (s *BidsService) Update(ctx context.Context, bid bidtracker.Bid) error {
	s.ensureLoaded(ctx)

	s.mu.Lock()
	var prev *bidtracker.Bid
	for i := range s.bids {
		if s.bids[i].ID == bid.ID {
			p := s.bids[i]
			prev = &p
			s.bids[i] = bid
			break
		}
	}
	s.mu.Unlock()
	if prev == nil {
		return ErrBidNotFound
	}

	if s.gw.Configured(ctx) && !s.gw.SyncBid(ctx, remote.ActionUpdate, &bid, "") {
		s.restoreBid(ctx, *prev)
		return ErrSyncFailed
	}
	return nil
}

// Delete removes the record optimistically and restores the prior list when
// the remote delete reports failure.
func (s *BidsService) Delete(ctx context.Context, id string) error {
	s.ensureLoaded(ctx)

	s.mu.Lock()
	prior := append([]bidtracker.Bid(nil), s.bids...)
	kept := s.bids[:0]
	for _, b := range s.bids {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	removed := len(kept) != len(prior)
	s.bids = kept
	s.mu.Unlock()

	if !removed {
		return ErrBidNotFound
	}
	if s.gw.Configured(ctx) && !s.gw.SyncBid(ctx, remote.ActionDelete, nil, id) {
		s.mu.Lock()
		s.bids = prior
		s.mu.Unlock()
		return ErrSyncFailed
	}
	return nil
}

// rollbackFromRemote reloads the registry after a failed create/update sync.
// If even the reload fails, the optimistic record is dropped instead of being
// silently kept.
func (s *BidsService) rollbackFromRemote(ctx context.Context, optimisticID string) {
	fetched, err := s.gw.FetchBids(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		kept := s.bids[:0]
		for _, b := range s.bids {
			if b.ID != optimisticID {
				kept = append(kept, b)
			}
		}
		s.bids = kept
		return
	}
	s.bids = fetched
}

// restoreBid puts the previous version of a record back after a failed update
// sync, falling back to a remote reload when the slot is gone.
func (s *BidsService) restoreBid(ctx context.Context, prev bidtracker.Bid) {
	s.mu.Lock()
	for i := range s.bids {
		if s.bids[i].ID == prev.ID {
			s.bids[i] = prev
			s.mu.Unlock()
			return
		}
	}
	s.mu.Unlock()
	s.rollbackFromRemote(ctx, prev.ID)
}

// Stats summarizes one year, excluding the Test category.
func (s *BidsService) Stats(ctx context.Context, year int) bidtracker.DashboardStats {
	bids := s.List(ctx, year, "", "")

	stats := bidtracker.DashboardStats{}
	byCat := map[bidtracker.BidCategory]*bidtracker.CategoryResultCount{
		bidtracker.CategoryNew:      {Category: bidtracker.CategoryNew},
		bidtracker.CategoryExisting: {Category: bidtracker.CategoryExisting},
	}

	for _, b := range bids {
		if b.Category == bidtracker.CategoryTest {
			continue
		}
		stats.TotalBids++
		stats.TotalProposalAmount += b.ProposalAmount

		switch b.Result {
		case bidtracker.ResultWon:
			stats.WonBids++
			stats.TotalWonAmount += b.ProposalAmount
		case bidtracker.ResultLost:
			stats.LostBids++
		case bidtracker.ResultPending:
			stats.PendingBids++
		}

		if c, ok := byCat[b.Category]; ok {
			switch b.Result {
			case bidtracker.ResultWon:
				c.Won++
			case bidtracker.ResultPending:
				c.Pending++
			case bidtracker.ResultLost:
				c.Lost++
			case bidtracker.ResultDrop:
				c.Drop++
			}
		}
	}

	stats.CompletedBids = stats.WonBids + stats.LostBids
	if stats.CompletedBids > 0 {
		stats.WinRate = int(math.Round(float64(stats.WonBids) / float64(stats.CompletedBids) * 100))
	}
	stats.ByCategory = []bidtracker.CategoryResultCount{
		*byCat[bidtracker.CategoryNew],
		*byCat[bidtracker.CategoryExisting],
	}
	return stats
}

// compareBids is the generic relational comparison behind header-click
// sorting: numeric for the numeric columns, lexicographic otherwise. Unknown
// keys compare equal, which leaves the order untouched.
func compareBids(a, b bidtracker.Bid, key string) int {
	switch key {
	case "targetYear":
		return a.TargetYear - b.TargetYear
	case "proposalAmount":
		switch {
		case a.ProposalAmount < b.ProposalAmount:
			return -1
		case a.ProposalAmount > b.ProposalAmount:
			return 1
		}
		return 0
	case "id":
		return strings.Compare(a.ID, b.ID)
	case "category":
		return strings.Compare(string(a.Category), string(b.Category))
	case "clientName":
		return strings.Compare(a.ClientName, b.ClientName)
	case "manager":
		return strings.Compare(a.Manager, b.Manager)
	case "projectName":
		return strings.Compare(a.ProjectName, b.ProjectName)
	case "method":
		return strings.Compare(a.Method, b.Method)
	case "schedule":
		return strings.Compare(a.Schedule, b.Schedule)
	case "contractPeriod":
		return strings.Compare(a.ContractPeriod, b.ContractPeriod)
	case "competitors":
		return strings.Compare(a.Competitors, b.Competitors)
	case "statusDetail":
		return strings.Compare(a.StatusDetail, b.StatusDetail)
	case "result":
		return strings.Compare(string(a.Result), string(b.Result))
	case "preferredBidder":
		return strings.Compare(a.PreferredBidder, b.PreferredBidder)
	case "remarks":
		return strings.Compare(a.Remarks, b.Remarks)
	}
	return 0
}
