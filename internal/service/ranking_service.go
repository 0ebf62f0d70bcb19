package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"lifeboard/internal/models"
	"lifeboard/internal/repository"

	"gorm.io/gorm"
)

// Feed sort modes.
const (
	SortLatest   = "latest"
	SortBest     = "best"
	SortTrending = "trending"
)

// Best-feed periods.
const (
	PeriodWeek      = "7d"
	PeriodFortnight = "14d"
	PeriodMonth     = "30d"
	PeriodAll       = "all"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// bestOverFetchPad and bestOverFetchFloor size the candidate pool for
	// the in-memory best sort so deep pages stay stable.
	bestOverFetchPad   = 50
	bestOverFetchFloor = 200

	// trendingFetchFloor is the minimum candidate fetch per window.
	trendingFetchFloor = 100

	// trendingMinResults is the default floor of results the trending feed
	// tries to fill before giving up on the windows.
	trendingMinResults = 20

	// Trending score tuning. Half-ish life of 72 hours with a flat boost
	// for anything posted within the last day.
	trendingLikeWeight    = 2.0
	trendingViewWeight    = 0.1
	trendingDecayHours    = 72.0
	trendingFreshBoost    = 3.0
	trendingFreshWindowHr = 24.0
)

// trendingWindows are tried in order, widening until the feed fills.
var trendingWindows = []string{PeriodWeek, PeriodFortnight, PeriodMonth, PeriodAll}

// FeedInput selects a page of the post feed.
type FeedInput struct {
	CategoryCode string
	Query        string
	Sort         string
	Period       string
	Page         int
	PageSize     int
	// MinResults only applies to the trending sort. Zero means the default.
	MinResults int
}

// RankingService computes the latest, best, and trending post feeds.
type RankingService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	comments   repository.CommentRepository
	now        func() time.Time
}

// NewRankingService wires the feed reader. The clock is injected so ranking
// math is deterministic under test.
func NewRankingService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	comments repository.CommentRepository,
	now func() time.Time,
) *RankingService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &RankingService{
		posts:      posts,
		categories: categories,
		comments:   comments,
		now:        now,
	}
}

// List returns one page of the feed in the requested order. Unknown sort
// modes fall back to latest, unknown periods to the monthly window, and an
// unknown category code behaves as no category filter at all.
func (s *RankingService) List(ctx context.Context, in FeedInput) ([]*models.Post, error) {
	page := in.Page
	if page < 0 {
		page = 0
	}
	size := in.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	filter, err := s.buildFilter(ctx, in)
	if err != nil {
		return nil, err
	}

	var posts []*models.Post
	switch strings.ToLower(strings.TrimSpace(in.Sort)) {
	case SortBest:
		posts, err = s.listBest(ctx, filter, in.Period, page, size)
	case SortTrending:
		posts, err = s.listTrending(ctx, filter, page, size, in.MinResults)
	default:
		posts, err = s.posts.Latest(ctx, filter, size, page*size)
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachCommentCounts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *RankingService) buildFilter(ctx context.Context, in FeedInput) (repository.PostFilter, error) {
	f := repository.PostFilter{Query: strings.TrimSpace(in.Query)}
	code := strings.TrimSpace(in.CategoryCode)
	if code == "" {
		return f, nil
	}
	cat, err := s.categories.GetByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// an unknown category code filters nothing rather than erroring
		return f, nil
	}
	if err != nil {
		return f, err
	}
	f.CategoryID = &cat.ID
	return f, nil
}

// listBest ranks by likes, then views, then recency within the period. The
// candidate pool is over-fetched past the page boundary so the in-memory sort
// never reorders across pages as new posts arrive below the cutoff.
func (s *RankingService) listBest(ctx context.Context, f repository.PostFilter, period string, page, size int) ([]*models.Post, error) {
	since := s.periodStart(normalizePeriod(period))

	limitNeeded := (page + 1) * size
	fetchLimit := limitNeeded + bestOverFetchPad
	if fetchLimit < bestOverFetchFloor {
		fetchLimit = bestOverFetchFloor
	}

	candidates, err := s.posts.Since(ctx, f, since, fetchLimit)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Likes != b.Likes {
			return a.Likes > b.Likes
		}
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	return pageOf(candidates, page, size), nil
}

// listTrending scores recent posts and widens the time window until the
// accumulator covers the requested page plus one page of lookahead. If even
// the unbounded window comes up short, the tail is backfilled latest-first so
// a young board still renders a full feed.
func (s *RankingService) listTrending(ctx context.Context, f repository.PostFilter, page, size, minResults int) ([]*models.Post, error) {
	if minResults <= 0 {
		minResults = trendingMinResults
	}

	limitNeeded := (page + 1) * size
	need := limitNeeded
	if need < minResults {
		need = minResults
	}
	fetchSize := need * 3
	if fetchSize < trendingFetchFloor {
		fetchSize = trendingFetchFloor
	}

	now := s.now()
	picked := make([]*models.Post, 0, limitNeeded+size)
	seen := make(map[uint]struct{})

	for _, window := range trendingWindows {
		candidates, err := s.posts.Since(ctx, f, s.periodStart(window), fetchSize)
		if err != nil {
			return nil, err
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			si := s.trendingScore(candidates[i], now)
			sj := s.trendingScore(candidates[j], now)
			if si != sj {
				return si > sj
			}
			if !candidates[i].CreatedAt.Equal(candidates[j].CreatedAt) {
				return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
			}
			return candidates[i].ID > candidates[j].ID
		})

		for _, p := range candidates {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			picked = append(picked, p)
		}

		if len(picked) >= limitNeeded+size {
			break
		}
	}

	if len(picked) < limitNeeded+size {
		backfill, err := s.posts.Latest(ctx, f, fetchSize, 0)
		if err != nil {
			return nil, err
		}
		for _, p := range backfill {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			picked = append(picked, p)
			if len(picked) >= limitNeeded+size {
				break
			}
		}
	}

	return pageOf(picked, page, size), nil
}

// trendingScore weights likes over views with an exponential age decay and a
// flat boost for posts under a day old.
func (s *RankingService) trendingScore(p *models.Post, now time.Time) float64 {
	ageHours := now.Sub(p.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	score := (float64(p.Likes)*trendingLikeWeight + float64(p.Views)*trendingViewWeight) *
		math.Exp(-ageHours/trendingDecayHours)
	if ageHours <= trendingFreshWindowHr {
		score += trendingFreshBoost
	}
	return score
}

func (s *RankingService) periodStart(period string) time.Time {
	now := s.now()
	switch period {
	case PeriodWeek:
		return now.Add(-7 * 24 * time.Hour)
	case PeriodFortnight:
		return now.Add(-14 * 24 * time.Hour)
	case PeriodMonth:
		return now.Add(-30 * 24 * time.Hour)
	default:
		// "all" still goes through the same query path, just with a
		// cutoff no post can be older than.
		return now.AddDate(-100, 0, 0)
	}
}

func normalizePeriod(period string) string {
	switch strings.ToLower(strings.TrimSpace(period)) {
	case PeriodWeek:
		return PeriodWeek
	case PeriodFortnight:
		return PeriodFortnight
	case PeriodAll:
		return PeriodAll
	default:
		return PeriodMonth
	}
}

func pageOf(posts []*models.Post, page, size int) []*models.Post {
	start := page * size
	if start >= len(posts) {
		return []*models.Post{}
	}
	end := start + size
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end]
}

func (s *RankingService) attachCommentCounts(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	counts, err := s.comments.CountActiveByPostIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.CommentCount = counts[p.ID]
	}
	return nil
}
