package service

import (
	"context"
	"time"

	"challenge75/internal/challenge"
	"challenge75/internal/model"
)

// FeedService projects the cross-user "today" status snapshot for the
// activity view. It is a best-effort read: it does not serialize with
// concurrent writers.
type FeedService struct {
	repo FeedRepository
}

func NewFeedService(repo FeedRepository) *FeedService {
	return &FeedService{repo: repo}
}

// SnapshotToday returns one entry per user for today's normalized UTC
// date. Day is nil for users with no record yet, which callers must
// keep distinct from an empty-but-created day.
func (s *FeedService) SnapshotToday(ctx context.Context) ([]model.FeedEntry, error) {
	return s.repo.GetTodayFeed(ctx, challenge.NormalizeDay(time.Now()))
}
