package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	KarmaWindow       = 24 * time.Hour
	LeaderboardSize   = 5
	PostLikeWeight    = 5
	CommentLikeWeight = 1
)

type LeaderboardEntry struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Karma    int64  `json:"karma"`
}

// KarmaService ranks users by likes received inside the trailing window.
// Every call recomputes from the likes table.
type KarmaService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewKarmaService(conn *gorm.DB) *KarmaService {
	return &KarmaService{db: conn, now: conn.NowFunc}
}

// Now is the store clock, the same one that stamps created_at.
func (s *KarmaService) Now() time.Time {
	return s.now()
}

// karmaEvents yields one row per like in the window, carrying the author of
// the liked target and the weight of the like. Weights are inlined so
// postgres can type the column.
var karmaEvents = fmt.Sprintf(`
	SELECT posts.user_id AS user_id, %d AS points
	FROM likes JOIN posts ON posts.id = likes.post_id
	WHERE likes.created_at >= @since
	UNION ALL
	SELECT comments.user_id AS user_id, %d AS points
	FROM likes JOIN comments ON comments.id = likes.comment_id
	WHERE likes.created_at >= @since`, PostLikeWeight, CommentLikeWeight)

// Leaderboard returns at most LeaderboardSize users with positive karma,
// highest first. Equal karma is ordered by username, then user id.
func (s *KarmaService) Leaderboard(ctx context.Context, now time.Time) ([]LeaderboardEntry, error) {
	timer := time.Now()
	defer func() {
		leaderboardDuration.Observe(time.Since(timer).Seconds())
	}()

	since := now.UTC().Add(-KarmaWindow)
	entries := []LeaderboardEntry{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT users.id AS user_id, users.username AS username, SUM(events.points) AS karma
		FROM (`+karmaEvents+`) AS events
		JOIN users ON users.id = events.user_id
		GROUP BY users.id, users.username
		HAVING SUM(events.points) > 0
		ORDER BY karma DESC, users.username ASC, users.id ASC
		LIMIT @limit`,
		sql.Named("since", since), sql.Named("limit", LeaderboardSize),
	).Scan(&entries).Error
	if err != nil {
		return nil, storageError("compute leaderboard", err)
	}
	return entries, nil
}

// Karma returns one user's karma in the window ending at now.
func (s *KarmaService) Karma(ctx context.Context, userID uint, now time.Time) (int64, error) {
	since := now.UTC().Add(-KarmaWindow)
	var karma int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(events.points), 0)
		FROM (`+karmaEvents+`) AS events
		WHERE events.user_id = @user`,
		sql.Named("since", since), sql.Named("user", userID),
	).Scan(&karma).Error
	if err != nil {
		return 0, storageError("compute karma", err)
	}
	return karma, nil
}
