// Package seed fills a database with demo users, threaded comments and likes.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agora/internal/models"
	"agora/internal/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DemoPassword = "password123"
	userCount    = 5
)

var postContents = []string{
	"Just discovered this community! Excited to be here",
	"What's everyone working on today? I'm building a Go service.",
	"Hot take: Go is the best first language for backend work",
	"Looking for recommendations on frontend state management libraries",
	"Just finished a 24-hour coding marathon. Time for sleep!",
}

// Summary counts rows written by a run.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

type Seeder struct {
	db      *gorm.DB
	users   *services.UserService
	content *services.ContentService
	likes   *services.LikeService
	log     *zap.Logger
}

func New(conn *gorm.DB, log *zap.Logger) *Seeder {
	return &Seeder{
		db:      conn,
		users:   services.NewUserService(conn),
		content: services.NewContentService(conn),
		likes:   services.NewLikeService(conn),
		log:     log,
	}
}

// Run creates the demo data. Users are reused when they already exist; posts,
// comments and likes go through the same services the API uses.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	users := make([]models.User, 0, userCount)
	for i := 1; i <= userCount; i++ {
		name := fmt.Sprintf("user%d", i)
		u, err := s.users.Register(ctx, name, name+"@example.com", DemoPassword)
		if errors.Is(err, services.ErrConflict) {
			u, err = s.users.Authenticate(ctx, name, DemoPassword)
		} else if err == nil {
			sum.Users++
			s.log.Info("created user", zap.String("username", name))
		}
		if err != nil {
			return sum, fmt.Errorf("seed user %s: %w", name, err)
		}
		users = append(users, u)
	}

	posts := make([]models.Post, 0, len(postContents))
	for i, text := range postContents {
		p, err := s.content.CreatePost(ctx, users[i%len(users)].ID, text)
		if err != nil {
			return sum, fmt.Errorf("seed post: %w", err)
		}
		sum.Posts++
		posts = append(posts, p)
	}

	comment := func(author models.User, post models.Post, parent *models.Comment, text string) (models.Comment, error) {
		in := services.CreateCommentInput{PostID: post.ID, Content: text}
		if parent != nil {
			in.ParentID = &parent.ID
		}
		c, err := s.content.CreateComment(ctx, author.ID, in)
		if err == nil {
			sum.Comments++
		}
		return c, err
	}

	var comments []models.Comment
	top, err := comment(users[1], posts[0], nil, "Welcome! This is a great place to learn and share.")
	if err != nil {
		return sum, fmt.Errorf("seed comment: %w", err)
	}
	reply, err := comment(users[2], posts[0], &top, "Totally agree! The community here is awesome.")
	if err != nil {
		return sum, fmt.Errorf("seed comment: %w", err)
	}
	deep, err := comment(users[3], posts[0], &reply, "I've been here for a month and learned so much!")
	if err != nil {
		return sum, fmt.Errorf("seed comment: %w", err)
	}
	comments = append(comments, top, reply, deep)

	for i := 1; i < len(posts); i++ {
		c, err := comment(users[(i+1)%len(users)], posts[i], nil, "Great post! This is really helpful.")
		if err != nil {
			return sum, fmt.Errorf("seed comment: %w", err)
		}
		comments = append(comments, c)
	}

	like := func(user models.User, target services.Target) error {
		res, err := s.likes.SubmitLike(ctx, user.ID, target)
		if err == nil && res.Created {
			sum.Likes++
		}
		return err
	}
	for _, p := range posts {
		for _, u := range users[:3] {
			if err := like(u, services.PostTarget(p.ID)); err != nil {
				return sum, fmt.Errorf("seed like: %w", err)
			}
		}
	}
	for _, c := range comments {
		for _, u := range users[:2] {
			if err := like(u, services.CommentTarget(c.ID)); err != nil {
				return sum, fmt.Errorf("seed like: %w", err)
			}
		}
	}

	// One like outside the karma window, so the leaderboard has something to
	// leave out.
	res, err := s.likes.SubmitLike(ctx, users[4].ID, services.PostTarget(posts[0].ID))
	if err != nil {
		return sum, fmt.Errorf("seed old like: %w", err)
	}
	if res.Created {
		sum.Likes++
	}
	old := s.db.NowFunc().Add(-services.KarmaWindow - time.Hour)
	err = s.db.WithContext(ctx).Model(&models.Like{}).
		Where("id = ?", res.Like.ID).
		UpdateColumn("created_at", old).Error
	if err != nil {
		return sum, fmt.Errorf("backdate like: %w", err)
	}

	s.log.Info("seed complete",
		zap.Int("users", sum.Users),
		zap.Int("posts", sum.Posts),
		zap.Int("comments", sum.Comments),
		zap.Int("likes", sum.Likes),
	)
	return sum, nil
}
