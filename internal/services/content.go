package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"agora/internal/models"

	"gorm.io/gorm"
)

// MaxContentLength caps post and comment bodies, in characters.
const MaxContentLength = 10000

type CreateCommentInput struct {
	PostID   uint
	ParentID *uint
	Content  string
}

// ContentService creates and reads posts and comments. Structural checks run
// before anything is written.
type ContentService struct {
	db *gorm.DB
}

func NewContentService(db *gorm.DB) *ContentService {
	return &ContentService{db: db}
}

func (s *ContentService) CreatePost(ctx context.Context, actorID uint, content string) (models.Post, error) {
	if actorID == 0 {
		return models.Post{}, unauthenticated()
	}
	content, err := validateContent(content)
	if err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		UserID:  actorID,
		Content: content,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return models.Post{}, unauthenticated()
		}
		return models.Post{}, storageError("create post", err)
	}
	postsCreated.Inc()
	return post, nil
}

func (s *ContentService) CreateComment(ctx context.Context, actorID uint, in CreateCommentInput) (models.Comment, error) {
	if actorID == 0 {
		return models.Comment{}, unauthenticated()
	}
	if in.PostID == 0 {
		return models.Comment{}, invalidInput("post", "post is required")
	}
	if in.ParentID != nil && *in.ParentID == 0 {
		return models.Comment{}, invalidInput("parent", "parent must be a comment id")
	}
	content, err := validateContent(in.Content)
	if err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		PostID:   in.PostID,
		UserID:   actorID,
		ParentID: in.ParentID,
		Content:  content,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, in.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("post", in.PostID)
			}
			return storageError("load post", err)
		}

		if in.ParentID != nil {
			var parent models.Comment
			if err := tx.Select("id", "post_id").First(&parent, *in.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFound("parent", *in.ParentID)
				}
				return storageError("load parent comment", err)
			}
			if parent.PostID != in.PostID {
				return &Error{
					Kind:    KindInvalidParent,
					Field:   "parent",
					ID:      parent.ID,
					Message: "parent comment belongs to a different post",
				}
			}
		}

		if err := tx.Create(&comment).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return notFound("post", in.PostID)
			}
			return storageError("create comment", err)
		}
		return nil
	})
	if err != nil {
		return models.Comment{}, err
	}
	commentsCreated.Inc()
	return comment, nil
}

func (s *ContentService) GetPost(ctx context.Context, id uint) (models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Post{}, notFound("post", id)
		}
		return models.Post{}, storageError("load post", err)
	}
	return post, nil
}

func (s *ContentService) GetComment(ctx context.Context, id uint) (models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Comment{}, notFound("comment", id)
		}
		return models.Comment{}, storageError("load comment", err)
	}
	return comment, nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalidInput("content", "content must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", invalidInput("content", "content is too long")
	}
	return content, nil
}
