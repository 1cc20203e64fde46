package services

import (
	"context"
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Target names exactly one post or one comment.
type Target struct {
	Kind TargetKind
	ID   uint
}

func PostTarget(id uint) Target {
	return Target{Kind: TargetPost, ID: id}
}

func CommentTarget(id uint) Target {
	return Target{Kind: TargetComment, ID: id}
}

// NewTarget builds a target from the two optional ids of a like request.
// Exactly one must be set.
func NewTarget(postID, commentID *uint) (Target, error) {
	switch {
	case postID != nil && commentID != nil:
		return Target{}, &Error{Kind: KindInvalidTarget, Message: "a like targets either a post or a comment, not both"}
	case postID != nil:
		return PostTarget(*postID), nil
	case commentID != nil:
		return CommentTarget(*commentID), nil
	default:
		return Target{}, &Error{Kind: KindInvalidTarget, Message: "a like needs a post or a comment"}
	}
}

func (t Target) validate() error {
	if t.Kind != TargetPost && t.Kind != TargetComment {
		return &Error{Kind: KindInvalidTarget, Message: "unknown like target"}
	}
	if t.ID == 0 {
		return &Error{Kind: KindInvalidTarget, Field: string(t.Kind), Message: "target id is required"}
	}
	return nil
}

// LikeResult reports whether the like was written by this call or already
// existed.
type LikeResult struct {
	Created bool
	Like    models.Like
}

type LikeService struct {
	db *gorm.DB
}

func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{db: db}
}

// SubmitLike records that actorID likes target. Repeating the call, even
// concurrently, leaves exactly one like and returns it with Created=false.
func (s *LikeService) SubmitLike(ctx context.Context, actorID uint, target Target) (LikeResult, error) {
	res, err := s.submit(ctx, actorID, target)
	outcome := "created"
	switch {
	case err != nil:
		outcome = "rejected"
	case !res.Created:
		outcome = "existing"
	}
	likesSubmitted.WithLabelValues(string(target.Kind), outcome).Inc()
	return res, err
}

func (s *LikeService) submit(ctx context.Context, actorID uint, target Target) (LikeResult, error) {
	if actorID == 0 {
		return LikeResult{}, unauthenticated()
	}
	if err := target.validate(); err != nil {
		return LikeResult{}, err
	}

	tx := s.db.WithContext(ctx)
	if err := s.ensureTarget(tx, target); err != nil {
		return LikeResult{}, err
	}

	like := models.Like{UserID: actorID}
	id := target.ID
	if target.Kind == TargetPost {
		like.PostID = &id
	} else {
		like.CommentID = &id
	}

	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
	switch {
	case result.Error == nil && result.RowsAffected == 1:
		return LikeResult{Created: true, Like: like}, nil
	case result.Error == nil, errors.Is(result.Error, gorm.ErrDuplicatedKey):
		existing, err := s.existing(tx, actorID, target)
		if err != nil {
			return LikeResult{}, err
		}
		return LikeResult{Created: false, Like: existing}, nil
	case errors.Is(result.Error, gorm.ErrForeignKeyViolated):
		return LikeResult{}, notFound(string(target.Kind), target.ID)
	default:
		return LikeResult{}, storageError("create like", result.Error)
	}
}

func (s *LikeService) ensureTarget(tx *gorm.DB, target Target) error {
	var model any = &models.Post{}
	if target.Kind == TargetComment {
		model = &models.Comment{}
	}

	var count int64
	if err := tx.Model(model).Where("id = ?", target.ID).Count(&count).Error; err != nil {
		return storageError("load like target", err)
	}
	if count == 0 {
		return notFound(string(target.Kind), target.ID)
	}
	return nil
}

func (s *LikeService) existing(tx *gorm.DB, actorID uint, target Target) (models.Like, error) {
	column := "post_id"
	if target.Kind == TargetComment {
		column = "comment_id"
	}

	var like models.Like
	err := tx.Where("user_id = ? AND "+column+" = ?", actorID, target.ID).First(&like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The conflicting row vanished, which only happens when the target
			// was deleted in between.
			return models.Like{}, notFound(string(target.Kind), target.ID)
		}
		return models.Like{}, storageError("load existing like", err)
	}
	return like, nil
}
