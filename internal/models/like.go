package models

import (
	"time"
)

// Like targets a post or a comment, never both. One like per user per target
// is enforced by partial unique indexes created in db.Migrate, since the
// uniqueness only applies to the non-null column.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID    *uint     `gorm:"index;check:(post_id IS NULL) <> (comment_id IS NULL)" json:"post"`
	Post      *Post     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CommentID *uint     `gorm:"index" json:"comment"`
	Comment   *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// IsPostLike reports whether the like targets a post.
func (l *Like) IsPostLike() bool {
	return l.PostID != nil
}
