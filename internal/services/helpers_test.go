package services

import (
	"fmt"
	"testing"
	"time"

	"agora/internal/db/testdb"
	"agora/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var epoch = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	db    *gorm.DB
	clock *testdb.Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := testdb.NewClock(epoch)
	return &fixture{t: t, db: testdb.New(t, clock), clock: clock}
}

func (f *fixture) user(name string) models.User {
	f.t.Helper()
	u := models.User{Username: name, Password: "x"}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

func (f *fixture) post(author models.User) models.Post {
	f.t.Helper()
	p := models.Post{UserID: author.ID, Content: fmt.Sprintf("post by %s", author.Username)}
	require.NoError(f.t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) comment(author models.User, post models.Post, parent *models.Comment, content string) models.Comment {
	f.t.Helper()
	c := models.Comment{PostID: post.ID, UserID: author.ID, Content: content}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	require.NoError(f.t, f.db.Create(&c).Error)
	return c
}

// likeAt stores a like stamped at the given time.
func (f *fixture) likeAt(at time.Time, liker models.User, target Target) {
	f.t.Helper()
	l := models.Like{UserID: liker.ID, CreatedAt: at}
	id := target.ID
	if target.Kind == TargetPost {
		l.PostID = &id
	} else {
		l.CommentID = &id
	}
	require.NoError(f.t, f.db.Create(&l).Error)
}
