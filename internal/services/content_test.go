package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	svc := NewContentService(f.db)
	alice := f.user("alice")
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, alice.ID, "  hello world  ")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "hello world", post.Content)
	assert.True(t, post.CreatedAt.Equal(epoch))

	_, err = svc.CreatePost(ctx, 0, "hello")
	assert.True(t, errors.Is(err, ErrUnauthenticated))

	_, err = svc.CreatePost(ctx, alice.ID, "   ")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = svc.CreatePost(ctx, alice.ID, strings.Repeat("a", MaxContentLength+1))
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestCreateComment_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewContentService(f.db)
	alice := f.user("alice")
	p1 := f.post(alice)
	p2 := f.post(alice)
	onP2 := f.comment(alice, p2, nil, "elsewhere")
	ctx := context.Background()

	missing := uint(9999)
	zero := uint(0)

	tests := []struct {
		name  string
		actor uint
		in    CreateCommentInput
		kind  Kind
		field string
	}{
		{name: "no actor", actor: 0, in: CreateCommentInput{PostID: p1.ID, Content: "x"}, kind: KindUnauthenticated},
		{name: "no post", actor: alice.ID, in: CreateCommentInput{Content: "x"}, kind: KindInvalidInput, field: "post"},
		{name: "blank content", actor: alice.ID, in: CreateCommentInput{PostID: p1.ID, Content: " "}, kind: KindInvalidInput, field: "content"},
		{name: "zero parent", actor: alice.ID, in: CreateCommentInput{PostID: p1.ID, ParentID: &zero, Content: "x"}, kind: KindInvalidInput, field: "parent"},
		{name: "unknown post", actor: alice.ID, in: CreateCommentInput{PostID: missing, Content: "x"}, kind: KindNotFound, field: "post"},
		{name: "unknown parent", actor: alice.ID, in: CreateCommentInput{PostID: p1.ID, ParentID: &missing, Content: "x"}, kind: KindNotFound, field: "parent"},
		{name: "parent on other post", actor: alice.ID, in: CreateCommentInput{PostID: p1.ID, ParentID: &onP2.ID, Content: "x"}, kind: KindInvalidParent, field: "parent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateComment(ctx, tt.actor, tt.in)
			require.Error(t, err)
			var svcErr *Error
			require.True(t, errors.As(err, &svcErr))
			assert.Equal(t, tt.kind, svcErr.Kind)
			assert.Equal(t, tt.field, svcErr.Field)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "rejected comments must not be stored")
}

func TestCreateComment_Nested(t *testing.T) {
	f := newFixture(t)
	svc := NewContentService(f.db)
	alice := f.user("alice")
	post := f.post(alice)
	ctx := context.Background()

	top, err := svc.CreateComment(ctx, alice.ID, CreateCommentInput{PostID: post.ID, Content: "top"})
	require.NoError(t, err)
	assert.Nil(t, top.ParentID)

	reply, err := svc.CreateComment(ctx, alice.ID, CreateCommentInput{PostID: post.ID, ParentID: &top.ID, Content: "reply"})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)
	assert.Equal(t, post.ID, reply.PostID)
}

func TestGetPostAndComment(t *testing.T) {
	f := newFixture(t)
	svc := NewContentService(f.db)
	alice := f.user("alice")
	post := f.post(alice)
	c := f.comment(alice, post, nil, "hi")
	ctx := context.Background()

	got, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.User.Username)

	gotComment, err := svc.GetComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", gotComment.Content)

	_, err = svc.GetPost(ctx, 404)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = svc.GetComment(ctx, 404)
	assert.True(t, errors.Is(err, ErrNotFound))
}
