package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agora/internal/db/testdb"
	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTarget(t *testing.T) {
	id := uint(3)

	target, err := NewTarget(&id, nil)
	require.NoError(t, err)
	assert.Equal(t, PostTarget(3), target)

	target, err = NewTarget(nil, &id)
	require.NoError(t, err)
	assert.Equal(t, CommentTarget(3), target)

	_, err = NewTarget(nil, nil)
	assert.True(t, errors.Is(err, ErrInvalidTarget))

	_, err = NewTarget(&id, &id)
	assert.True(t, errors.Is(err, ErrInvalidTarget))
}

func TestSubmitLike_Idempotent(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")
	post := f.post(alice)
	svc := NewLikeService(f.db)
	ctx := context.Background()

	first, err := svc.SubmitLike(ctx, bob.ID, PostTarget(post.ID))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.NotZero(t, first.Like.ID)

	second, err := svc.SubmitLike(ctx, bob.ID, PostTarget(post.ID))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Like.ID, second.Like.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.Like{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmitLike_Concurrent(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	bob := f.user("bob")
	post := f.post(alice)
	comment := f.comment(alice, post, nil, "hi")
	svc := NewLikeService(f.db)

	const workers = 16
	for _, target := range []Target{PostTarget(post.ID), CommentTarget(comment.ID)} {
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			created int
			ids     = map[uint]struct{}{}
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := svc.SubmitLike(context.Background(), bob.ID, target)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if res.Created {
					created++
				}
				ids[res.Like.ID] = struct{}{}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, created, "exactly one submission creates the like")
		assert.Len(t, ids, 1, "every submission sees the same like")
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Like{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestSubmitLike_ConcurrentConnections(t *testing.T) {
	clock := testdb.NewClock(epoch)
	conn := testdb.NewConcurrent(t, clock, 8)
	f := &fixture{t: t, db: conn, clock: clock}
	alice := f.user("alice")
	bob := f.user("bob")
	post := f.post(alice)
	svc := NewLikeService(conn)

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[uint]struct{}{}
		start   = make(chan struct{})
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := svc.SubmitLike(context.Background(), bob.ID, PostTarget(post.ID))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Created {
				created++
			}
			ids[res.Like.ID] = struct{}{}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, ids, 1)

	var count int64
	require.NoError(t, conn.Model(&models.Like{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmitLike_PostAndCommentAreIndependent(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	post := f.post(alice)
	comment := f.comment(alice, post, nil, "hi")
	svc := NewLikeService(f.db)
	ctx := context.Background()

	onPost, err := svc.SubmitLike(ctx, alice.ID, PostTarget(post.ID))
	require.NoError(t, err)
	onComment, err := svc.SubmitLike(ctx, alice.ID, CommentTarget(comment.ID))
	require.NoError(t, err)

	assert.True(t, onPost.Created)
	assert.True(t, onComment.Created)
	assert.True(t, onPost.Like.IsPostLike())
	assert.False(t, onComment.Like.IsPostLike())
	require.NotNil(t, onComment.Like.CommentID)
	assert.Nil(t, onComment.Like.PostID)
}

func TestSubmitLike_Errors(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	svc := NewLikeService(f.db)
	ctx := context.Background()

	_, err := svc.SubmitLike(ctx, 0, PostTarget(1))
	assert.True(t, errors.Is(err, ErrUnauthenticated))

	_, err = svc.SubmitLike(ctx, alice.ID, Target{})
	assert.True(t, errors.Is(err, ErrInvalidTarget))

	_, err = svc.SubmitLike(ctx, alice.ID, PostTarget(0))
	assert.True(t, errors.Is(err, ErrInvalidTarget))

	_, err = svc.SubmitLike(ctx, alice.ID, PostTarget(404))
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindNotFound, svcErr.Kind)
	assert.Equal(t, "post", svcErr.Field)

	_, err = svc.SubmitLike(ctx, alice.ID, CommentTarget(404))
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "comment", svcErr.Field)
}

func TestLikeRowRejectsTwoTargets(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice")
	post := f.post(alice)
	comment := f.comment(alice, post, nil, "hi")

	both := models.Like{UserID: alice.ID, PostID: &post.ID, CommentID: &comment.ID}
	assert.Error(t, f.db.Create(&both).Error)

	neither := models.Like{UserID: alice.ID}
	assert.Error(t, f.db.Create(&neither).Error)
}
