package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"agora/internal/models"
	"agora/internal/utils"

	"gorm.io/gorm"
)

type Author struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// CommentView is one node of a comment forest.
type CommentView struct {
	ID          uint           `json:"id"`
	PostID      uint           `json:"post"`
	ParentID    *uint          `json:"parent"`
	Author      Author         `json:"author"`
	Content     string         `json:"content"`
	ContentHTML string         `json:"content_html"`
	CreatedAt   time.Time      `json:"created_at"`
	LikeCount   int64          `json:"like_count"`
	Children    []*CommentView `json:"replies"`
}

type PostView struct {
	ID          uint           `json:"id"`
	Author      Author         `json:"author"`
	Content     string         `json:"content"`
	ContentHTML string         `json:"content_html"`
	CreatedAt   time.Time      `json:"created_at"`
	LikeCount   int64          `json:"like_count"`
	Comments    []*CommentView `json:"comments"`
}

// ThreadService rebuilds comment forests. The number of queries per call is
// fixed no matter how deep or wide the threads are or how many posts are
// requested.
type ThreadService struct {
	db *gorm.DB
}

func NewThreadService(db *gorm.DB) *ThreadService {
	return &ThreadService{db: db}
}

type likeCount struct {
	TargetID uint
	Total    int64
}

// Assemble returns the top-level comments of a post with their replies
// attached.
func (s *ThreadService) Assemble(ctx context.Context, postID uint) ([]*CommentView, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("post", postID)
		}
		return nil, storageError("load post", err)
	}

	forests, err := s.forests(ctx, []uint{postID})
	if err != nil {
		return nil, err
	}
	roots := forests[postID]
	if roots == nil {
		roots = []*CommentView{}
	}
	return roots, nil
}

func (s *ThreadService) PostView(ctx context.Context, postID uint) (PostView, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("User").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PostView{}, notFound("post", postID)
		}
		return PostView{}, storageError("load post", err)
	}

	views, err := s.buildPostViews(ctx, []models.Post{post})
	if err != nil {
		return PostView{}, err
	}
	return views[0], nil
}

// ListPosts returns every post, newest first, each with its comment forest.
func (s *ThreadService) ListPosts(ctx context.Context) ([]PostView, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, storageError("list posts", err)
	}
	return s.buildPostViews(ctx, posts)
}

// Subtree returns one comment with all of its replies. A comment whose
// ancestor chain is broken is not reachable from the thread and reports
// not found.
func (s *ThreadService) Subtree(ctx context.Context, commentID uint) (*CommentView, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Select("id", "post_id").First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("comment", commentID)
		}
		return nil, storageError("load comment", err)
	}

	comments, likeCounts, err := s.loadComments(ctx, []uint{comment.PostID})
	if err != nil {
		return nil, err
	}
	_, byID := assemble(comments, likeCounts)
	view, ok := byID[commentID]
	if !ok {
		return nil, notFound("comment", commentID)
	}
	return view, nil
}

func (s *ThreadService) buildPostViews(ctx context.Context, posts []models.Post) ([]PostView, error) {
	views := make([]PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	forests, err := s.forests(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	var counts []likeCount
	err = s.db.WithContext(ctx).
		Model(&models.Like{}).
		Select("post_id AS target_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&counts).Error
	if err != nil {
		return nil, storageError("count post likes", err)
	}
	postLikes := make(map[uint]int64, len(counts))
	for _, c := range counts {
		postLikes[c.TargetID] = c.Total
	}

	for _, p := range posts {
		comments := forests[p.ID]
		if comments == nil {
			comments = []*CommentView{}
		}
		views = append(views, PostView{
			ID:          p.ID,
			Author:      Author{ID: p.User.ID, Username: p.User.Username},
			Content:     p.Content,
			ContentHTML: utils.RenderMarkdown(p.Content),
			CreatedAt:   p.CreatedAt,
			LikeCount:   postLikes[p.ID],
			Comments:    comments,
		})
	}
	return views, nil
}

// forests builds the comment forest of every given post from one comment
// query and one like-count query.
func (s *ThreadService) forests(ctx context.Context, postIDs []uint) (map[uint][]*CommentView, error) {
	comments, likeCounts, err := s.loadComments(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	byPost := make(map[uint][]models.Comment, len(postIDs))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}

	out := make(map[uint][]*CommentView, len(byPost))
	for postID, group := range byPost {
		out[postID] = BuildForest(group, likeCounts)
	}
	return out, nil
}

func (s *ThreadService) loadComments(ctx context.Context, postIDs []uint) ([]models.Comment, map[uint]int64, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("post_id IN ?", postIDs).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, nil, storageError("load comments", err)
	}
	if len(comments) == 0 {
		return comments, map[uint]int64{}, nil
	}

	var counts []likeCount
	err = s.db.WithContext(ctx).
		Table("likes").
		Select("likes.comment_id AS target_id, COUNT(*) AS total").
		Joins("JOIN comments ON comments.id = likes.comment_id").
		Where("comments.post_id IN ?", postIDs).
		Group("likes.comment_id").
		Scan(&counts).Error
	if err != nil {
		return nil, nil, storageError("count comment likes", err)
	}

	likeCounts := make(map[uint]int64, len(counts))
	for _, c := range counts {
		likeCounts[c.TargetID] = c.Total
	}
	return comments, likeCounts, nil
}

// BuildForest arranges a flat comment list into trees. Siblings are ordered
// by (created_at, id). Comments whose parent is not in the list are dropped
// together with their replies.
func BuildForest(comments []models.Comment, likeCounts map[uint]int64) []*CommentView {
	roots, _ := assemble(comments, likeCounts)
	return roots
}

// assemble also returns every reachable node by id.
func assemble(comments []models.Comment, likeCounts map[uint]int64) ([]*CommentView, map[uint]*CommentView) {
	children := make(map[uint][]*CommentView, len(comments))
	var roots []*CommentView

	for i := range comments {
		c := &comments[i]
		view := &CommentView{
			ID:          c.ID,
			PostID:      c.PostID,
			ParentID:    c.ParentID,
			Author:      Author{ID: c.User.ID, Username: c.User.Username},
			Content:     c.Content,
			ContentHTML: utils.RenderMarkdown(c.Content),
			CreatedAt:   c.CreatedAt,
			LikeCount:   likeCounts[c.ID],
			Children:    []*CommentView{},
		}
		if c.ParentID == nil {
			roots = append(roots, view)
		} else {
			children[*c.ParentID] = append(children[*c.ParentID], view)
		}
	}

	sortSiblings(roots)
	for _, group := range children {
		sortSiblings(group)
	}

	byID := make(map[uint]*CommentView, len(comments))
	var attach func(nodes []*CommentView)
	attach = func(nodes []*CommentView) {
		for _, n := range nodes {
			byID[n.ID] = n
			if kids, ok := children[n.ID]; ok {
				n.Children = kids
				attach(kids)
			}
		}
	}
	attach(roots)

	if dropped := len(comments) - len(byID); dropped > 0 {
		threadOrphans.Add(float64(dropped))
	}
	threadComments.Observe(float64(len(byID)))

	if roots == nil {
		roots = []*CommentView{}
	}
	return roots, byID
}

func sortSiblings(nodes []*CommentView) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		}
		return nodes[i].ID < nodes[j].ID
	})
}
