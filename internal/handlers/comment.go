package handlers

import (
	"net/http"

	"agora/internal/middleware"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	content *services.ContentService
	threads *services.ThreadService
}

func NewCommentHandler(content *services.ContentService, threads *services.ThreadService) *CommentHandler {
	return &CommentHandler{content: content, threads: threads}
}

type createCommentRequest struct {
	Post    uint   `json:"post" binding:"required"`
	Parent  *uint  `json:"parent"`
	Content string `json:"content" binding:"required"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	comment, err := h.content.CreateComment(ctx, middleware.CurrentUserID(c), services.CreateCommentInput{
		PostID:   req.Post,
		ParentID: req.Parent,
		Content:  req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.threads.Subtree(ctx, comment.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Detail returns one comment with all of its replies.
func (h *CommentHandler) Detail(c *gin.Context) {
	id, ok := pathID(c, "id", "comment")
	if !ok {
		return
	}

	view, err := h.threads.Subtree(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
