package handlers

import (
	"net/http"

	"agora/internal/middleware"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	content *services.ContentService
	threads *services.ThreadService
}

func NewPostHandler(content *services.ContentService, threads *services.ThreadService) *PostHandler {
	return &PostHandler{content: content, threads: threads}
}

type createPostRequest struct {
	Content string `json:"content" binding:"required"`
}

// List returns all posts, newest first, with their comment threads.
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.threads.ListPosts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := pathID(c, "id", "post")
	if !ok {
		return
	}

	view, err := h.threads.PostView(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	post, err := h.content.CreatePost(ctx, middleware.CurrentUserID(c), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.threads.PostView(ctx, post.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}
