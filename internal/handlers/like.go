package handlers

import (
	"net/http"

	"agora/internal/middleware"
	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	likes *services.LikeService
}

func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

type likeRequest struct {
	Post    *uint `json:"post"`
	Comment *uint `json:"comment"`
}

// Like records a like on a post or a comment. A repeated like answers 200
// with the existing row instead of an error.
func (h *LikeHandler) Like(c *gin.Context) {
	var req likeRequest
	if !bindJSON(c, &req) {
		return
	}

	target, err := services.NewTarget(req.Post, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.likes.SubmitLike(c.Request.Context(), middleware.CurrentUserID(c), target)
	if err != nil {
		respondError(c, err)
		return
	}

	if !res.Created {
		c.JSON(http.StatusOK, gin.H{"message": "Already liked", "like": res.Like})
		return
	}
	c.JSON(http.StatusCreated, res.Like)
}
