package handlers

import (
	"net/http"

	"agora/internal/services"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	karma *services.KarmaService
}

func NewLeaderboardHandler(karma *services.KarmaService) *LeaderboardHandler {
	return &LeaderboardHandler{karma: karma}
}

// Top lists the users with the most karma earned in the last 24 hours.
func (h *LeaderboardHandler) Top(c *gin.Context) {
	entries, err := h.karma.Leaderboard(c.Request.Context(), h.karma.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
