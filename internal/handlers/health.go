package handlers

import (
	"net/http"

	"agora/internal/db"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(conn *gorm.DB) *HealthHandler {
	return &HealthHandler{db: conn}
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := db.Ping(h.db); err != nil {
		zap.L().Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
