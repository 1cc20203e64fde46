package handlers

import (
	"net/http"

	"agora/internal/middleware"
	"agora/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users    *services.UserService
	karma    *services.KarmaService
	identity *middleware.Identity
}

func NewAuthHandler(users *services.UserService, karma *services.KarmaService, identity *middleware.Identity) *AuthHandler {
	return &AuthHandler{users: users, karma: karma, identity: identity}
}

type registerRequest struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email,max=254"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Password != req.Password2 {
		respondError(c, &services.Error{Kind: services.KindInvalidInput, Field: "password2", Message: "passwords do not match"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := startSession(c, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := startSession(c, user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if id := middleware.CurrentUserID(c); id != 0 {
		h.identity.Forget(id)
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		respondError(c, &services.Error{Kind: services.KindStorage, Message: "save session", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// CurrentUser returns the logged in user with their karma over the trailing
// window.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, &services.Error{Kind: services.KindUnauthenticated, Message: "authentication required"})
		return
	}

	karma, err := h.karma.Karma(c.Request.Context(), user.ID, h.karma.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"created_at": user.CreatedAt,
		"karma":      karma,
	})
}

func startSession(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(middleware.SessionUserID, userID)
	if err := session.Save(); err != nil {
		return &services.Error{Kind: services.KindStorage, Message: "save session", Err: err}
	}
	return nil
}
