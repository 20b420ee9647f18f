package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meeplehaven/boardshelf/audit"
	"github.com/meeplehaven/boardshelf/auth"
	"github.com/meeplehaven/boardshelf/cache"
	"github.com/meeplehaven/boardshelf/config"
	mw "github.com/meeplehaven/boardshelf/middleware"
	"go.uber.org/zap"
)

// AuthHandler serves the public pages and the register/login/logout routes.
type AuthHandler struct {
	svc    *auth.Service
	store  cache.Cache
	sec    config.SecurityConfig
	audit  *audit.Service
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service, store cache.Cache, sec config.SecurityConfig, aud *audit.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, store: store, sec: sec, audit: aud, logger: logger}
}

// Home handles GET /.
func (h *AuthHandler) Home(c *gin.Context) {
	_, loggedIn := mw.CurrentAccountID(c, h.sec, h.store)
	c.HTML(http.StatusOK, "index.tmpl", gin.H{
		"LoggedIn": loggedIn,
		"Flash":    popFlash(c),
	})
}

// ShowRegister handles GET /register.
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	_, loggedIn := mw.CurrentAccountID(c, h.sec, h.store)
	c.HTML(http.StatusOK, "register.tmpl", gin.H{
		"LoggedIn": loggedIn,
		"Flash":    popFlash(c),
	})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *gin.Context) {
	email := c.PostForm("email")
	name := c.PostForm("name")
	password := c.PostForm("password")

	acc, err := h.svc.Register(email, name, password)
	if err == auth.ErrDuplicateEmail {
		setFlash(c, "You've already signed up with that email, log in instead!")
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if err != nil {
		h.serverError(c, "register failed", err)
		return
	}

	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &acc.ID,
		Action:    audit.ActionRegister,
		Detail:    gin.H{"email": acc.Email},
		IP:        c.ClientIP(),
	})

	h.startSession(c, acc.ID)
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	_, loggedIn := mw.CurrentAccountID(c, h.sec, h.store)
	c.HTML(http.StatusOK, "login.tmpl", gin.H{
		"LoggedIn": loggedIn,
		"Flash":    popFlash(c),
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	acc, err := h.svc.Login(email, password)
	switch err {
	case nil:
	case auth.ErrUnknownEmail:
		setFlash(c, "That email does not exist, please try again.")
		c.Redirect(http.StatusFound, "/login")
		return
	case auth.ErrBadPassword:
		setFlash(c, "Password incorrect, please try again.")
		c.Redirect(http.StatusFound, "/login")
		return
	default:
		h.serverError(c, "login failed", err)
		return
	}

	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &acc.ID,
		Action:    audit.ActionLogin,
		IP:        c.ClientIP(),
	})

	h.startSession(c, acc.ID)
}

// Logout handles GET /logout. It succeeds even without a session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if tok, err := c.Cookie(mw.SessionCookie); err == nil && tok != "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		h.svc.DestroySession(ctx, tok)

		h.audit.Log(audit.Entry{
			TraceID: mw.GetTraceID(c),
			Action:  audit.ActionLogout,
			IP:      c.ClientIP(),
		})
	}
	c.SetCookie(mw.SessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) startSession(c *gin.Context, accountID int64) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	token, err := h.svc.EstablishSession(ctx, accountID)
	if err != nil {
		h.serverError(c, "session failed", err)
		return
	}
	c.SetCookie(mw.SessionCookie, token, int(h.sec.SessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/collection")
}

func (h *AuthHandler) serverError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err), zap.String("trace_id", mw.GetTraceID(c)))
	c.String(http.StatusInternalServerError, "internal server error")
}
