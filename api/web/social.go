package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/meeplehaven/boardshelf/audit"
	"github.com/meeplehaven/boardshelf/auth"
	mw "github.com/meeplehaven/boardshelf/middleware"
	"github.com/meeplehaven/boardshelf/social"
	"go.uber.org/zap"
)

// SocialHandler serves the friend request/accept/decline/remove routes.
type SocialHandler struct {
	social *social.Service
	auth   *auth.Service
	audit  *audit.Service
	logger *zap.Logger
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(soc *social.Service, au *auth.Service, aud *audit.Service, logger *zap.Logger) *SocialHandler {
	return &SocialHandler{social: soc, auth: au, audit: aud, logger: logger}
}

// ShowAddFriend handles GET /addfriend.
func (h *SocialHandler) ShowAddFriend(c *gin.Context) {
	acc, err := h.auth.AccountByID(mw.GetAccountID(c))
	if err != nil {
		h.serverError(c, "account lookup failed", err)
		return
	}
	c.HTML(http.StatusOK, "addfriend.tmpl", gin.H{
		"LoggedIn": true,
		"Name":     acc.Name,
		"Flash":    popFlash(c),
	})
}

// AddFriend handles POST /addfriend.
func (h *SocialHandler) AddFriend(c *gin.Context) {
	requesterID := mw.GetAccountID(c)
	email := c.PostForm("email")

	target, err := h.social.Request(requesterID, email)
	switch {
	case errors.Is(err, social.ErrUnknownEmail):
		setFlash(c, "No account with that email exists.")
		c.Redirect(http.StatusFound, "/addfriend")
		return
	case errors.Is(err, social.ErrSelfFriend):
		setFlash(c, "You cannot add yourself as a friend.")
		c.Redirect(http.StatusFound, "/addfriend")
		return
	case errors.Is(err, social.ErrAlreadyRequested):
		setFlash(c, "A friendship with that account already exists or is pending.")
		c.Redirect(http.StatusFound, "/addfriend")
		return
	case err != nil:
		h.serverError(c, "friend request failed", err)
		return
	}

	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &requesterID,
		Action:    audit.ActionFriendRequest,
		Detail:    gin.H{"target_id": target.ID},
		IP:        c.ClientIP(),
	})

	setFlash(c, "Friend request sent.")
	c.Redirect(http.StatusFound, "/collection")
}

// AcceptFriend handles GET /acceptfriend?id=, where id is the requester's
// account id.
func (h *SocialHandler) AcceptFriend(c *gin.Context) {
	h.edgeAction(c, audit.ActionFriendAccept, "Friend request accepted.", h.social.Accept)
}

// DeclineFriend handles GET /declinefriend?id=.
func (h *SocialHandler) DeclineFriend(c *gin.Context) {
	h.edgeAction(c, audit.ActionFriendDecline, "Friend request declined.", h.social.Decline)
}

// DeleteFriend handles GET /deletefriend?id=: dissolves an accepted
// friendship in both directions.
func (h *SocialHandler) DeleteFriend(c *gin.Context) {
	h.edgeAction(c, audit.ActionFriendRemove, "Friend removed.", h.social.Remove)
}

func (h *SocialHandler) edgeAction(c *gin.Context, action, okFlash string, fn func(int64, int64) error) {
	accountID := mw.GetAccountID(c)
	otherID, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil {
		setFlash(c, "That friend request does not exist.")
		c.Redirect(http.StatusFound, "/collection")
		return
	}

	err = fn(accountID, otherID)
	if errors.Is(err, social.ErrNotFound) {
		setFlash(c, "That friend request does not exist.")
		c.Redirect(http.StatusFound, "/collection")
		return
	}
	if err != nil {
		h.serverError(c, "friendship update failed", err)
		return
	}

	h.audit.Log(audit.Entry{
		TraceID:   mw.GetTraceID(c),
		AccountID: &accountID,
		Action:    action,
		Detail:    gin.H{"other_id": otherID},
		IP:        c.ClientIP(),
	})

	setFlash(c, okFlash)
	c.Redirect(http.StatusFound, "/collection")
}

func (h *SocialHandler) serverError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err), zap.String("trace_id", mw.GetTraceID(c)))
	c.String(http.StatusInternalServerError, "internal server error")
}
