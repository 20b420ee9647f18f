package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/meeplehaven/boardshelf/auth"
	"github.com/meeplehaven/boardshelf/catalog"
	mw "github.com/meeplehaven/boardshelf/middleware"
	"github.com/meeplehaven/boardshelf/social"
	"go.uber.org/zap"
)

// CatalogHandler serves the collection pages and the add/edit/delete routes.
type CatalogHandler struct {
	catalog *catalog.Service
	social  *social.Service
	auth    *auth.Service
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(cat *catalog.Service, soc *social.Service, au *auth.Service, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: cat, social: soc, auth: au, logger: logger}
}

// boardgameForm binds the add/edit form. Numeric fields are coerced by the
// binding; a non-numeric submission is a validation error, not stored.
type boardgameForm struct {
	Name       string `form:"name" binding:"required"`
	ImgLink    string `form:"img_link"`
	Year       int    `form:"year"`
	Level      int    `form:"level"`
	MinPlayers int    `form:"minPlayers"`
	MaxPlayers int    `form:"maxPlayers"`
	Time       string `form:"time"`
	Rate       int    `form:"rate"`
}

func (f boardgameForm) fields() catalog.Fields {
	return catalog.Fields{
		Name:       f.Name,
		ImgURL:     f.ImgLink,
		Year:       f.Year,
		Level:      f.Level,
		MinPlayers: f.MinPlayers,
		MaxPlayers: f.MaxPlayers,
		PlayTime:   f.Time,
		Rating:     f.Rate,
	}
}

// Collection handles GET /collection: own catalog plus both friend lists.
func (h *CatalogHandler) Collection(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	acc, err := h.auth.AccountByID(accountID)
	if err != nil {
		h.serverError(c, "account lookup failed", err)
		return
	}
	games, err := h.catalog.ListOwn(accountID)
	if err != nil {
		h.serverError(c, "catalog list failed", err)
		return
	}
	friends, err := h.social.ListAccepted(accountID)
	if err != nil {
		h.serverError(c, "friend list failed", err)
		return
	}
	pending, err := h.social.ListPending(accountID)
	if err != nil {
		h.serverError(c, "pending list failed", err)
		return
	}

	c.HTML(http.StatusOK, "collection.tmpl", gin.H{
		"LoggedIn":   true,
		"Name":       acc.Name,
		"Boardgames": games,
		"Friends":    friends,
		"Pending":    pending,
		"Flash":      popFlash(c),
	})
}

// FriendCollection handles GET /friend/:id: another account's catalog,
// visible only with an accepted friendship.
func (h *CatalogHandler) FriendCollection(c *gin.Context) {
	viewerID := mw.GetAccountID(c)
	ownerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		setFlash(c, "That collection does not exist.")
		c.Redirect(http.StatusFound, "/collection")
		return
	}
	if ownerID == viewerID {
		c.Redirect(http.StatusFound, "/collection")
		return
	}

	ok, err := h.social.IsAccepted(viewerID, ownerID)
	if err != nil {
		h.serverError(c, "friendship check failed", err)
		return
	}
	if !ok {
		setFlash(c, "You can only view collections of accepted friends.")
		c.Redirect(http.StatusFound, "/collection")
		return
	}

	owner, err := h.auth.AccountByID(ownerID)
	if err != nil {
		setFlash(c, "That collection does not exist.")
		c.Redirect(http.StatusFound, "/collection")
		return
	}
	games, err := h.catalog.ListFor(ownerID)
	if err != nil {
		h.serverError(c, "catalog list failed", err)
		return
	}

	c.HTML(http.StatusOK, "friend.tmpl", gin.H{
		"LoggedIn":   true,
		"Name":       owner.Name,
		"Boardgames": games,
		"Flash":      popFlash(c),
	})
}

// ShowAdd handles GET /add.
func (h *CatalogHandler) ShowAdd(c *gin.Context) {
	h.renderForm(c, "add.tmpl", gin.H{})
}

// Add handles POST /add.
func (h *CatalogHandler) Add(c *gin.Context) {
	var form boardgameForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, "Please fill in the name and use whole numbers for year, level, players and rating.")
		c.Redirect(http.StatusFound, "/add")
		return
	}
	if _, err := h.catalog.Add(mw.GetAccountID(c), form.fields()); err != nil {
		h.serverError(c, "catalog add failed", err)
		return
	}
	c.Redirect(http.StatusFound, "/collection")
}

// ShowEdit handles GET /edit?id=.
func (h *CatalogHandler) ShowEdit(c *gin.Context) {
	entryID, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil {
		setFlash(c, "That boardgame does not exist.")
		c.Redirect(http.StatusFound, "/collection")
		return
	}
	game, err := h.catalog.Get(mw.GetAccountID(c), entryID)
	if errors.Is(err, catalog.ErrNotFound) {
		setFlash(c, "That boardgame does not exist.")
		c.Redirect(http.StatusFound, "/collection")
		return
	}
	if err != nil {
		h.serverError(c, "catalog get failed", err)
		return
	}
	h.renderForm(c, "edit.tmpl", gin.H{"Boardgame": game})
}

// Edit handles POST /edit?id=: full overwrite of the mutable fields.
func (h *CatalogHandler) Edit(c *gin.Context) {
	entryID, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil {
		setFlash(c, "That boardgame does not exist.")
		c.Redirect(http.StatusFound, "/collection")
		return
	}
	var form boardgameForm
	if err := c.ShouldBind(&form); err != nil {
		setFlash(c, "Please fill in the name and use whole numbers for year, level, players and rating.")
		c.Redirect(http.StatusFound, "/edit?id="+strconv.FormatInt(entryID, 10))
		return
	}
	err = h.catalog.Edit(mw.GetAccountID(c), entryID, form.fields())
	if errors.Is(err, catalog.ErrNotFound) {
		setFlash(c, "That boardgame does not exist.")
		c.Redirect(http.StatusFound, "/collection")
		return
	}
	if err != nil {
		h.serverError(c, "catalog edit failed", err)
		return
	}
	c.Redirect(http.StatusFound, "/collection")
}

// Delete handles GET /delete?id=.
func (h *CatalogHandler) Delete(c *gin.Context) {
	entryID, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil {
		setFlash(c, "That boardgame does not exist.")
		c.Redirect(http.StatusFound, "/collection")
		return
	}
	err = h.catalog.Delete(mw.GetAccountID(c), entryID)
	if errors.Is(err, catalog.ErrNotFound) {
		setFlash(c, "That boardgame does not exist.")
	} else if err != nil {
		h.serverError(c, "catalog delete failed", err)
		return
	}
	c.Redirect(http.StatusFound, "/collection")
}

func (h *CatalogHandler) renderForm(c *gin.Context, tmpl string, data gin.H) {
	acc, err := h.auth.AccountByID(mw.GetAccountID(c))
	if err != nil {
		h.serverError(c, "account lookup failed", err)
		return
	}
	data["LoggedIn"] = true
	data["Name"] = acc.Name
	data["Flash"] = popFlash(c)
	c.HTML(http.StatusOK, tmpl, data)
}

func (h *CatalogHandler) serverError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err), zap.String("trace_id", mw.GetTraceID(c)))
	c.String(http.StatusInternalServerError, "internal server error")
}
