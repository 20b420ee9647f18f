package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meeplehaven/boardshelf/api/web"
	"github.com/meeplehaven/boardshelf/audit"
	"github.com/meeplehaven/boardshelf/auth"
	"github.com/meeplehaven/boardshelf/cache"
	"github.com/meeplehaven/boardshelf/catalog"
	"github.com/meeplehaven/boardshelf/config"
	mw "github.com/meeplehaven/boardshelf/middleware"
	"github.com/meeplehaven/boardshelf/model"
	"github.com/meeplehaven/boardshelf/social"
	"github.com/meeplehaven/boardshelf/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	router *gin.Engine
	db     *gorm.DB
	store  cache.Cache
}

// newEnv wires the full route table the way main does, on a fresh
// SQLite database and local session store.
func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.SetupTestDB(t)
	store := testutil.SetupTestCache(t)
	sec := config.SecurityConfig{
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		BcryptCost:    4,
	}
	app := config.AppConfig{DefaultAvatarURL: "/static/img/avatar-placeholder.png"}
	logger, _ := zap.NewDevelopment()

	auditSvc := audit.New(db, logger)
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })

	authSvc := auth.New(db, store, sec, app, logger)
	catalogSvc := catalog.New(db)
	socialSvc := social.New(db)

	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	r.SetHTMLTemplate(web.Templates())

	authH := web.NewAuthHandler(authSvc, store, sec, auditSvc, logger)
	catalogH := web.NewCatalogHandler(catalogSvc, socialSvc, authSvc, logger)
	socialH := web.NewSocialHandler(socialSvc, authSvc, auditSvc, logger)

	r.GET("/", authH.Home)
	r.GET("/register", authH.ShowRegister)
	r.POST("/register", authH.Register)
	r.GET("/login", authH.ShowLogin)
	r.POST("/login", authH.Login)
	r.GET("/logout", authH.Logout)

	authed := r.Group("/", mw.RequireAuth(sec, store))
	{
		authed.GET("/collection", catalogH.Collection)
		authed.GET("/friend/:id", catalogH.FriendCollection)
		authed.GET("/add", catalogH.ShowAdd)
		authed.POST("/add", catalogH.Add)
		authed.GET("/edit", catalogH.ShowEdit)
		authed.POST("/edit", catalogH.Edit)
		authed.GET("/delete", catalogH.Delete)
		authed.GET("/addfriend", socialH.ShowAddFriend)
		authed.POST("/addfriend", socialH.AddFriend)
		authed.GET("/acceptfriend", socialH.AcceptFriend)
		authed.GET("/declinefriend", socialH.DeclineFriend)
		authed.GET("/deletefriend", socialH.DeleteFriend)
	}

	return &env{router: r, db: db, store: store}
}

func (e *env) do(t *testing.T, method, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// register signs up a fresh account and returns its session cookie.
func (e *env) register(t *testing.T, email, name, password string) *http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/register", url.Values{
		"email":    {email},
		"name":     {name},
		"password": {password},
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/collection", w.Header().Get("Location"))
	return sessionCookie(t, w)
}

func (e *env) accountID(t *testing.T, email string) int64 {
	t.Helper()
	var acc model.Account
	require.NoError(t, e.db.Where("email = ?", email).First(&acc).Error)
	return acc.ID
}

func (e *env) gameID(t *testing.T, name string) int64 {
	t.Helper()
	var game model.Boardgame
	require.NoError(t, e.db.Where("name = ?", name).First(&game).Error)
	return game.ID
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == mw.SessionCookie && ck.Value != "" {
			return ck
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

// flashMessage returns the one-shot message a response queued for the
// next page, or "".
func flashMessage(w *httptest.ResponseRecorder) string {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "bg_flash" && ck.Value != "" && ck.MaxAge >= 0 {
			msg, _ := url.QueryUnescape(ck.Value)
			return msg
		}
	}
	return ""
}
