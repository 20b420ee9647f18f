package web

import (
	"net/url"

	"github.com/gin-gonic/gin"
)

const flashCookie = "bg_flash"

// setFlash stores a one-shot message shown on the next rendered page.
func setFlash(c *gin.Context, msg string) {
	c.SetCookie(flashCookie, url.QueryEscape(msg), 60, "/", "", false, true)
}

// popFlash returns the pending flash message, if any, and clears it.
func popFlash(c *gin.Context) string {
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, true)
	msg, err := url.QueryUnescape(v)
	if err != nil {
		return ""
	}
	return msg
}
