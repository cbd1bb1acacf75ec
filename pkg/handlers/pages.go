package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"violence-detection/pkg/auth"
)

func (h *Handler) Index(c *gin.Context) {
	if _, ok := auth.CurrentSession(c); ok {
		c.Redirect(http.StatusFound, "/user_dashboard")
		return
	}
	c.HTML(http.StatusOK, "login_screen.html", nil)
}

// Page renders a template for the signed-in user.
func (h *Handler) Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := auth.CurrentSession(c)
		c.HTML(http.StatusOK, name, session)
	}
}

func (h *Handler) NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "login_screen.html", nil)
}
