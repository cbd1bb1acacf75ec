package handlers

import (
	"github.com/gin-gonic/gin"

	"violence-detection/pkg/auth"
	"violence-detection/pkg/web"
)

// Router wires every page and API route. staticDir is served under /static
// to signed-in users.
func (h *Handler) Router(staticDir string) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(h.logger), Recovery(h.logger))
	r.SetHTMLTemplate(web.Templates())
	if h.maxUploadBytes > 0 {
		r.MaxMultipartMemory = min(h.maxUploadBytes, 32<<20)
	}
	if staticDir != "" {
		r.Group("/static", auth.RequirePageSession()).Static("/", staticDir)
	}

	r.GET("/", auth.OptionalSession(), h.Index)

	pages := r.Group("/", auth.RequirePageSession())
	pages.GET("/user_dashboard", h.Page("user_dashboard.html"))
	pages.GET("/video_upload", h.Page("video_upload_page.html"))
	pages.GET("/live_cctv", h.Page("live_cctv_page.html"))

	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)

	private := api.Group("/", auth.RequireAPISession())
	private.POST("/upload-video", h.UploadVideo)
	private.POST("/detect", h.Detect)
	private.POST("/generate-report", h.GenerateReport)
	private.GET("/videos", h.FetchVideos)

	r.NoRoute(h.NotFound)
	return r
}
