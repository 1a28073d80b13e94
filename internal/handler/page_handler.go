package handler

import (
	"html/template"
	"net/http"

	"film-ticket-desk/internal/dispatch"
	"film-ticket-desk/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const pageTemplateName = "index.html"

var pageTemplate = template.Must(template.New(pageTemplateName).Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Flatdango</title>
  <style>
    .sold-out { text-decoration: line-through; color: #999; }
    .films { list-style: none; padding: 0; }
    .film form { display: inline; }
  </style>
</head>
<body>
  {{- if .Alert }}
  <div id="alert" role="alert">{{ .Alert }}</div>
  {{- end }}
  <ul id="films" class="films">
    {{- range .Sidebar }}
    <li class="film item{{ if .SoldOut }} sold-out{{ end }}" data-id="{{ .FilmID }}">
      <form method="post" action="/ui/films/{{ .FilmID }}/select"><button type="submit">{{ .Title }}</button></form>
      {{- if .Deletable }}
      <form method="post" action="/ui/films/{{ .FilmID }}/delete"><button type="submit">Delete</button></form>
      {{- end }}
    </li>
    {{- end }}
  </ul>
  {{- with .Detail }}
  <div id="showing">
    <h2 id="movie-title">{{ .Title }}</h2>
    <img id="movie-poster" src="{{ .Poster }}" alt="{{ .Title }}">
    <p id="movie-description">{{ .Description }}</p>
    <p id="movie-runtime">{{ .RuntimeText }}</p>
    <p id="movie-showtime">{{ .ShowtimeText }}</p>
    <p id="movie-tickets">{{ .TicketsText }}</p>
    <form method="post" action="/ui/films/{{ .FilmID }}/buy">
      <button id="buy-ticket" type="submit"{{ if .ButtonDisabled }} disabled{{ end }}>{{ .ButtonLabel }}</button>
    </form>
  </div>
  {{- end }}
</body>
</html>
`))

// PageHandler HTML 版本：表單送出後導回首頁
type PageHandler struct {
	commander dispatch.Commander
}

func NewPageHandler(commander dispatch.Commander) *PageHandler {
	return &PageHandler{commander: commander}
}

func (h *PageHandler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(pageTemplate)
	r.GET("/", h.Index)
	router := r.Group("/ui")
	{
		router.POST("films/:id/select", h.Select)
		router.POST("films/:id/buy", h.Buy)
		router.POST("films/:id/delete", h.Delete)
	}
}

func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, pageTemplateName, h.commander.Snapshot())
}

func (h *PageHandler) Select(c *gin.Context) {
	h.submit(c, func(id int) dispatch.Command { return dispatch.SelectFilm{FilmID: id} })
}

func (h *PageHandler) Buy(c *gin.Context) {
	h.submit(c, func(id int) dispatch.Command { return dispatch.BuyTicket{FilmID: id} })
}

func (h *PageHandler) Delete(c *gin.Context) {
	h.submit(c, func(id int) dispatch.Command { return dispatch.DeleteSoldOut{FilmID: id} })
}

// submit 錯誤只記錄；售完的提示已經在畫面的 alert 裡
func (h *PageHandler) submit(c *gin.Context, build func(id int) dispatch.Command) {
	var uri FilmURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.String(http.StatusBadRequest, "Invalid film id")
		return
	}
	cmd := build(uri.ID)
	if _, err := h.commander.Do(c.Request.Context(), cmd); err != nil {
		logger.WithComponent("handler").Warn("page command failed",
			zap.Int("film_id", uri.ID), zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/")
}
