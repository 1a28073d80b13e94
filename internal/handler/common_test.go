package handler_test

import (
	"film-ticket-desk/internal/dispatch/mocks"
	"film-ticket-desk/internal/handler"
	"film-ticket-desk/internal/model"

	"github.com/gin-gonic/gin"
)

func setupTestRouter(commander *mocks.CommanderMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.NewFilmHandler(commander).RegisterRoutes(router)
	handler.NewPageHandler(commander).RegisterRoutes(router)
	return router
}

func testScreen() model.Screen {
	return model.Screen{
		Detail: &model.DetailPanel{
			FilmID:         1,
			Title:          "The Giant Gila Monster",
			Poster:         "https://example.com/1.jpg",
			Description:    "A giant lizard.",
			RuntimeText:    "Runtime: 108 minutes",
			ShowtimeText:   "Showtime: 04:00PM",
			TicketsText:    "Available Tickets: 0",
			Remaining:      0,
			ButtonLabel:    model.ButtonLabelSoldOut,
			ButtonDisabled: true,
		},
		Sidebar: []model.SidebarEntry{
			{FilmID: 1, Title: "The Giant Gila Monster", SoldOut: true, Deletable: true},
			{FilmID: 2, Title: "Manos: The Hands Of Fate"},
		},
		Version: 7,
	}
}
