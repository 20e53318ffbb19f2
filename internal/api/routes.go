package api

import (
	"alcyxob/workout-tracker/internal/service"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteOptions carries the optional pieces of the router.
type RouteOptions struct {
	Templates      *template.Template
	MetricsPath    string
	MetricsHandler http.Handler // nil disables the metrics endpoint
}

func SetupRoutes(
	router *gin.Engine,
	trackerService service.TrackerService,
	historyService service.HistoryService,
	opts RouteOptions,
) {
	sessionHandler := NewSessionHandler(trackerService)
	historyHandler := NewHistoryHandler(historyService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if opts.Templates != nil {
		router.SetHTMLTemplate(opts.Templates)
		router.GET("/", NewPageHandler(trackerService, historyService).Index)
	}

	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(opts.MetricsHandler))
	}

	apiV1 := router.Group("/api/v1")
	{
		sessionGroup := apiV1.Group("/session")
		{
			sessionGroup.GET("", sessionHandler.GetSession)
			sessionGroup.POST("/sets", sessionHandler.AddSet)
			sessionGroup.POST("/rest/stop", sessionHandler.StopRest)
			sessionGroup.POST("/finish", sessionHandler.FinishWorkout)
			sessionGroup.GET("/events", sessionHandler.Events)
		}

		drawerGroup := apiV1.Group("/drawer")
		{
			drawerGroup.POST("/toggle", sessionHandler.ToggleDrawer)
			drawerGroup.POST("/close", sessionHandler.CloseDrawer)
		}

		historyGroup := apiV1.Group("/history")
		{
			historyGroup.GET("", historyHandler.ListHistory)
			historyGroup.DELETE("", historyHandler.ClearHistory)
			historyGroup.DELETE("/:id", historyHandler.DeleteWorkout)
		}
	}
}
