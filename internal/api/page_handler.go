package api

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"restTime": domain.FormatRestTime,
	}
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// PageHandler renders the tracker page.
type PageHandler struct {
	tracker        service.TrackerService
	historyService service.HistoryService
}

func NewPageHandler(tracker service.TrackerService, historyService service.HistoryService) *PageHandler {
	return &PageHandler{tracker: tracker, historyService: historyService}
}

type pageData struct {
	Session service.Snapshot
	History []WorkoutResponse
}

func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{
		Session: h.tracker.Snapshot(),
		History: MapWorkoutsToResponse(h.historyService.List()),
	})
}
