package api

import (
	"alcyxob/workout-tracker/internal/domain"
	"alcyxob/workout-tracker/internal/service"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves the finished-workout history.
type HistoryHandler struct {
	historyService service.HistoryService
}

func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// --- DTOs ---

// WorkoutResponse is a WorkoutRecord plus display-ready rest times.
type WorkoutResponse struct {
	ID             int64    `json:"id"`
	Sets           int      `json:"sets"`
	RestTimes      []int    `json:"restTimes"`
	RestTimesLabel []string `json:"restTimesLabel"`
	Date           string   `json:"date"`
}

// MapWorkoutToResponse converts a domain.WorkoutRecord to WorkoutResponse DTO.
func MapWorkoutToResponse(rec domain.WorkoutRecord) WorkoutResponse {
	labels := make([]string, len(rec.RestTimes))
	for i, s := range rec.RestTimes {
		labels[i] = domain.FormatRestTime(s)
	}
	rests := rec.RestTimes
	if rests == nil {
		rests = []int{}
	}
	return WorkoutResponse{
		ID:             rec.ID,
		Sets:           rec.Sets,
		RestTimes:      rests,
		RestTimesLabel: labels,
		Date:           rec.Date,
	}
}

// MapWorkoutsToResponse converts a slice of domain.WorkoutRecord to a slice of WorkoutResponse DTO.
func MapWorkoutsToResponse(records []domain.WorkoutRecord) []WorkoutResponse {
	responses := make([]WorkoutResponse, len(records))
	for i, rec := range records {
		responses[i] = MapWorkoutToResponse(rec)
	}
	return responses
}

// --- Handler Methods ---

// ListHistory godoc
// @Summary List finished workouts
// @Description Newest first.
// @Tags History
// @Produce json
// @Success 200 {array} WorkoutResponse
// @Router /history [get]
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	c.JSON(http.StatusOK, MapWorkoutsToResponse(h.historyService.List()))
}

// DeleteWorkout godoc
// @Summary Delete one workout
// @Tags History
// @Param id path int true "Workout id"
// @Success 204
// @Failure 400 {object} gin.H "Invalid workout id"
// @Failure 404 {object} gin.H "Workout not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /history/{id} [delete]
func (h *HistoryHandler) DeleteWorkout(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid workout id.")
		return
	}

	if err := h.historyService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "Failed to delete workout.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearHistory godoc
// @Summary Delete every workout
// @Description Requires confirm=true.
// @Tags History
// @Param confirm query bool true "Confirm clearing the history"
// @Success 204
// @Failure 400 {object} gin.H "Confirmation missing"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /history [delete]
func (h *HistoryHandler) ClearHistory(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))

	if err := h.historyService.ClearAll(c.Request.Context(), confirmed); err != nil {
		if errors.Is(err, service.ErrConfirmationRequired) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "Failed to clear history.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
