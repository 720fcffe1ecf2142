package routes

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eldarhac/GraphMind/internal/queue"
	"github.com/eldarhac/GraphMind/internal/server/middleware"
	"github.com/eldarhac/GraphMind/internal/util"
	"github.com/eldarhac/GraphMind/pkg/logger"
)

var jobLog = logger.For("Jobs")

type jobResponse struct {
	Message string `json:"message"`
	JobID   string `json:"job_id,omitempty"`
}

func RefreshEmbeddingsHandler(c echo.Context) error {
	type refreshRequest struct {
		PersonIDs   []string `json:"person_ids" validate:"omitempty,dive,required"`
		OnlyMissing bool     `json:"only_missing"`
	}

	data := new(refreshRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, jobResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, jobResponse{Message: "Invalid request body"})
	}

	msg := queue.EmbeddingJobMsg{
		JobID:       util.NewID(),
		PersonIDs:   data.PersonIDs,
		OnlyMissing: data.OnlyMissing,
	}
	return enqueue(c, queue.EmbeddingQueue, msg.JobID, msg)
}

func ExportSnapshotHandler(c echo.Context) error {
	type exportRequest struct {
		Prefix string `json:"prefix" validate:"omitempty,max=200"`
	}

	data := new(exportRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, jobResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, jobResponse{Message: "Invalid request body"})
	}

	msg := queue.SnapshotExportMsg{
		JobID:  util.NewID(),
		Prefix: data.Prefix,
	}
	if msg.Prefix == "" {
		msg.Prefix = queue.DefaultSnapshotPrefix
	}
	return enqueue(c, queue.SnapshotQueue, msg.JobID, msg)
}

func enqueue(c echo.Context, queueName string, jobID string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, jobResponse{Message: "Internal server error"})
	}

	app := c.(*middleware.AppContext).App
	if err := app.Queue.Publish(c.Request().Context(), queueName, body); err != nil {
		jobLog.Error("Failed to publish job", "queue", queueName, "err", err)
		return c.JSON(http.StatusInternalServerError, jobResponse{Message: "Internal server error"})
	}

	jobLog.Info("Job queued", "queue", queueName, "job", jobID)
	return c.JSON(http.StatusAccepted, jobResponse{Message: "Job queued", JobID: jobID})
}
