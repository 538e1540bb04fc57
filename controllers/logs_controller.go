package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LogsController exposes the daily import log files.
type LogsController struct {
	logs RunLogAPI
}

func NewLogsController(logs RunLogAPI) *LogsController {
	return &LogsController{logs: logs}
}

// List returns the dates that still have a retained log file.
func (lc *LogsController) List(c *gin.Context) {
	dates, err := lc.logs.List()
	if err != nil {
		zap.L().Error("failed to list import logs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dates": dates})
}

// Read streams one day's log file as plain text.
func (lc *LogsController) Read(c *gin.Context) {
	date := c.Param("date")
	content, err := lc.logs.Read(date)
	if err != nil {
		if strings.Contains(err.Error(), "invalid log date") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

// Clear deletes one day's log file.
func (lc *LogsController) Clear(c *gin.Context) {
	date := c.Param("date")
	if err := lc.logs.Clear(date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": date})
}
