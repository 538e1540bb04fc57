package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ImportController handles synchronous and queued import requests.
type ImportController struct {
	importer ImporterAPI
	queue    QueueAPI
	validate *validator.Validate
}

func NewImportController(importer ImporterAPI, queue QueueAPI) *ImportController {
	return &ImportController{
		importer: importer,
		queue:    queue,
		validate: validator.New(),
	}
}

// ImportRequest is the body of POST /import.
type ImportRequest struct {
	ProductIDs []int `json:"product_ids" validate:"required,min=1,dive,gt=0"`
	// Async queues the job and returns immediately with a job id.
	Async bool `json:"async"`
}

// Import runs an import for the requested remote product ids.
func (ic *ImportController) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := ic.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_ids must be a non-empty list of positive ids"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	async := req.Async || c.Query("async") == "true"
	if async {
		if ic.queue == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "async imports are not configured"})
			return
		}
		jobID, err := ic.queue.Enqueue(c.Request.Context(), req.ProductIDs)
		if err != nil {
			zap.L().Error("failed to enqueue import job", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue import job"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"job_id": jobID, "status": "pending"})
		return
	}

	summary := ic.importer.ImportMany(c.Request.Context(), req.ProductIDs)
	status := http.StatusOK
	if summary.Success == 0 && summary.Errors > 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, summary)
}

// JobStatus returns the state of a queued import job.
func (ic *ImportController) JobStatus(c *gin.Context) {
	if ic.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "async imports are not configured"})
		return
	}
	jobID := c.Param("id")
	job, err := ic.queue.Job(c.Request.Context(), jobID)
	if err != nil {
		zap.L().Error("failed to load import job", zap.String("job", jobID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}
