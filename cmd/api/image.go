package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"imagepipeline-api/pkg/pipeline"
)

// registerImageRoutes initializes the image status routes.
func registerImageRoutes(r *gin.Engine) {
	r.GET("/v1/images/:filename/status", getImageStatus)
	r.HEAD("/v1/images/:filename/status", getImageStatus)
}

// getImageStatus returns the stored processing record for an uploaded image,
// looked up by the client-facing filename (the ingestion prefix is implied).
// The record is returned as stored; numeric attributes that were persisted as
// non-finite sentinels come back as their sentinel strings.
func getImageStatus(c *gin.Context) {
	filename := c.Param("filename")
	item, found, err := api.Pipeline.Status(c, filename)
	if err != nil {
		if errors.Is(err, pipeline.ErrMissingIdentity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request: filename is required"})
			return
		}
		// Log the detail; the response body stays generic.
		logrus.WithError(err).WithField("filename", filename).Error("status lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found: image " + filename})
		return
	}
	c.JSON(http.StatusOK, item)
}
