package server

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/tariffhub/tariff-ingest/constants"
	"github.com/tariffhub/tariff-ingest/internal/common"
	"github.com/tariffhub/tariff-ingest/internal/service"
)

type extractRequest struct {
	Text     string          `json:"text" binding:"required"`
	Filename string          `json:"filename"`
	Options  service.Options `json:"options"`
}

func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

// handleExtract runs the pipeline over raw document text.
func (s *Server) handleExtract(c *gin.Context) {
	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	res, err := s.svc.ExtractDocument(c.Request.Context(), service.Request{
		DocumentText: req.Text,
		Filename:     req.Filename,
		Options:      req.Options,
	})
	s.respond(c, res, err)
}

// handleExtractFile accepts a multipart upload, stages it to a temp file,
// and runs the ingest+pipeline path.
func (s *Server) handleExtractFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	ext := constants.NormalizeExt(filepath.Ext(fh.Filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type: " + ext})
		return
	}

	tmp, err := os.CreateTemp("", "tariff-upload-*."+ext)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stage upload"})
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		if rerr := os.Remove(tmpPath); rerr != nil {
			s.logger.Warn("server.upload.cleanup_failed", "path", tmpPath, "error", rerr)
		}
	}()
	if err := c.SaveUploadedFile(fh, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stage upload"})
		return
	}

	res, err := s.svc.ExtractDocument(c.Request.Context(), service.Request{
		FilePath: tmpPath,
		Filename: fh.Filename,
	})
	s.respond(c, res, err)
}

func (s *Server) respond(c *gin.Context, res *service.Result, err error) {
	if err != nil {
		status := common.HTTPStatus(err)
		body := gin.H{"error": err.Error()}
		if res != nil {
			// fatal aborts still carry partial telemetry
			body["report"] = res.Report
			body["errors"] = res.Errors
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, res)
}
