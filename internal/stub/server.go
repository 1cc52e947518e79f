// Package stub provides an in-process stand-in for the Building Manager
// backend. It implements the full REST contract with canned data so the
// client, its tests and the terminal UI can run without the real ingestion
// service.
package stub

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vujjini/bm-assist/internal/domain"
)

// Server configures the stub's canned behavior. The zero value answers
// every request successfully.
type Server struct {
	// Healthy controls the /health probe. Defaults to healthy.
	Unhealthy bool
	// Answer is returned for every chat question.
	Answer string
	// Sources are attached to every chat answer.
	Sources []domain.Source
	// ChatDetail, when set, makes /chat fail with a {detail} body.
	ChatDetail string
	// UploadDetail, when set, makes every upload fail with a {detail} body.
	UploadDetail string
	// FilesDir, when set, serves /files/{path} from this directory.
	FilesDir string
}

// Router builds the gin engine for the stub.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/health", s.health)
	api.POST("/chat", s.chat)
	api.POST("/upload", s.uploadSingle)
	api.POST("/upload_folder", s.uploadFolder)
	api.POST("/upload_zip_folder", s.uploadZip)
	api.POST("/upload_manual", s.uploadManual)
	api.GET("/files/*path", s.getFile)

	return r
}

func (s *Server) health(c *gin.Context) {
	if s.Unhealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if s.ChatDetail != "" {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": s.ChatDetail})
		return
	}

	answer := s.Answer
	if answer == "" {
		answer = fmt.Sprintf("Stub answer for: %s", req.Question)
	}
	c.JSON(http.StatusOK, domain.ChatResponse{
		Answer:  answer,
		Sources: s.Sources,
	})
}

func (s *Server) uploadSingle(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	if s.failUpload(c) {
		return
	}
	c.JSON(http.StatusOK, domain.SingleFileResult{
		Message:            "File processed successfully",
		Filename:           file.Filename,
		DocumentsProcessed: 3,
	})
}

func (s *Server) uploadFolder(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "files are required"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "no files provided"})
		return
	}
	if s.failUpload(c) {
		return
	}

	results := make([]domain.FileProcessingResult, 0, len(files))
	summary := map[string]int{}
	for _, f := range files {
		fileType := "excel"
		if strings.EqualFold(filepath.Ext(f.Filename), ".pdf") {
			fileType = "pdf"
		}
		summary[fileType]++
		results = append(results, domain.FileProcessingResult{
			Filename:           f.Filename,
			Success:            true,
			DocumentsProcessed: 2,
			FileType:           fileType,
		})
	}
	c.JSON(http.StatusOK, domain.FolderResult{
		Message:                 fmt.Sprintf("Processed %d files: %d successful, 0 failed", len(files), len(files)),
		TotalFilesProcessed:     len(files),
		SuccessfulFiles:         len(files),
		FailedFiles:             0,
		TotalDocumentsProcessed: 2 * len(files),
		FileResults:             results,
		ProcessingSummary:       summary,
	})
}

func (s *Server) uploadZip(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".zip") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Only ZIP files are supported"})
		return
	}
	if s.failUpload(c) {
		return
	}
	c.JSON(http.StatusOK, domain.FolderResult{
		Message:                 "Processed 2 files: 2 successful, 0 failed",
		TotalFilesProcessed:     2,
		SuccessfulFiles:         2,
		FailedFiles:             0,
		TotalDocumentsProcessed: 4,
		FileResults: []domain.FileProcessingResult{
			{Filename: "a.pdf", Success: true, DocumentsProcessed: 2, FileType: "pdf"},
			{Filename: "b.xlsx", Success: true, DocumentsProcessed: 2, FileType: "excel"},
		},
		ProcessingSummary: map[string]int{"pdf": 1, "excel": 1},
	})
}

func (s *Server) uploadManual(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "file is required"})
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Only PDF files are supported"})
		return
	}
	if s.failUpload(c) {
		return
	}
	c.JSON(http.StatusOK, domain.ManualPdfResult{
		Message:               "PDF processed successfully",
		Filename:              file.Filename,
		FileSizeBytes:         file.Size,
		PageCount:             12,
		TextLength:            48000,
		DocumentsProcessed:    12,
		ExtractionMethod:      "pdfplumber",
		ProcessingTimeSeconds: 1.7,
	})
}

func (s *Server) getFile(c *gin.Context) {
	if s.FilesDir == "" {
		c.JSON(http.StatusNotFound, gin.H{"detail": "File not found"})
		return
	}
	rel := strings.TrimPrefix(c.Param("path"), "/")
	full := filepath.Join(s.FilesDir, filepath.Clean("/"+rel))
	c.File(full)
}

func (s *Server) failUpload(c *gin.Context) bool {
	if s.UploadDetail == "" {
		return false
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": s.UploadDetail})
	return true
}
