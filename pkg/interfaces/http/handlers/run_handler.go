package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jayjaydesai/WorkBot/pkg/application/dto"
	"github.com/jayjaydesai/WorkBot/pkg/application/services/archive"
	"github.com/jayjaydesai/WorkBot/pkg/application/services/workflow"
	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/tabular"
)

const defaultListLimit = 50

// Runner executes one allocation run
type Runner interface {
	Run(ctx context.Context, input dto.RunInput) (*dto.RunResult, error)
}

// Archive stores and reads back runs
type Archive interface {
	Save(ctx context.Context, result *dto.RunResult) (dto.RunSummary, error)
	Get(ctx context.Context, runID string) (*archive.StoredRun, error)
	List(ctx context.Context, limit int) ([]dto.RunSummary, error)
}

// RunHandler exposes the engine over HTTP.
type RunHandler struct {
	runner  Runner
	archive Archive
	logger  *zap.Logger
}

// NewRunHandler constructs the HTTP handler adapter.
func NewRunHandler(runner Runner, archive Archive, logger *zap.Logger) *RunHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RunHandler{runner: runner, archive: archive, logger: logger}
}

type runResponse struct {
	Summary     dto.RunSummary     `json:"summary"`
	Warnings    []string           `json:"warnings,omitempty"`
	GroupErrors []string           `json:"group_errors,omitempty"`
	Lines       []tabular.JSONLine `json:"lines"`
}

// Create runs an uploaded sheet. Form fields: file (csv or xlsx), workflow, sheet.
// With ?format=csv the result table is returned as CSV instead of JSON.
func (h *RunHandler) Create(c *gin.Context) {
	name := c.DefaultPostForm("workflow", "replen")
	wf, err := workflow.Lookup(name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	format, err := tabular.DetectFormat(header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read upload"})
		return
	}
	defer file.Close()

	loader := tabular.NewLoader()
	loader.Sheet = c.PostForm("sheet")
	raw, err := loader.Load(file, header.Filename, format)
	if err != nil {
		h.reject(c, err)
		return
	}

	result, err := h.runner.Run(c.Request.Context(), dto.RunInput{Workflow: wf.Name, Raw: raw})
	if err != nil {
		h.reject(c, err)
		return
	}

	summary := result.Summary()
	if h.archive != nil {
		if summary, err = h.archive.Save(c.Request.Context(), result); err != nil {
			h.logger.Error("failed storing run", zap.String("run_id", result.RunID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "run completed but could not be stored", "run_id": result.RunID})
			return
		}
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Disposition", `attachment; filename="`+result.RunID+`.csv"`)
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusCreated)
		if err := tabular.WriteCSV(c.Writer, result.Table); err != nil {
			h.logger.Error("failed writing csv response", zap.Error(err))
		}
		return
	}

	resp := runResponse{Summary: summary, Lines: tabular.JSONLines(result.Table)}
	for _, w := range result.Warnings() {
		resp.Warnings = append(resp.Warnings, w.String())
	}
	for _, e := range result.GroupErrors {
		resp.GroupErrors = append(resp.GroupErrors, e.Error())
	}
	c.JSON(http.StatusCreated, resp)
}

// reject maps input errors to 422 and everything else to 500
func (h *RunHandler) reject(c *gin.Context, err error) {
	var schemaErr *entities.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "column": schemaErr.Column})
	case errors.Is(err, entities.ErrEmptyInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Warn("run rejected", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	}
}

// Get returns a stored run with its lines.
func (h *RunHandler) Get(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run storage disabled"})
		return
	}
	run, err := h.archive.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if archive.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		h.logger.Error("failed loading run", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load run"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// List returns the newest stored run summaries. Query: limit (default 50).
func (h *RunHandler) List(c *gin.Context) {
	if h.archive == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []dto.RunSummary{}})
		return
	}
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	runs, err := h.archive.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed listing runs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
