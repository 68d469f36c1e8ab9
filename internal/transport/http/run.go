package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindmash/backend/internal/service/judge"
	"github.com/mindmash/backend/internal/service/problems"
)

// RunHandler proxies code execution to Judge0.
type RunHandler struct {
	Judge    *judge.Client
	Problems *problems.Pool
}

func NewRunHandler(judgeClient *judge.Client, pool *problems.Pool) *RunHandler {
	return &RunHandler{Judge: judgeClient, Problems: pool}
}

// Run executes raw source code and passes stdout (or stderr) straight back.
func (h *RunHandler) Run(c *gin.Context) {
	var req struct {
		Code       string `json:"code"`
		LanguageID int    `json:"language_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	out, err := h.Judge.Run(c.Request.Context(), req.Code, req.LanguageID)
	if err != nil {
		log.Printf("[JUDGE0] Run error: %v", err)
		c.JSON(http.StatusOK, gin.H{"output": err.Error()})
		return
	}

	output := out.Stdout
	if output == "" {
		output = out.Stderr
	}
	if output == "" {
		output = "No Output"
	}
	c.JSON(http.StatusOK, gin.H{"output": output})
}

// RunProblem wraps the submission in the problem's solve() harness and
// grades each test case.
func (h *RunHandler) RunProblem(c *gin.Context) {
	var req struct {
		Code       string `json:"code"`
		LanguageID int    `json:"language_id"`
		ProblemID  string `json:"problemId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	problemID := req.ProblemID
	if problemID == "" {
		problemID = "factorial-5"
	}

	problem, ok := h.Problems.Get(problemID)
	if !ok || problem.Tests == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown problem"})
		return
	}

	source, supported := judge.BuildHarness(req.LanguageID, req.Code, problem.Tests.Inputs)
	if !supported {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tests currently supported for JavaScript and Python only"})
		return
	}

	out, err := h.Judge.Run(c.Request.Context(), source, req.LanguageID)
	if err != nil {
		log.Printf("[JUDGE0] Test run error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	passed, results := judge.Grade(out.Stdout, problem.Tests.Inputs, problem.Tests.Expected)
	c.JSON(http.StatusOK, gin.H{
		"passed":  passed,
		"total":   len(results),
		"results": results,
		"raw":     gin.H{"stdout": out.Stdout, "stderr": out.Stderr},
	})
}
