package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"applyai/services"
	"applyai/utils"
)

// RunController exposes the run pipeline over HTTP: start a run, inspect its
// status and events, list profiles.
type RunController struct {
	runs    *services.RunsService
	resumes *services.ResumeService
}

func NewRunController(runs *services.RunsService, resumes *services.ResumeService) *RunController {
	return &RunController{runs: runs, resumes: resumes}
}

// StartRun launches a new application run in the background and returns its
// id immediately.
func (c *RunController) StartRun(ctx *gin.Context) {
	var req services.RunRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(ctx, "Invalid request data", err)
		return
	}
	if req.JobURL == "" && (req.Company == "" || req.JobTitle == "") {
		utils.BadRequestResponse(ctx, "Provide job_url, or company and job_title",
			fmt.Errorf("missing job target"))
		return
	}

	run := c.runs.StartRun(req)
	utils.SuccessResponse(ctx, http.StatusAccepted, "Run started", run)
}

// GetRun returns one run with its event history.
func (c *RunController) GetRun(ctx *gin.Context) {
	run := c.runs.GetRun(ctx.Param("id"))
	if run == nil {
		utils.NotFoundResponse(ctx, "Run not found")
		return
	}
	utils.SuccessResponse(ctx, http.StatusOK, "Run found", run)
}

// ListRuns returns all runs, newest first.
func (c *RunController) ListRuns(ctx *gin.Context) {
	utils.SuccessResponse(ctx, http.StatusOK, "Runs listed", c.runs.ListRuns())
}

// ListProfiles returns the available user profiles.
func (c *RunController) ListProfiles(ctx *gin.Context) {
	utils.SuccessResponse(ctx, http.StatusOK, "Profiles listed", c.resumes.ListProfiles())
}
