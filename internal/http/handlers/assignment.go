package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	learningrepo "github.com/abhayporwals/taskyn/internal/data/repos/learning"
	types "github.com/abhayporwals/taskyn/internal/domain"
	"github.com/abhayporwals/taskyn/internal/http/response"
	"github.com/abhayporwals/taskyn/internal/platform/apierr"
	"github.com/abhayporwals/taskyn/internal/services"
)

type AssignmentHandler struct {
	assignmentService services.AssignmentService
	generation        services.GenerationService
}

func NewAssignmentHandler(assignmentService services.AssignmentService, generation services.GenerationService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService, generation: generation}
}

// assignmentFilter reads type, difficulty, isCompleted and (optionally) trackId query params.
// isCompleted values other than "true"/"false" are ignored.
func assignmentFilter(c *gin.Context, withTrack bool) (learningrepo.AssignmentFilter, error) {
	f := learningrepo.AssignmentFilter{
		Type:       strings.TrimSpace(c.Query("type")),
		Difficulty: strings.TrimSpace(c.Query("difficulty")),
	}
	switch strings.TrimSpace(c.Query("isCompleted")) {
	case "true":
		v := true
		f.IsCompleted = &v
	case "false":
		v := false
		f.IsCompleted = &v
	}
	if withTrack {
		if raw := strings.TrimSpace(c.Query("trackId")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return f, apierr.BadRequest("Invalid trackId")
			}
			f.TrackID = &id
		}
	}
	return f, nil
}

func nonNil(rows []*types.Assignment) []*types.Assignment {
	if rows == nil {
		return []*types.Assignment{}
	}
	return rows
}

// POST /assignments/track/:trackId
// body (optional): { "type", "difficulty" }
func (ah *AssignmentHandler) Generate(c *gin.Context) {
	trackID, err := uuidParam(c, "trackId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var opts services.AssignmentOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			response.Error(c, err)
			return
		}
	}
	a, err := ah.generation.GenerateAssignment(c.Request.Context(), trackID, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "AI assignment generated successfully", a)
}

// GET /assignments/track/:trackId?type=&difficulty=&isCompleted=
func (ah *AssignmentHandler) ListByTrack(c *gin.Context) {
	trackID, err := uuidParam(c, "trackId")
	if err != nil {
		response.Error(c, err)
		return
	}
	f, err := assignmentFilter(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := ah.assignmentService.ListByTrack(c.Request.Context(), trackID, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Assignments fetched successfully", nonNil(rows))
}

// GET /assignments?trackId=&type=&difficulty=&isCompleted=
func (ah *AssignmentHandler) List(c *gin.Context) {
	f, err := assignmentFilter(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := ah.assignmentService.List(c.Request.Context(), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "User assignments fetched successfully", nonNil(rows))
}

// GET /assignments/stats
func (ah *AssignmentHandler) Stats(c *gin.Context) {
	stats, err := ah.assignmentService.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Assignment statistics fetched successfully", stats)
}

// GET /assignments/:assignmentId
func (ah *AssignmentHandler) Get(c *gin.Context) {
	id, err := uuidParam(c, "assignmentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	a, err := ah.assignmentService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Assignment fetched successfully", a)
}

// PATCH /assignments/:assignmentId
func (ah *AssignmentHandler) Update(c *gin.Context) {
	id, err := uuidParam(c, "assignmentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	patch, err := bindPatch(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	a, err := ah.assignmentService.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Assignment updated successfully", a)
}

// DELETE /assignments/:assignmentId
func (ah *AssignmentHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "assignmentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := ah.assignmentService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Assignment deleted successfully", gin.H{"assignmentId": id})
}

// POST /assignments/:assignmentId/submit
// body: { "submissionContent", "submissionType", "reflection" }
func (ah *AssignmentHandler) Submit(c *gin.Context) {
	id, err := uuidParam(c, "assignmentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var in services.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, err)
		return
	}
	a, err := ah.assignmentService.Submit(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Assignment submitted successfully", a)
}
