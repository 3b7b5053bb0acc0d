package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/atomclub/attendance/internal/app/models/dto"
	"github.com/atomclub/attendance/internal/app/services"
	"github.com/atomclub/attendance/internal/middleware"
)

// FacultyController serves the faculty directory
type FacultyController struct {
	facultyService *services.FacultyService
	logger         zerolog.Logger
}

// NewFacultyController creates a new FacultyController
func NewFacultyController(facultyService *services.FacultyService, logger zerolog.Logger) *FacultyController {
	return &FacultyController{
		facultyService: facultyService,
		logger:         logger,
	}
}

// List returns the faculty directory
// @Summary List faculty
// @Description Returns every faculty member, or one department's when the department query parameter is set. Students use this to pick coordinators and period supervisors.
// @Tags faculty
// @Produce json
// @Param department query string false "Narrow to one department"
// @Success 200 {object} dto.APIResponse{data=[]dto.FacultyResponse} "Ordered by name"
// @Security BearerAuth
// @Router /faculty [get]
func (c *FacultyController) List(ctx *gin.Context) {
	department := ctx.Query("department")

	var (
		directory []dto.FacultyResponse
		err       error
	)
	if department != "" {
		directory, err = c.facultyService.ListByDepartment(ctx.Request.Context(), department)
	} else {
		directory, err = c.facultyService.List(ctx.Request.Context())
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(directory))
}
