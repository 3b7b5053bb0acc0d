package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appauth "github.com/atomclub/attendance/internal/app/auth"
	"github.com/atomclub/attendance/internal/app/models/dto"
	"github.com/atomclub/attendance/internal/app/services"
	"github.com/atomclub/attendance/internal/middleware"
	"github.com/atomclub/attendance/internal/pkg/helpers"
)

// maxProofSize caps proof document uploads at 5 MiB
const maxProofSize = 5 << 20

// AttendanceController handles the attendance request workflow endpoints
type AttendanceController struct {
	attendanceService *services.AttendanceService
	logger            zerolog.Logger
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService *services.AttendanceService, logger zerolog.Logger) *AttendanceController {
	return &AttendanceController{
		attendanceService: attendanceService,
		logger:            logger,
	}
}

// viewer resolves the authenticated identity or aborts with 401
func viewer(ctx *gin.Context) (appauth.Viewer, bool) {
	v, ok := middleware.CurrentViewer(ctx)
	if !ok {
		detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
	}
	return v, ok
}

// Create submits one or more attendance requests
// @Summary Submit attendance requests
// @Description Creates one request per day. A multi-day submission is all-or-nothing: one invalid day rejects the whole batch. A request carrying a roster is a single bulk workflow instance.
// @Tags attendance
// @Accept json
// @Produce json
// @Param request body dto.CreateRequestPayload true "Single day or multi-day submission"
// @Success 201 {object} dto.APIResponse{data=[]models.AttendanceRequest} "Created requests"
// @Failure 400 {object} dto.ErrorResponse "Validation failure, every violation listed"
// @Failure 403 {object} dto.ErrorResponse "Caller is not a student"
// @Security BearerAuth
// @Router /attendance-requests [post]
func (c *AttendanceController) Create(ctx *gin.Context) {
	v, ok := viewer(ctx)
	if !ok {
		return
	}

	var payload dto.CreateRequestPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	created, err := c.attendanceService.Submit(ctx.Request.Context(), v, payload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(created))
}

// List returns the viewer's scoped requests
// @Summary List attendance requests
// @Description Students see their own requests, including bulk requests naming them on the roster. Mentors see their pending queue, department heads theirs. history=true switches faculty to their read-only history.
// @Tags attendance
// @Produce json
// @Param studentId query string false "Narrow to one student (faculty only)"
// @Param status query string false "Narrow to one status"
// @Param dateFrom query string false "Earliest date, YYYY-MM-DD"
// @Param dateTo query string false "Latest date, YYYY-MM-DD"
// @Param history query bool false "Faculty history view"
// @Param page query int false "1-based page number"
// @Param size query int false "Page size, at most 100"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse{items=[]models.AttendanceRequest}} "Newest first"
// @Failure 400 {object} dto.ErrorResponse "Bad filter"
// @Security BearerAuth
// @Router /attendance-requests [get]
func (c *AttendanceController) List(ctx *gin.Context) {
	v, ok := viewer(ctx)
	if !ok {
		return
	}

	var query dto.ListRequestsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	requests, total, err := c.attendanceService.List(ctx.Request.Context(), v, query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.NormalizePageSize(query.Page, query.Size)
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PagedResponse{
		Items:      requests,
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}))
}

// Get returns one request
// @Summary Get an attendance request
// @Tags attendance
// @Produce json
// @Param id path string true "Request id"
// @Success 200 {object} dto.APIResponse{data=models.AttendanceRequest}
// @Failure 404 {object} dto.ErrorResponse "Unknown or not visible to the caller"
// @Security BearerAuth
// @Router /attendance-requests/{id} [get]
func (c *AttendanceController) Get(ctx *gin.Context) {
	v, ok := viewer(ctx)
	if !ok {
		return
	}

	req, err := c.attendanceService.Get(ctx.Request.Context(), v, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(req))
}

// UpdateStatus moves a request through the approval workflow
// @Summary Approve or decline a request
// @Description Moves the request to the desired status. Mentors forward to PENDING_HOD or decline; department heads approve or decline. A request already moved by someone else yields 409 against the status that won.
// @Tags attendance
// @Accept json
// @Produce json
// @Param id path string true "Request id"
// @Param request body dto.StatusUpdateRequest true "Target status, with a reason when declining"
// @Success 200 {object} dto.APIResponse{data=models.AttendanceRequest} "Updated request"
// @Failure 403 {object} dto.ErrorResponse "Wrong queue or role"
// @Failure 404 {object} dto.ErrorResponse "Unknown request"
// @Failure 409 {object} dto.ErrorResponse "Illegal or stale transition"
// @Security BearerAuth
// @Router /attendance-requests/{id}/status [patch]
func (c *AttendanceController) UpdateStatus(ctx *gin.Context) {
	v, ok := viewer(ctx)
	if !ok {
		return
	}

	var update dto.StatusUpdateRequest
	if err := ctx.ShouldBindJSON(&update); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	req, err := c.attendanceService.UpdateStatus(ctx.Request.Context(), v, ctx.Param("id"), update)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(req))
}

// Delete removes the viewer's own unreviewed request
// @Summary Delete an attendance request
// @Description Only the requesting student may delete, and only while the request still awaits its mentor stage.
// @Tags attendance
// @Produce json
// @Param id path string true "Request id"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the owner, or already reviewed"
// @Failure 404 {object} dto.ErrorResponse "Unknown request"
// @Security BearerAuth
// @Router /attendance-requests/{id} [delete]
func (c *AttendanceController) Delete(ctx *gin.Context) {
	v, ok := viewer(ctx)
	if !ok {
		return
	}

	if err := c.attendanceService.Delete(ctx.Request.Context(), v, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.SuccessResponse{Message: "request deleted"}))
}

// UploadProof attaches a proof document to a request
// @Summary Upload a proof document
// @Tags attendance
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Request id"
// @Param proof formData file true "Proof document"
// @Success 200 {object} dto.APIResponse{data=dto.ProofUploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or oversized file"
// @Failure 403 {object} dto.ErrorResponse "Not the requesting student"
// @Security BearerAuth
// @Router /attendance-requests/{id}/proof [post]
func (c *AttendanceController) UploadProof(ctx *gin.Context) {
	v, ok := viewer(ctx)
	if !ok {
		return
	}

	file, err := ctx.FormFile("proof")
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Proof file is required").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}
	if file.Size > maxProofSize {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Proof file exceeds the 5 MiB limit")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	proofURL, err := c.attendanceService.AttachProof(ctx.Request.Context(), v, ctx.Param("id"), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.ProofUploadResponse{ProofURL: proofURL}))
}

// Statistics returns per-status counters over the viewer's scope
// @Summary Request statistics
// @Description Counts the viewer's visible requests per status. The four counters always sum to the total.
// @Tags attendance
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.RequestStatistics}
// @Security BearerAuth
// @Router /attendance-requests/statistics [get]
func (c *AttendanceController) Statistics(ctx *gin.Context) {
	v, ok := viewer(ctx)
	if !ok {
		return
	}

	stats, err := c.attendanceService.Statistics(ctx.Request.Context(), v)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(stats))
}
