package instructor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/dto"
	"github.com/lshigami/examcore/internal/middleware"
	"github.com/lshigami/examcore/internal/service"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	authoringService  service.ExamAuthoringService
	gradingService    service.GradingService
	activityService   service.ActivityService
	assignmentService service.ExamAssignmentService
}

func NewExamController(
	authoring service.ExamAuthoringService,
	grading service.GradingService,
	activities service.ActivityService,
	assignments service.ExamAssignmentService,
) *ExamController {
	return &ExamController{
		authoringService:  authoring,
		gradingService:    grading,
		activityService:   activities,
		assignmentService: assignments,
	}
}

func (c *ExamController) RegisterRoutes(rg *gin.RouterGroup) {
	exams := rg.Group("/exams")
	exams.POST("", c.CreateExam)
	exams.GET("/:id", c.GetExam)
	exams.PUT("/:id", c.UpdateExam)

	assignments := rg.Group("/exam-assignments")
	assignments.GET("/:id", c.GetAssignment)
	assignments.POST("/:id/grade", c.GradeResponse)
	assignments.GET("/:id/activities", c.ListActivities)

	rg.POST("/suspicious-activity/:id/review", c.ReviewActivity)
}

func pathID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id format"})
		return uuid.Nil, false
	}
	return id, true
}

// CreateExam godoc
// @Summary (Instructor) Create an exam with its questions
// @Tags Instructor - Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam body dto.ExamInputDTO true "Exam definition"
// @Success 201 {object} dto.ExamResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /instructor/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	var req dto.ExamInputDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Instructor CreateExam: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	exam, err := c.authoringService.CreateExam(ctx.Request.Context(), middleware.CurrentUser(ctx), req)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Instructor CreateExam: Service error")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, exam)
}

// UpdateExam godoc
// @Summary (Instructor) Replace an exam definition
// @Description Questions and options carrying an id are updated, the rest are created, missing ones are removed. Rejected once any attempt has started.
// @Tags Instructor - Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param exam body dto.ExamInputDTO true "Exam definition"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /instructor/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	examID, ok := pathID(ctx)
	if !ok {
		return
	}
	var req dto.ExamInputDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Instructor UpdateExam: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	exam, err := c.authoringService.UpdateExam(ctx.Request.Context(), middleware.CurrentUser(ctx), examID, req)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// GetExam godoc
// @Summary (Instructor) Get an exam including answer keys
// @Tags Instructor - Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /instructor/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	examID, ok := pathID(ctx)
	if !ok {
		return
	}
	exam, err := c.authoringService.GetExam(ctx.Request.Context(), middleware.CurrentUser(ctx), examID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// GetAssignment godoc
// @Summary (Instructor) Get a student's attempt
// @Tags Instructor - Grading
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam assignment ID"
// @Success 200 {object} dto.ExamAssignmentDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /instructor/exam-assignments/{id} [get]
func (c *ExamController) GetAssignment(ctx *gin.Context) {
	assignmentID, ok := pathID(ctx)
	if !ok {
		return
	}
	resp, err := c.assignmentService.GetAssignment(ctx.Request.Context(), assignmentID, middleware.CurrentUser(ctx))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GradeResponse godoc
// @Summary (Instructor) Score a short answer or essay
// @Description The attempt becomes graded once every answered manual question has a score.
// @Tags Instructor - Grading
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam assignment ID"
// @Param grade body dto.GradeResponseRequest true "Score and feedback"
// @Success 200 {object} dto.ExamAssignmentDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /instructor/exam-assignments/{id}/grade [post]
func (c *ExamController) GradeResponse(ctx *gin.Context) {
	assignmentID, ok := pathID(ctx)
	if !ok {
		return
	}
	var req dto.GradeResponseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Instructor GradeResponse: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	assignment, err := c.gradingService.GradeResponse(ctx.Request.Context(), assignmentID, req.QuestionID,
		middleware.CurrentUser(ctx), *req.Score, req.Feedback)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	resp, err := c.assignmentService.ToDTO(ctx.Request.Context(), assignment)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListActivities godoc
// @Summary (Instructor) List suspicious activity of an attempt
// @Tags Instructor - Integrity
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam assignment ID"
// @Success 200 {array} dto.SuspiciousActivityDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /instructor/exam-assignments/{id}/activities [get]
func (c *ExamController) ListActivities(ctx *gin.Context) {
	assignmentID, ok := pathID(ctx)
	if !ok {
		return
	}
	activities, err := c.activityService.ListForAssignment(ctx.Request.Context(), assignmentID, middleware.CurrentUser(ctx))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, activities)
}

// ReviewActivity godoc
// @Summary (Instructor) Mark an event as reviewed
// @Tags Instructor - Integrity
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Activity ID"
// @Param review body dto.ReviewActivityRequest true "Action taken"
// @Success 200 {object} dto.SuspiciousActivityDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /instructor/suspicious-activity/{id}/review [post]
func (c *ExamController) ReviewActivity(ctx *gin.Context) {
	activityID, ok := pathID(ctx)
	if !ok {
		return
	}
	var req dto.ReviewActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	activity, err := c.activityService.MarkReviewed(ctx.Request.Context(), activityID, middleware.CurrentUser(ctx), req.ActionTaken)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, activity)
}
