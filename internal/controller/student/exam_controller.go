package student

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/examcore/internal/dto"
	"github.com/lshigami/examcore/internal/grading"
	"github.com/lshigami/examcore/internal/middleware"
	"github.com/lshigami/examcore/internal/model"
	"github.com/lshigami/examcore/internal/service"
	"github.com/rs/zerolog/log"
)

// ExamController serves the student's side of an exam attempt.
type ExamController struct {
	assignmentService service.ExamAssignmentService
	catalogService    service.ExamCatalogService
	activityService   service.ActivityService
}

func NewExamController(as service.ExamAssignmentService, cs service.ExamCatalogService, acts service.ActivityService) *ExamController {
	return &ExamController{
		assignmentService: as,
		catalogService:    cs,
		activityService:   acts,
	}
}

// RegisterRoutes mounts the student endpoints. The group is expected to be
// authenticated and restricted to students.
func (c *ExamController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/exams", c.ListExams)
	rg.GET("/exams/:id", c.GetExam)

	assignments := rg.Group("/exam-assignments")
	assignments.POST("/start", c.StartExam)
	assignments.GET("", c.ListAssignments)
	assignments.GET("/:id", c.GetAssignment)
	assignments.POST("/:id/submit-answer", c.SubmitAnswer)
	assignments.POST("/:id/submit", c.SubmitExam)

	rg.POST("/suspicious-activity", c.LogActivity)
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}

func pathID(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}

// ListExams godoc
// @Summary (Student) List exams of my specialization
// @Tags Student - Exams
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ExamSummaryDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	exams, err := c.catalogService.ListAvailable(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		log.Error().Err(err).Msg("Student ListExams: Service error")
		badRequest(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// GetExam godoc
// @Summary (Student) Get an exam to take
// @Description Questions and options without correctness flags.
// @Tags Student - Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} dto.StudentExamDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	examID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	exam, err := c.catalogService.GetExamForStudent(ctx.Request.Context(), examID, middleware.CurrentUser(ctx))
	if err != nil {
		log.Warn().Err(err).Str("examID", examID.String()).Msg("Student GetExam: Service error")
		badRequest(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// StartExam godoc
// @Summary (Student) Start or resume an exam
// @Description Returns the existing attempt when one is in progress.
// @Tags Student - Exam Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StartExamRequest true "Exam to start"
// @Success 201 {object} dto.ExamAssignmentDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /exam-assignments/start [post]
func (c *ExamController) StartExam(ctx *gin.Context) {
	var req dto.StartExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Student StartExam: Failed to bind JSON")
		badRequest(ctx, err)
		return
	}

	studentID := middleware.CurrentUser(ctx)
	assignment, _, err := c.assignmentService.StartExam(ctx.Request.Context(), req.ExamID, studentID)
	if err != nil {
		badRequest(ctx, err)
		return
	}
	resp, err := c.assignmentService.ToDTO(ctx.Request.Context(), assignment)
	if err != nil {
		log.Error().Err(err).Str("assignmentID", assignment.ID.String()).Msg("Student StartExam: Failed to build response")
		badRequest(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// SubmitAnswer godoc
// @Summary (Student) Save the answer to one question
// @Description Re-submitting overwrites the previous answer. Choice questions are scored immediately.
// @Tags Student - Exam Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam assignment ID"
// @Param request body dto.SubmitAnswerRequest true "Answer"
// @Success 200 {object} dto.StudentResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /exam-assignments/{id}/submit-answer [post]
func (c *ExamController) SubmitAnswer(ctx *gin.Context) {
	assignmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Student SubmitAnswer: Failed to bind JSON")
		badRequest(ctx, err)
		return
	}

	response, err := c.assignmentService.SubmitAnswer(ctx.Request.Context(), assignmentID, req.QuestionID,
		middleware.CurrentUser(ctx), grading.Answer{Text: req.AnswerText, OptionIDs: req.AnswerOptions})
	if err != nil {
		badRequest(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, c.assignmentService.ResponseToDTO(response))
}

// SubmitExam godoc
// @Summary (Student) Finish an attempt
// @Tags Student - Exam Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam assignment ID"
// @Success 200 {object} dto.ExamAssignmentDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /exam-assignments/{id}/submit [post]
func (c *ExamController) SubmitExam(ctx *gin.Context) {
	assignmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	assignment, err := c.assignmentService.SubmitExam(ctx.Request.Context(), assignmentID, middleware.CurrentUser(ctx))
	if err != nil {
		badRequest(ctx, err)
		return
	}
	resp, err := c.assignmentService.ToDTO(ctx.Request.Context(), assignment)
	if err != nil {
		badRequest(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListAssignments godoc
// @Summary (Student) List my attempts
// @Tags Student - Exam Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ExamAssignmentSummaryDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /exam-assignments [get]
func (c *ExamController) ListAssignments(ctx *gin.Context) {
	list, err := c.assignmentService.ListForStudent(ctx.Request.Context(), middleware.CurrentUser(ctx))
	if err != nil {
		badRequest(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, list)
}

// GetAssignment godoc
// @Summary Get one attempt with its responses
// @Description Visible to the student who owns it and to the exam's instructor.
// @Tags Student - Exam Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam assignment ID"
// @Success 200 {object} dto.ExamAssignmentDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /exam-assignments/{id} [get]
func (c *ExamController) GetAssignment(ctx *gin.Context) {
	assignmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	resp, err := c.assignmentService.GetAssignment(ctx.Request.Context(), assignmentID, middleware.CurrentUser(ctx))
	if err != nil {
		badRequest(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// LogActivity godoc
// @Summary (Student) Report a suspicious activity event
// @Description Recorded for instructor review only. Never changes scores.
// @Tags Student - Integrity
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LogActivityRequest true "Event"
// @Success 201 {object} dto.SuspiciousActivityDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /suspicious-activity [post]
func (c *ExamController) LogActivity(ctx *gin.Context) {
	var req dto.LogActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Student LogActivity: Failed to bind JSON")
		badRequest(ctx, err)
		return
	}
	activity, err := c.activityService.LogActivity(ctx.Request.Context(), req.AssignmentID, middleware.CurrentUser(ctx),
		model.ActivityType(req.ActivityType), model.Severity(req.Severity), req.Metadata)
	if err != nil {
		badRequest(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, activity)
}
