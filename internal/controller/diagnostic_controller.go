package controller

import (
	"io"
	"path/filepath"
	"strings"

	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/internal/service"
	"ai-coaching-be/pkg/extraction"

	"github.com/gofiber/fiber/v2"
)

type IDiagnosticController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	AnalyzeCv(ctx *fiber.Ctx) error
	StartInterview(ctx *fiber.Ctx) error
	AnswerInterview(ctx *fiber.Ctx) error
	ComputeCoherence(ctx *fiber.Ctx) error
	AnswerProbe(ctx *fiber.Ctx) error
	StartScenarios(ctx *fiber.Ctx) error
	AnswerScenario(ctx *fiber.Ctx) error
	StartPaths(ctx *fiber.Ctx) error
	SelectPath(ctx *fiber.Ctx) error
	StartPlan(ctx *fiber.Ctx) error
	ToggleTask(ctx *fiber.Ctx) error
	Aggregate(ctx *fiber.Ctx) error
	SubmitSelfDescription(ctx *fiber.Ctx) error
	ChooseAction(ctx *fiber.Ctx) error
	StartGrandSimulation(ctx *fiber.Ctx) error
	AnswerGrand(ctx *fiber.Ctx) error
	Dossier(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
}

type diagnosticController struct {
	diagnosticService service.IDiagnosticService
	exportService     service.IExportService
	chatService       service.IChatService
}

func NewDiagnosticController(
	diagnosticService service.IDiagnosticService,
	exportService service.IExportService,
	chatService service.IChatService,
) IDiagnosticController {
	return &diagnosticController{
		diagnosticService: diagnosticService,
		exportService:     exportService,
		chatService:       chatService,
	}
}

func (c *diagnosticController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/diagnostic/v1")
	h.Post("submit", c.Submit)
	h.Post("phase0/analyze-cv", c.AnalyzeCv)
	h.Post("phase0/interview/start", c.StartInterview)
	h.Post("phase0/interview/answer", c.AnswerInterview)
	h.Post("phase1/compute", c.ComputeCoherence)
	h.Post("phase1/probe", c.AnswerProbe)
	h.Post("phase2/scenarios", c.StartScenarios)
	h.Post("phase2/answer", c.AnswerScenario)
	h.Post("phase3/paths", c.StartPaths)
	h.Post("phase3/select", c.SelectPath)
	h.Post("phase4/plan", c.StartPlan)
	h.Post("phase4/toggle-task", c.ToggleTask)
	h.Post("phase5/aggregate", c.Aggregate)
	h.Post("phase5/self-description", c.SubmitSelfDescription)
	h.Post("phase5/choose-action", c.ChooseAction)
	h.Post("phase5/grand-simulation", c.StartGrandSimulation)
	h.Post("phase5/grand-answer", c.AnswerGrand)
	h.Post("phase5/dossier", c.Dossier)
	h.Post("export", c.Export)
	h.Post("chat", c.Chat)
}

func (c *diagnosticController) Submit(ctx *fiber.Ctx) error {
	var req dto.SubmitRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.diagnosticService.Submit(ctx.Context(), req, ctx.IP(), ctx.Get(fiber.HeaderUserAgent))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session submitted, awaiting activation", res))
}

func (c *diagnosticController) AnalyzeCv(ctx *fiber.Ctx) error {
	email := strings.TrimSpace(ctx.FormValue("email"))
	if err := serverutils.ValidateRequest(dto.EmailRequest{Email: email}); err != nil {
		return err
	}

	fileHeader, err := ctx.FormFile("cv")
	if err != nil {
		return serverutils.ErrValidation("the cv file part is missing")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return serverutils.ErrValidation("the cv file could not be opened")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return serverutils.ErrValidation("the cv file could not be read")
	}

	res, err := c.diagnosticService.AnalyzeCv(ctx.Context(), email, ctx.IP(), mediaTypeOf(fileHeader.Filename), data)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Resume analyzed", res))
}

// mediaTypeOf maps the upload's filename to a supported media type; the
// extension is authoritative, client content-type headers are not trusted.
func mediaTypeOf(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extraction.MediaTypePDF
	case ".docx":
		return extraction.MediaTypeDOCX
	default:
		return ""
	}
}

func (c *diagnosticController) StartInterview(ctx *fiber.Ctx) error {
	email, err := parseEmailBody(ctx)
	if err != nil {
		return err
	}
	res, err := c.diagnosticService.StartInterview(ctx.Context(), email, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Interview question ready", res))
}

func (c *diagnosticController) AnswerInterview(ctx *fiber.Ctx) error {
	var req dto.InterviewAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.diagnosticService.AnswerInterview(ctx.Context(), req, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Answer recorded", res))
}

func (c *diagnosticController) ComputeCoherence(ctx *fiber.Ctx) error {
	email, err := parseEmailBody(ctx)
	if err != nil {
		return err
	}
	res, err := c.diagnosticService.ComputeCoherence(ctx.Context(), email, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Coherence audit done", res))
}

func (c *diagnosticController) AnswerProbe(ctx *fiber.Ctx) error {
	var req dto.ProbeAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.diagnosticService.AnswerProbe(ctx.Context(), req, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Probe answer recorded", res))
}

func (c *diagnosticController) StartScenarios(ctx *fiber.Ctx) error {
	email, err := parseEmailBody(ctx)
	if err != nil {
		return err
	}
	res, err := c.diagnosticService.StartScenarios(ctx.Context(), email, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Scenarios ready", res))
}

func (c *diagnosticController) AnswerScenario(ctx *fiber.Ctx) error {
	var req dto.ScenarioAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.diagnosticService.AnswerScenario(ctx.Context(), req, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Scenario answer recorded", res))
}

func (c *diagnosticController) StartPaths(ctx *fiber.Ctx) error {
	email, err := parseEmailBody(ctx)
	if err != nil {
		return err
	}
	res, err := c.diagnosticService.StartPaths(ctx.Context(), email, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Growth paths ready", res))
}

func (c *diagnosticController) SelectPath(ctx *fiber.Ctx) error {
	var req dto.SelectPathRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.diagnosticService.SelectPath(ctx.Context(), req, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Growth path selected", res))
}

func (c *diagnosticController) StartPlan(ctx *fiber.Ctx) error {
	email, err := parseEmailBody(ctx)
	if err != nil {
		return err
	}
	res, err := c.diagnosticService.StartPlan(ctx.Context(), email, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Plan ready", res))
}

func (c *diagnosticController) ToggleTask(ctx *fiber.Ctx) error {
	var req dto.ToggleTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.diagnosticService.ToggleTask(ctx.Context(), req, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Task updated", res))
}

func (c *diagnosticController) Aggregate(ctx *fiber.Ctx) error {
	email, err := parseEmailBody(ctx)
	if err != nil {
		return err
	}
	res, err := c.diagnosticService.Aggregate(ctx.Context(), email, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile aggregated", res))
}

func (c *diagnosticController) SubmitSelfDescription(ctx *fiber.Ctx) error {
	var req dto.SelfDescriptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.diagnosticService.SubmitSelfDescription(ctx.Context(), req, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Self-description analyzed", res))
}

func (c *diagnosticController) ChooseAction(ctx *fiber.Ctx) error {
	var req dto.ChooseActionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.diagnosticService.ChooseAction(ctx.Context(), req, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Final action selected", res))
}

func (c *diagnosticController) StartGrandSimulation(ctx *fiber.Ctx) error {
	email, err := parseEmailBody(ctx)
	if err != nil {
		return err
	}
	res, err := c.diagnosticService.StartGrandSimulation(ctx.Context(), email, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Grand scenario ready", res))
}

func (c *diagnosticController) AnswerGrand(ctx *fiber.Ctx) error {
	var req dto.GrandAnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.diagnosticService.AnswerGrand(ctx.Context(), req, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Diagnostic completed", res))
}

func (c *diagnosticController) Dossier(ctx *fiber.Ctx) error {
	email, err := parseEmailBody(ctx)
	if err != nil {
		return err
	}
	res, err := c.diagnosticService.Dossier(ctx.Context(), email, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Expert dossier ready", res))
}

func (c *diagnosticController) Export(ctx *fiber.Ctx) error {
	var req dto.ExportRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.exportService.Export(ctx.Context(), req, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Export ready", res))
}

func (c *diagnosticController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.chatService.Chat(ctx.Context(), req, ctx.IP())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat answer", res))
}

func parseEmailBody(ctx *fiber.Ctx) (string, error) {
	var req dto.EmailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return "", err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return "", err
	}
	return req.Email, nil
}
