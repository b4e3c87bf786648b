package controller

import (
	"os"

	"ai-coaching-be/internal/dto"
	"ai-coaching-be/internal/pkg/logger"
	"ai-coaching-be/internal/pkg/serverutils"
	"ai-coaching-be/internal/service"
	internalWS "ai-coaching-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	Login(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	ActivateSession(ctx *fiber.Ctx) error
	DeactivateSession(ctx *fiber.Ctx) error
	SetReviewStatus(ctx *fiber.Ctx) error
	ListVerdictRules(ctx *fiber.Ctx) error
	CreateVerdictRule(ctx *fiber.Ctx) error
	UpdateVerdictRule(ctx *fiber.Ctx) error
	DeleteVerdictRule(ctx *fiber.Ctx) error
	CheckVerdict(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type adminController struct {
	adminService service.IAdminService
	hub          *internalWS.Hub
	logger       logger.ILogger
}

func NewAdminController(adminService service.IAdminService, hub *internalWS.Hub, log logger.ILogger) IAdminController {
	return &adminController{
		adminService: adminService,
		hub:          hub,
		logger:       log,
	}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/v1")
	h.Post("login", c.Login)
	h.Get("ws", c.ServeWs)

	protected := h.Use(serverutils.AdminJwtMiddleware)
	protected.Get("sessions", c.ListSessions)
	protected.Get("sessions/:id", c.GetSession)
	protected.Put("sessions/:id/activate", c.ActivateSession)
	protected.Put("sessions/:id/deactivate", c.DeactivateSession)
	protected.Put("sessions/:id/review-status", c.SetReviewStatus)
	protected.Get("verdict-rules", c.ListVerdictRules)
	protected.Post("verdict-rules", c.CreateVerdictRule)
	protected.Put("verdict-rules/:id", c.UpdateVerdictRule)
	protected.Delete("verdict-rules/:id", c.DeleteVerdictRule)
	protected.Post("verdict-rules/check", c.CheckVerdict)
}

func (c *adminController) Login(ctx *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.adminService.Login(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Login success", res))
}

func (c *adminController) ListSessions(ctx *fiber.Ctx) error {
	res, err := c.adminService.ListSessions(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Sessions listed", res))
}

func (c *adminController) GetSession(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}
	res, err := c.adminService.GetSession(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session detail", res))
}

func (c *adminController) ActivateSession(ctx *fiber.Ctx) error {
	return c.setActive(ctx, true, "Session activated")
}

func (c *adminController) DeactivateSession(ctx *fiber.Ctx) error {
	return c.setActive(ctx, false, "Session deactivated")
}

func (c *adminController) setActive(ctx *fiber.Ctx, active bool, message string) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}
	if err := c.adminService.SetSessionActive(ctx.Context(), id, active); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(message, nil))
}

func (c *adminController) SetReviewStatus(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}
	var req dto.ReviewStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if err := c.adminService.SetReviewStatus(ctx.Context(), id, req.Status); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Review status updated", nil))
}

func (c *adminController) ListVerdictRules(ctx *fiber.Ctx) error {
	res, err := c.adminService.ListVerdictRules(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Verdict rules listed", res))
}

func (c *adminController) CreateVerdictRule(ctx *fiber.Ctx) error {
	var req dto.VerdictRuleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.adminService.CreateVerdictRule(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Verdict rule created", res))
}

func (c *adminController) UpdateVerdictRule(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}
	var req dto.VerdictRuleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.adminService.UpdateVerdictRule(ctx.Context(), id, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Verdict rule updated", res))
}

func (c *adminController) DeleteVerdictRule(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx)
	if err != nil {
		return err
	}
	if err := c.adminService.DeleteVerdictRule(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Verdict rule deleted", nil))
}

func (c *adminController) CheckVerdict(ctx *fiber.Ctx) error {
	var req dto.VerdictCheckRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.adminService.CheckVerdict(ctx.Context(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Verdict evaluated", res))
}

// ServeWs upgrades the admin feed connection. Browsers cannot set headers on
// the handshake, so the token rides the query string.
func (c *adminController) ServeWs(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Missing token"))
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("ADMIN_JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		c.logger.Warn("AdminController", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Invalid token"))
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["role"] != "admin" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Invalid token claims"))
	}

	if websocket.IsWebSocketUpgrade(ctx) {
		return websocket.New(func(conn *websocket.Conn) {
			internalWS.ServeWs(c.hub, conn)
		})(ctx)
	}
	return fiber.ErrUpgradeRequired
}

func parseIdParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.ErrValidation("invalid id in path")
	}
	return id, nil
}
