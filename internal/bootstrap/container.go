package bootstrap

import (
	"log"
	"time"

	"ai-coaching-be/internal/config"
	"ai-coaching-be/internal/controller"
	"ai-coaching-be/internal/pkg/logger"
	"ai-coaching-be/internal/pkg/mailer"
	"ai-coaching-be/internal/repository/implementation"
	"ai-coaching-be/internal/repository/memory"
	"ai-coaching-be/internal/service"
	"ai-coaching-be/internal/websocket"
	"ai-coaching-be/pkg/llm"
	"ai-coaching-be/pkg/llm/factory"
	"ai-coaching-be/pkg/llm/gateway"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DiagnosticController controller.IDiagnosticController
	AdminController      controller.IAdminController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	WebSocketHub *websocket.Hub
	Logger       logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Generation collaborator. A missing key leaves the gateway without a
	// provider; AI-backed endpoints then answer NotConfigured instead of
	// guessing.
	var llmProvider llm.LLMProvider
	if cfg.Keys.LLMApiKey != "" || cfg.Ai.LLMProvider == "ollama" {
		p, err := factory.NewLLMProvider(
			cfg.Ai.LLMProvider,
			cfg.Ai.LLMModel,
			cfg.Ai.LLMBaseURL,
			cfg.Keys.LLMApiKey,
		)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM provider: %v", err)
		}
		llmProvider = p
		log.Printf("[INFO] Using LLM provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	} else {
		log.Printf("[WARN] LLM_API_KEY is empty, AI endpoints will answer 503")
	}
	llmGateway := gateway.New(llmProvider, time.Duration(cfg.Ai.TimeoutSeconds)*time.Second, sysLogger)

	// 4. Repositories
	sessionRepo := implementation.NewDiagnosticSessionRepository(db)
	adminRepo := implementation.NewAdminUserRepository(db)
	ruleRepo := implementation.NewVerdictRuleRepository(db)
	chatContextRepo := memory.NewChatContextRepository()

	// 5. WebSocket Hub
	wsHub := websocket.NewHub(sysLogger)
	go wsHub.Run()

	// 6. Services
	guard := service.NewSessionGuard(sessionRepo)
	diagnosticService := service.NewDiagnosticService(cfg, sessionRepo, guard, llmGateway, pubSub, sysLogger)
	exportService := service.NewExportService(guard, emailService, sysLogger)
	chatService := service.NewChatService(guard, chatContextRepo, llmGateway, sysLogger)
	adminService := service.NewAdminService(cfg, adminRepo, ruleRepo, sessionRepo, sysLogger)
	consumerService := service.NewConsumerService(pubSub, wsHub, sessionRepo, emailService, sysLogger)

	// 7. Controllers
	diagnosticController := controller.NewDiagnosticController(diagnosticService, exportService, chatService)
	adminController := controller.NewAdminController(adminService, wsHub, sysLogger)

	return &Container{
		DiagnosticController: diagnosticController,
		AdminController:      adminController,
		ConsumerService:      consumerService,
		WebSocketHub:         wsHub,
		Logger:               sysLogger,
	}
}
