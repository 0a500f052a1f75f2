package container

import (
	"database/sql"

	"receiving/internal/inbound"
	"receiving/internal/intake"
	"receiving/internal/logger"
	"receiving/internal/reconcile"
	"receiving/internal/repository"
	"receiving/internal/sessions"
	"receiving/internal/users"
	"receiving/pkg/auditlog"
	"receiving/pkg/security"

	"go.uber.org/zap"
)

type Container struct {
	Repository     *repository.Repository
	Logger         *zap.Logger
	AuditLog       *auditlog.Auditlog
	LoginHandler   *security.LoginHandler
	CheckHandler   *reconcile.CheckHandler
	InboundHandler *inbound.InboundHandler
	IntakeHandler  *intake.IntakeHandler
	SessionHandler *sessions.SessionHandler
	UserHandler    *users.UsersHandler
}

func NewAppContainer(db *sql.DB) *Container {
	repo := repository.NewRepository(db)
	log := logger.NewLogger()
	auditLog := auditlog.NewAuditLog(repo)

	engine := reconcile.NewEngine(repo, log)
	checkHandler := reconcile.NewCheckHandler(engine, repo, auditLog)

	tracker := inbound.NewTracker(repo, log)
	inboundHandler := inbound.NewInboundHandler(tracker, auditLog)

	intakeService := intake.NewService(repo, log)
	intakeHandler := intake.NewIntakeHandler(intakeService, auditLog)

	sessionService := sessions.NewService(repo, log)
	sessionHandler := sessions.NewSessionHandler(sessionService, repo, auditLog)

	userRepo := users.NewRepository(repo)
	userHandler := users.NewHandler(userRepo)

	loginHandler := security.NewLoginHandler(repo)

	return &Container{
		Repository:     repo,
		Logger:         log,
		AuditLog:       auditLog,
		LoginHandler:   loginHandler,
		CheckHandler:   checkHandler,
		InboundHandler: inboundHandler,
		IntakeHandler:  intakeHandler,
		SessionHandler: sessionHandler,
		UserHandler:    userHandler,
	}
}
