package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"restopos/internal/config"
	"restopos/internal/domain/model"
	"restopos/internal/handler"
	"restopos/internal/infra/db"
	infraRepo "restopos/internal/infra/repository"
	"restopos/internal/kitchen"
	"restopos/internal/logger"
	"restopos/internal/server"
	"restopos/internal/usecase"
	auth "restopos/internal/usecase/auth_usecase"
	"restopos/internal/validator"
)

const serviceName = "restopos-api"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	menuRepo := infraRepo.NewMenuItemGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	settingsRepo := infraRepo.NewSettingsGormRepository(gormDB)
	draftRepo := infraRepo.NewDraftGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//厨房伝票の送り先
	dispatcher, closeDispatcher, err := newDispatcher(cfg, log)
	if err != nil {
		return err
	}
	defer closeDispatcher()

	clock := usecase.SystemClock{}

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, clock, cfg.Location)
	tableUC := usecase.NewTableUsecase(orderRepo, settingsRepo, orderUC)
	draftUC := usecase.NewDraftUsecase(draftRepo, menuRepo, orderUC, tableUC, log)
	salesUC := usecase.NewSalesUsecase(orderRepo, clock, cfg.Location)
	receiptUC := usecase.NewReceiptUsecase(orderRepo, settingsRepo, dispatcher, cfg.Location)
	menuUC := usecase.NewMenuUsecase(menuRepo)
	settingsUC := usecase.NewSettingsUsecase(txm, settingsRepo, clock)
	staffUC := usecase.NewStaffUsecase(userRepo)
	auditUC := usecase.NewAuditUsecase(infraRepo.NewAuditLogGormRepository(gormDB))

	//bcrypt（スタッフ登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, auth.SessionTTL)
	if err != nil {
		return err
	}

	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	logoutUC := auth.NewLogoutUsecase(userRepo, clock)
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, validator.NewAuthValidator(userRepo), clock)

	if err := seedOwner(ctx, cfg, registerUC, log); err != nil {
		return err
	}

	//Handler生成
	e := server.New(log)
	server.RegisterRoutes(e, cfg, userRepo,
		handler.NewAuthHandler(loginUC, logoutUC, staffUC, cfg.CookieSecure),
		handler.NewStaffHandler(registerUC, staffUC),
		handler.NewMenuHandler(menuUC),
		handler.NewSettingsHandler(settingsUC),
		handler.NewDraftHandler(draftUC),
		handler.NewOrderHandler(orderUC, receiptUC, cfg),
		handler.NewTableHandler(tableUC),
		handler.NewSalesHandler(salesUC, cfg.Location),
		handler.NewAuditHandler(auditUC, cfg.Location),
	)

	//Server起動
	return server.Run(ctx, e, cfg.Addr(), log)
}

// OWNER_USERNAMEがあればオーナーを作る（既にあれば何もしない）
func seedOwner(ctx context.Context, cfg config.Config, registerUC *auth.RegisterUserUsecase, log *slog.Logger) error {
	if cfg.OwnerUsername == "" {
		return nil
	}
	_, err := registerUC.Execute(ctx, auth.RegisterUserInput{
		Name:     "Owner",
		Username: cfg.OwnerUsername,
		Password: cfg.OwnerPassword,
		Role:     model.RoleOwner,
	})
	if errors.Is(err, auth.ErrUsernameAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}
	log.Info("owner created", slog.String("action", "owner_seeded"), slog.String("username", cfg.OwnerUsername))
	return nil
}

func newDispatcher(cfg config.Config, log *slog.Logger) (kitchen.Dispatcher, func(), error) {
	switch cfg.KitchenDispatch {
	case config.DispatchAMQP:
		d, err := kitchen.DialAMQP(cfg.AMQPURL, log)
		if err != nil {
			return nil, nil, err
		}
		return d, func() { _ = d.Close() }, nil
	case config.DispatchTelegram:
		d, err := kitchen.NewTelegramDispatcher(cfg.TelegramToken, cfg.TelegramKitchenChatID)
		if err != nil {
			return nil, nil, err
		}
		return d, func() {}, nil
	default:
		return kitchen.NewLogDispatcher(log), func() {}, nil
	}
}
