package main

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	_ "time/tzdata"

	"funnybanny-backend/internal/config"
	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/handler"
	"funnybanny-backend/internal/identity"
	"funnybanny-backend/internal/notify"
	"funnybanny-backend/internal/ports"
	"funnybanny-backend/internal/repository"
	"funnybanny-backend/internal/server"
	"funnybanny-backend/internal/service"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Firebase app (optional unless the firebase store is selected)
	var app *firebase.App
	if cfg.UsesFirebase() {
		app, err = firebase.NewApp(ctx, &firebase.Config{
			ProjectID:   cfg.FirebaseProjectID,
			DatabaseURL: cfg.FirebaseDatabaseURL,
		}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
	}

	var store ports.Store
	switch cfg.StoreDriver {
	case config.StoreFirebase:
		fb, err := db.NewFirebase(ctx, app)
		if err != nil {
			logger.Error("failed to init firebase database", "err", err)
			os.Exit(1)
		}
		store = fb
	case config.StorePostgres:
		pg, err := db.NewPostgres(ctx, cfg)
		if err != nil {
			logger.Error("failed to connect database", "err", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
	default:
		logger.Warn("using in-memory store; data is lost on restart")
		store = db.NewMemory()
	}

	// repositories
	childRepo := repository.ChildRepository{Store: store}
	staffRepo := repository.StaffRepository{Store: store}
	invoiceRepo := repository.InvoiceRepository{Store: store}
	attendanceRepo := repository.AttendanceRepository{Store: store}
	staffAttendanceRepo := repository.StaffAttendanceRepository{Store: store}
	settingsRepo := repository.SettingsRepository{Store: store}
	userRepo := repository.UserRepository{Store: store}
	deviceRepo := repository.DeviceTokenRepository{Store: store}
	activityRepo := repository.ActivityLogRepository{Store: store}

	// identity provider and notifications
	var provider identity.Provider = identity.Local{Store: store}
	var notifier notify.Notifier = notify.Noop{}
	if app != nil {
		authClient, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		fbProvider, err := identity.NewFirebase(ctx, authClient, cfg.FirebaseAPIKey)
		if err != nil {
			logger.Error("failed to init identity provider", "err", err)
			os.Exit(1)
		}
		provider = fbProvider

		msgClient, err := app.Messaging(ctx)
		if err != nil {
			logger.Warn("push notifications disabled", "err", err)
		} else {
			notifier = notify.FCM{Client: msgClient, Tokens: deviceRepo, Logger: logger}
		}
	}
	if err := seedAdmin(ctx, provider, cfg, logger); err != nil {
		logger.Error("failed to seed admin account", "err", err)
		os.Exit(1)
	}

	// services
	clock := service.Clock{Location: cfg.Location}
	settingsSvc := service.SettingsService{Repo: settingsRepo, Logger: logger}
	snapshotSvc := service.SnapshotService{
		Store:           store,
		Children:        childRepo,
		Staff:           staffRepo,
		Invoices:        invoiceRepo,
		Attendance:      attendanceRepo,
		StaffAttendance: staffAttendanceRepo,
		Settings:        settingsSvc,
		Clock:           clock,
		Logger:          logger,
	}
	authSvc := service.AuthService{Config: cfg, Identity: provider, Users: userRepo, Logger: logger}
	scanSvc := service.ScanService{
		Snapshots:       snapshotSvc,
		Attendance:      attendanceRepo,
		StaffAttendance: staffAttendanceRepo,
		Notifier:        notifier,
		Clock:           clock,
		NurseryID:       cfg.NurseryID,
		Logger:          logger,
	}
	invoiceSvc := service.InvoiceService{Invoices: invoiceRepo, Settings: settingsSvc, Activity: activityRepo, Clock: clock, Logger: logger}
	accountSvc := service.AccountService{
		Store:    store,
		Children: childRepo,
		Staff:    staffRepo,
		Identity: provider,
		Activity: activityRepo,
		Logger:   logger,
	}
	registrySvc := service.RegistryService{
		Children:        childRepo,
		Staff:           staffRepo,
		Invoices:        invoiceRepo,
		Attendance:      attendanceRepo,
		StaffAttendance: staffAttendanceRepo,
		Activity:        activityRepo,
		Clock:           clock,
		Logger:          logger,
	}
	reportSvc := service.ReportService{Snapshots: snapshotSvc, Clock: clock}

	// handlers
	handlers := server.Handlers{
		Health:   handler.HealthHandler{Store: store},
		Docs:     handler.DocsHandler{},
		Auth:     handler.AuthHandler{Service: &authSvc},
		Scan:     handler.ScanHandler{Service: scanSvc},
		Devices:  handler.DeviceHandler{Repo: deviceRepo},
		Portal:   handler.PortalHandler{Reports: reportSvc},
		Snapshot: handler.SnapshotHandler{Service: snapshotSvc},
		Children: handler.ChildHandler{Repo: childRepo, Registry: registrySvc},
		Staff:    handler.StaffHandler{Repo: staffRepo, Registry: registrySvc},
		Invoices: handler.InvoiceHandler{Repo: invoiceRepo, Children: childRepo, Service: invoiceSvc, Registry: registrySvc},
		Accounts: handler.AccountHandler{Service: accountSvc},
		Attendance: handler.AttendanceHandler{
			Attendance:      attendanceRepo,
			StaffAttendance: staffAttendanceRepo,
			Registry:        registrySvc,
			Clock:           clock,
		},
		Settings: handler.SettingsHandler{Service: settingsSvc, NurseryID: cfg.NurseryID},
		Reports:  handler.ReportHandler{Service: reportSvc},
		Export:   handler.ExportHandler{Attendance: attendanceRepo, StaffAttendance: staffAttendanceRepo, Invoices: invoiceRepo},
		Logs:     handler.ActivityLogHandler{Repo: activityRepo},
	}

	router := server.NewRouter(logger, authSvc, handlers)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

// seedAdmin creates the configured admin identity once. It gets no profile, which
// makes it an admin.
func seedAdmin(ctx context.Context, p identity.Provider, cfg config.Config, logger *slog.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	uid, err := p.CreateIdentity(ctx, strings.ToLower(cfg.AdminEmail), cfg.AdminPassword)
	if errors.Is(err, identity.ErrEmailInUse) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("admin account created", "account_id", uid)
	return nil
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Allow inline JSON or base64-encoded JSON in env to avoid writing a file.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
