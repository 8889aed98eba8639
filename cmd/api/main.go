package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/geocode"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/telegram"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/mongodb"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/attendance-backend-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/attendance-backend-go/internal/service/notification"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
)

// repositories is the storage backend selected by DB_DRIVER.
type repositories struct {
	attendance  attendance.AttendanceRepository
	employee    employee.EmployeeRepository
	qrCode      qrcode.QRCodeRepository
	leave       leave.LeaveRequestRepository
	transactor  database.Transactor
	revocations auth.RevocationStore
	close       func(ctx context.Context)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	setupLogger(cfg.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer repos.close(context.Background())

	loc := cfg.Schedule.Location
	hub := sse.NewHub()

	telegramClient := telegram.NewClient(telegram.Config{
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		Topics: map[notification.Topic]string{
			notification.TopicAttendance: cfg.Telegram.TopicAttendanceID,
			notification.TopicSecurity:   cfg.Telegram.TopicSecurityID,
			notification.TopicReport:     cfg.Telegram.TopicReportID,
		},
	})
	notifier := notificationService.NewNotificationService(telegramClient, hub, notificationService.Config{
		WorkerCount: cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
		MaxRetries:  cfg.Notification.MaxRetries,
	})
	defer notifier.Stop()

	geocoder := geocode.NewNominatimClient(geocode.Config{
		BaseURL:   cfg.Geocode.BaseURL,
		UserAgent: cfg.Geocode.UserAgent,
	})

	sinks := []report.Sink{reportService.NewTelegramSink(telegramClient, loc)}
	if cfg.SMTP.Host != "" {
		mailer, err := email.NewReportMailer(cfg.SMTP, loc)
		if err != nil {
			return fmt.Errorf("failed to initialize report mailer: %w", err)
		}
		sinks = append(sinks, mailer)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret)

	attendanceSvc := attendanceService.NewAttendanceService(
		repos.attendance,
		repos.employee,
		repos.qrCode,
		notifier,
		geocoder,
		hub,
		attendanceService.Config{Location: loc},
	)
	leaveSvc := leaveService.NewLeaveService(repos.leave, repos.employee, repos.transactor, loc)
	reportSvc := reportService.NewReportService(repos.attendance, repos.employee, loc, sinks...)
	employeeSvc := employeeService.NewEmployeeService(repos.employee, notifier)
	authSvc := serviceAuth.NewAuthService(repos.revocations, notifier, loc)

	attendanceJobs := cron.NewAttendanceJobs(repos.attendance, repos.employee, leaveSvc, reportSvc, loc, cfg.Schedule.RestDay)
	scheduler := cron.NewScheduler()
	attendanceJobs.RegisterJobs(scheduler, cron.DailySchedule{
		BackfillAt: cron.ClockTime(cfg.Schedule.BackfillAt),
		SweepAt:    cron.ClockTime(cfg.Schedule.SweepAt),
		ReportAt:   cron.ClockTime(cfg.Schedule.ReportAt),
	})
	cron.NewLeaveJobs(leaveSvc, loc).RegisterJobs(scheduler, cron.ClockTime(cfg.Schedule.LeaveRejectAt))
	cron.NewAuthJobs(repos.revocations).RegisterJobs(scheduler, cfg.Schedule.PurgeInterval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(cfg.App, JWTService, repos.revocations, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Report:     appHTTP.NewReportHandler(reportSvc, attendanceJobs),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Live:       appHTTP.NewLiveHandler(hub, JWTService),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "driver", cfg.Database.Driver, "timezone", cfg.Schedule.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, err
		}
		return &repositories{
			attendance:  postgresql.NewAttendanceRepository(db),
			employee:    postgresql.NewEmployeeRepository(db),
			qrCode:      postgresql.NewQRCodeRepository(db),
			leave:       postgresql.NewLeaveRequestRepository(db),
			transactor:  postgresql.NewTransactor(db),
			revocations: postgresql.NewRevokedTokenRepository(db),
			close:       func(context.Context) { db.Close() },
		}, nil

	case config.DriverMongo:
		db, err := database.NewMongoDB(ctx, cfg.Database.MongoURI, cfg.Database.MongoName)
		if err != nil {
			return nil, err
		}
		return &repositories{
			attendance:  mongodb.NewAttendanceRepository(db),
			employee:    mongodb.NewEmployeeRepository(db),
			qrCode:      mongodb.NewQRCodeRepository(db),
			leave:       mongodb.NewLeaveRequestRepository(db),
			revocations: jwt.NewMemoryRevocationStore(),
			close: func(ctx context.Context) {
				if err := db.Close(ctx); err != nil {
					slog.Error("Failed to close MongoDB client", "error", err)
				}
			},
		}, nil

	case config.DriverMemory:
		slog.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			attendance:  memory.NewAttendanceRepository(store),
			employee:    memory.NewEmployeeRepository(store),
			qrCode:      memory.NewQRCodeRepository(store),
			leave:       memory.NewLeaveRequestRepository(store),
			revocations: jwt.NewMemoryRevocationStore(),
			close:       func(context.Context) {},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func setupLogger(app config.AppConfig) {
	var level slog.Level
	switch strings.ToLower(app.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With(slog.String("env", app.Env)))
}
