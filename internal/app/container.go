package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/resource-booking-backend/internal/api"
	"github.com/nekogravitycat/resource-booking-backend/internal/audit"
	"github.com/nekogravitycat/resource-booking-backend/internal/auth"
	"github.com/nekogravitycat/resource-booking-backend/internal/booking"
	"github.com/nekogravitycat/resource-booking-backend/internal/config"
	"github.com/nekogravitycat/resource-booking-backend/internal/file"
	"github.com/nekogravitycat/resource-booking-backend/internal/notification"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/cache"
	"github.com/nekogravitycat/resource-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/resource-booking-backend/internal/resource"
	"github.com/nekogravitycat/resource-booking-backend/internal/resourcetype"
	"github.com/nekogravitycat/resource-booking-backend/internal/sweeper"
	"github.com/nekogravitycat/resource-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	Location     *time.Location

	// Cache defaults to cache.Nop.
	Cache           cache.Cache
	AvailabilityTTL time.Duration
	Storage         storage.Storage
	// Recorder defaults to the audit_log table.
	Recorder       audit.Recorder
	MaxOccurrences int
	Sweep          config.SweepConfig
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
	Sweeper        *sweeper.Scheduler
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	if cfg.Cache == nil {
		cfg.Cache = cache.Nop{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = audit.NewPgxRecorder(cfg.DBPool)
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// File Module
	fileRepo := file.NewRepository(cfg.DBPool)
	fileService := file.NewService(fileRepo, cfg.Storage)

	// ResourceType Module
	rtRepo := resourcetype.NewPgxRepository(cfg.DBPool)
	rtService := resourcetype.NewService(rtRepo)

	// Resource Module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo, rtService)

	// Notification Module
	notificationRepo := notification.NewPgxRepository(cfg.DBPool)
	notificationService := notification.NewService(notificationRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, resService, userService, cfg.Recorder, cfg.Cache, booking.Config{
		Location:        cfg.Location,
		MaxOccurrences:  cfg.MaxOccurrences,
		AvailabilityTTL: cfg.AvailabilityTTL,
	})

	// Periodic sweeps
	bookingSweeper := booking.NewSweeper(bookingRepo, notificationService, cfg.Location, cfg.Sweep.ReminderLead)
	scheduler, err := sweeper.New(bookingSweeper, cfg.Sweep, cfg.Location)
	if err != nil {
		return nil, err
	}

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		Location:            cfg.Location,
		UserService:         userService,
		ResourceTypeService: rtService,
		ResourceService:     resService,
		FileService:         fileService,
		BookingService:      bookingService,
		NotificationService: notificationService,
		JWTManager:          jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
		Sweeper:        scheduler,
	}, nil
}
