package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/resource-booking-backend/internal/auth"
	"github.com/nekogravitycat/resource-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/resource-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/resource-booking-backend/internal/file"
	fileHttp "github.com/nekogravitycat/resource-booking-backend/internal/file/http"
	"github.com/nekogravitycat/resource-booking-backend/internal/notification"
	notificationHttp "github.com/nekogravitycat/resource-booking-backend/internal/notification/http"
	"github.com/nekogravitycat/resource-booking-backend/internal/resource"
	resHttp "github.com/nekogravitycat/resource-booking-backend/internal/resource/http"
	"github.com/nekogravitycat/resource-booking-backend/internal/resourcetype"
	rtHttp "github.com/nekogravitycat/resource-booking-backend/internal/resourcetype/http"
	"github.com/nekogravitycat/resource-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/resource-booking-backend/internal/user/http"
)

// Config carries the services the router exposes.
type Config struct {
	IsProduction bool
	// ProdOrigins is a comma-separated list of allowed CORS origins in production.
	ProdOrigins string
	Location    *time.Location

	UserService         user.Service
	ResourceTypeService resourcetype.Service
	ResourceService     resource.Service
	FileService         file.Service
	BookingService      booking.Service
	NotificationService notification.Service
	JWTManager          *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global Middleware:
	// - RequestLogger: one structured log line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(RequestLogger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{
		"http://localhost:3000", // Frontend dev server
		"http://localhost:8081", // Swagger
	}
	if cfg.IsProduction {
		config.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	config.ExposeHeaders = []string{requestIDHeader, "Content-Disposition"}
	r.Use(cors.New(config))

	// authMiddleware: Validates the JWT and resolves the caller's current role.
	authMiddleware := auth.AuthRequired(cfg.JWTManager, cfg.UserService)
	// sysAdminMiddleware: Further checks if the authenticated user has System Admin privileges.
	sysAdminMiddleware := RequireSystemAdmin()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	rtHandler := rtHttp.NewHandler(cfg.ResourceTypeService)
	resHandler := resHttp.NewHandler(cfg.ResourceService, cfg.FileService)
	fileHandler := fileHttp.NewHandler(cfg.FileService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.Location)
	notificationHandler := notificationHttp.NewHandler(cfg.NotificationService)

	r.GET("/healthz", Health)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, sysAdminMiddleware)
		rtHttp.RegisterRoutes(v1, rtHandler, authMiddleware, sysAdminMiddleware)
		resHttp.RegisterRoutes(v1, resHandler, authMiddleware, sysAdminMiddleware)
		fileHttp.RegisterRoutes(v1, fileHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		notificationHttp.RegisterRoutes(v1, notificationHandler, authMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
