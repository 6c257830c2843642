package server

import (
	"os"
	"strings"
	"time"

	"github.com/acadialab/appointbook/internal/entity"
	"github.com/acadialab/appointbook/internal/live"
	"github.com/acadialab/appointbook/internal/middleware"

	adminHttp "github.com/acadialab/appointbook/internal/modules/admin/delivery/http"
	adminService "github.com/acadialab/appointbook/internal/modules/admin/service"

	appointmentHttp "github.com/acadialab/appointbook/internal/modules/appointment/delivery/http"
	appointmentRepo "github.com/acadialab/appointbook/internal/modules/appointment/repository"
	appointmentService "github.com/acadialab/appointbook/internal/modules/appointment/service"

	dashboardHttp "github.com/acadialab/appointbook/internal/modules/dashboard/delivery/http"

	profileRepo "github.com/acadialab/appointbook/internal/modules/profile/repository"
	profileService "github.com/acadialab/appointbook/internal/modules/profile/service"

	userHttp "github.com/acadialab/appointbook/internal/modules/user/delivery/http"
	userRepo "github.com/acadialab/appointbook/internal/modules/user/repository"
	userService "github.com/acadialab/appointbook/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Server struct {
	engine *gin.Engine
	db     *gorm.DB
	feed   live.Feed
}

func NewServer(db *gorm.DB, feed live.Feed) *Server {
	profiles := profileRepo.NewProfileRepository(db, feed)
	accounts := userRepo.NewAccountRepository(db)
	appointments := appointmentRepo.NewAppointmentRepository(db, feed)

	profileSvc := profileService.NewProfileService(profiles, feed)
	authSvc := userService.NewAuthService(accounts, profileSvc)
	authHandler := userHttp.NewAuthHandler(authSvc)

	adminSvc := adminService.NewAdminService(profiles)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	appointmentSvc := appointmentService.NewAppointmentService(appointments, feed)
	appointmentHandler := appointmentHttp.NewAppointmentHandler(appointmentSvc)

	dashboardHandler := dashboardHttp.NewDashboardHandler(authSvc, profileSvc, appointmentSvc, profiles)

	router := gin.New()

	setupCORS(router)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(profiles)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
	}

	// The dashboard socket authenticates over the socket itself: the session
	// tracker lives on the connection, not in the middleware.
	api.GET("/dashboard/ws", dashboardHandler.Stream)

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/teachers", adminHandler.CreateTeacher)
			adminGroup.GET("/teachers", adminHandler.GetTeachers)
			adminGroup.DELETE("/teachers/:uid", adminHandler.DeleteTeacher)
			adminGroup.GET("/students/pending", adminHandler.GetPendingStudents)
			adminGroup.POST("/students/:uid/approve", adminHandler.ApproveStudent)
		}

		// Students book; teachers decide.
		protected.POST("/appointments",
			authMiddleware.RequireRole(entity.RoleStudent), appointmentHandler.Book)
		protected.PUT("/appointments/:id/status",
			authMiddleware.RequireRole(entity.RoleTeacher), appointmentHandler.UpdateStatus)
	}

	return &Server{
		engine: router,
		db:     db,
		feed:   feed,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
