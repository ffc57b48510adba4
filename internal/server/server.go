package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/config"
	"github.com/garagedesk/garagedesk/internal/middleware"

	carHttp "github.com/garagedesk/garagedesk/internal/modules/car/delivery/http"
	carRepo "github.com/garagedesk/garagedesk/internal/modules/car/repository"
	carService "github.com/garagedesk/garagedesk/internal/modules/car/service"

	problemHttp "github.com/garagedesk/garagedesk/internal/modules/problem/delivery/http"
	problemRepo "github.com/garagedesk/garagedesk/internal/modules/problem/repository"
	problemService "github.com/garagedesk/garagedesk/internal/modules/problem/service"

	statHttp "github.com/garagedesk/garagedesk/internal/modules/stat/delivery/http"
	statService "github.com/garagedesk/garagedesk/internal/modules/stat/service"

	ticketHttp "github.com/garagedesk/garagedesk/internal/modules/ticket/delivery/http"
	ticketRepo "github.com/garagedesk/garagedesk/internal/modules/ticket/repository"
	ticketService "github.com/garagedesk/garagedesk/internal/modules/ticket/service"

	userHttp "github.com/garagedesk/garagedesk/internal/modules/user/delivery/http"
	userRepo "github.com/garagedesk/garagedesk/internal/modules/user/repository"
	userService "github.com/garagedesk/garagedesk/internal/modules/user/service"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, logger *zap.SugaredLogger) *Server {
	users := userRepo.NewUserRepository(db)
	cars := carRepo.NewCarRepository(db)
	problems := problemRepo.NewProblemRepository(db)
	tickets := ticketRepo.NewTicketRepository(db)

	authSvc := userService.NewAuthService(users, redisClient, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc)

	userSvc := userService.NewUserService(users, tickets, cars)
	userHandler := userHttp.NewUserHandler(userSvc)

	carSvc := carService.NewCarService(cars, users, tickets)
	carHandler := carHttp.NewCarHandler(carSvc)

	problemSvc := problemService.NewProblemService(problems)
	problemHandler := problemHttp.NewProblemHandler(problemSvc)

	ticketSvc := ticketService.NewTicketService(tickets, cars, problems)
	ticketHandler := ticketHttp.NewTicketHandler(ticketSvc)

	statSvc := statService.NewStatService(tickets, problems)
	statHandler := statHttp.NewStatHandler(statSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	setupCORS(router, cfg.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(users, redisClient, cfg.JWTSecret)

	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/logout", authHandler.Logout)

		// User routes. Fixed paths before :id so gin doesn't shadow them.
		protected.GET("/users/me", authHandler.Me)
		protected.GET("/users/mechanics", userHandler.ListMechanics)
		protected.GET("/users", userHandler.ListUsers)
		protected.POST("/users", userHandler.CreateUser)
		protected.GET("/users/:id", userHandler.GetUser)
		protected.PUT("/users/:id", userHandler.UpdateUser)
		protected.DELETE("/users/:id", userHandler.DeleteUser)
		protected.GET("/users/:id/tickets", userHandler.ListUserTickets)
		protected.GET("/users/:id/cars", userHandler.ListUserCars)

		// Car routes
		protected.GET("/cars", carHandler.ListCars)
		protected.POST("/cars", carHandler.CreateCar)
		protected.GET("/cars/:id", carHandler.GetCar)
		protected.PUT("/cars/:id", carHandler.UpdateCar)
		protected.DELETE("/cars/:id", carHandler.DeleteCar)
		protected.GET("/cars/:id/tickets", carHandler.ListCarTickets)
		protected.GET("/cars/:id/problems", carHandler.GetCarHistory)

		// Problem catalog routes
		protected.GET("/problems/statistics", statHandler.ProblemStatistics)
		protected.GET("/problems", problemHandler.ListProblems)
		protected.POST("/problems", problemHandler.CreateProblem)
		protected.GET("/problems/:id", problemHandler.GetProblem)
		protected.PUT("/problems/:id", problemHandler.UpdateProblem)
		protected.DELETE("/problems/:id", problemHandler.DeleteProblem)

		// Ticket routes
		protected.GET("/tickets/statistics", statHandler.TicketStatistics)
		protected.GET("/tickets", ticketHandler.ListTickets)
		protected.POST("/tickets", ticketHandler.CreateTicket)
		protected.GET("/tickets/:id", ticketHandler.GetTicket)
		protected.PUT("/tickets/:id", ticketHandler.UpdateTicket)
		protected.DELETE("/tickets/:id", ticketHandler.DeleteTicket)
		protected.POST("/tickets/:id/accept", ticketHandler.AcceptTicket)
		protected.POST("/tickets/:id/start", ticketHandler.StartTicket)
		protected.POST("/tickets/:id/complete", ticketHandler.CompleteTicket)
		protected.POST("/tickets/:id/close", ticketHandler.CloseTicket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (s *Server) Run(addr string) error {
	if s.logger != nil {
		s.logger.Infow("starting http server", "addr", addr)
	}
	return s.engine.Run(addr)
}

// Engine exposes the router for httptest.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
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
