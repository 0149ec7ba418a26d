package server

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisstore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/tablecritic/tablecritic/internal/config"
	"github.com/tablecritic/tablecritic/internal/handler"
	"github.com/tablecritic/tablecritic/internal/middleware"
	"github.com/tablecritic/tablecritic/internal/repository"
	"github.com/tablecritic/tablecritic/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	engine *gin.Engine
	db     *gorm.DB
}

func New(db *gorm.DB, cfg *config.Config) *Server {
	userRepo := repository.NewUserRepository(db)
	restaurantRepo := repository.NewRestaurantRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	authService := service.NewAuthService(userRepo)
	restaurantService := service.NewRestaurantService(restaurantRepo, reviewRepo)
	reviewService := service.NewReviewService(reviewRepo, restaurantRepo)

	authHandler := handler.NewAuthHandler(authService)
	restaurantHandler := handler.NewRestaurantHandler(restaurantService)
	reviewHandler := handler.NewReviewHandler(reviewService, restaurantService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	setupCORS(router, cfg)

	router.SetFuncMap(template.FuncMap{
		// An average of nil means no reviews yet, which is not the same
		// thing as a zero rating.
		"rating": func(avg *float64) string {
			if avg == nil {
				return "No reviews yet"
			}
			return fmt.Sprintf("%.1f", *avg)
		},
	})
	router.LoadHTMLGlob(cfg.TemplateGlob)
	router.Use(sessions.Sessions("tablecritic_session", sessionStore(cfg)))

	authMiddleware := middleware.NewAuthMiddleware(userRepo)
	router.Use(authMiddleware.CurrentUser())

	// Public routes
	router.GET("/", restaurantHandler.Home)
	router.GET("/restaurant/:id/", restaurantHandler.Detail)
	router.GET("/review/:id/", reviewHandler.Detail)

	router.GET("/signup/", authHandler.SignUpForm)
	router.POST("/signup/", authHandler.SignUp)
	router.GET("/login/", authHandler.LoginForm)
	router.POST("/login/", authHandler.Login)
	router.GET("/logout/", authHandler.Logout)
	router.POST("/logout/", authHandler.Logout)

	// Protected routes (apply auth middleware explicitly)
	protected := router.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/restaurant/:id/add_review/", reviewHandler.NewForm)
		protected.POST("/restaurant/:id/add_review/", reviewHandler.Create)

		protected.GET("/review/:id/update/", reviewHandler.EditForm)
		protected.POST("/review/:id/update/", reviewHandler.Update)
		protected.GET("/review/:id/delete/", reviewHandler.ConfirmDelete)
		protected.POST("/review/:id/delete/", reviewHandler.Delete)
	}

	return &Server{
		engine: router,
		db:     db,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Handler exposes the assembled router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func sessionStore(cfg *config.Config) sessions.Store {
	if cfg.SessionRedisAddr != "" {
		store, err := redisstore.NewStore(10, "tcp", cfg.SessionRedisAddr, "", []byte(cfg.SessionSecret))
		if err == nil {
			return store
		}
		log.Printf("redis session store unavailable, falling back to cookies: %v", err)
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((2 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	var origins []string
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:8080"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
