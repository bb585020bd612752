package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/df07/go-ies-processor/pkg/profiles"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/rs/zerolog"
)

// Server handles web requests for parsing and previewing IES files
type Server struct {
	app     *fiber.App
	port    string
	library *profiles.Library
	logger  zerolog.Logger
}

// Options configures a Server
type Options struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Library backs the /api/profiles routes. Nil disables them.
	Library *profiles.Library

	Logger    zerolog.Logger
	AccessLog bool // request logging via fiber's logger middleware
}

// NewServer creates a web server with all routes registered
func NewServer(opts Options) *Server {
	s := &Server{
		port:    opts.Port,
		library: opts.Library,
		logger:  opts.Logger,
	}

	s.app = fiber.New(fiber.Config{
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		AppName:      "IES Processor",
	})

	s.app.Use(recover.New())
	if opts.AccessLog {
		s.app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Get("/health", s.handleHealth)
	api.Post("/parse", s.handleParse)

	if s.library == nil {
		return
	}
	api.Get("/profiles", s.handleListProfiles)
	api.Post("/profiles", s.handleImportProfile)
	api.Get("/profiles/:name", s.handleGetProfile)
	api.Delete("/profiles/:name", s.handleDeleteProfile)
	api.Get("/profiles/:name/polar.png", s.handlePolarPNG)
	api.Get("/profiles/:name/polar.html", s.handlePolarHTML)
}

// App exposes the fiber app, mainly for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.port)
	s.logger.Info().Str("addr", addr).Msg("starting web server")
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for in-flight requests
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// parseIntParam parses an integer parameter with validation
func parseIntParam(value, key string, defaultValue, min, max int) (int, error) {
	if value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter with validation
func parseFloatParam(value, key string, defaultValue, min, max float64) (float64, error) {
	if value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter; empty means false
func parseBoolParam(value, key string) (bool, error) {
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}
