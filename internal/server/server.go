package server

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/thywilljoshua/matchgame/internal/config"
	"github.com/thywilljoshua/matchgame/internal/game"
	"github.com/thywilljoshua/matchgame/internal/logger"
)

// Player is the part of game.Service the handlers need.
type Player interface {
	Play(ctx context.Context, documentText string) (*game.Game, error)
}

// Server holds the state for the upload API.
type Server struct {
	cfg    config.Config
	game   Player
	log    *logger.Logger
	router *gin.Engine
}

// NewServer creates the upload directory and wires the routes.
func NewServer(cfg config.Config, player Player, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, err
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(requestLogger(log), recovery(log))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	s := &Server{cfg: cfg, game: player, log: log, router: r}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	s.log.Info("listening", "addr", addr, "upload_dir", s.cfg.UploadDir)
	return s.router.Run(addr)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.POST("/upload", s.handleUpload)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
