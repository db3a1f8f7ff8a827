package core

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"github.com/bitswalk/rowkeep/src/rowkeep/api"
	"github.com/bitswalk/rowkeep/src/rowkeep/backup"
	_ "github.com/bitswalk/rowkeep/src/rowkeep/docs"
	"github.com/bitswalk/rowkeep/src/rowkeep/storage"
)

// Server holds the HTTP server instance and configuration
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	runtime    *runtime
	backups    *backup.Manager
	api        *api.API

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewServer creates a new Server instance. backups may be nil.
func NewServer(rt *runtime, backups *backup.Manager) *Server {
	// Set Gin mode based on log level
	if viper.GetString("log.level") == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(ginLogger())

	tokens := newTokenService()
	if !tokens.Enabled() {
		log.Warn("No auth secret configured - write routes are open")
	}

	api.SetLogger(log)
	api.SetVersionInfo(VersionInfo)
	apiInstance := api.New(api.Config{
		Registry:  rt.registry,
		Executor:  rt.database.DB(),
		Dialect:   rt.database.Dialect(),
		Tokens:    tokens,
		RateLimit: rateLimitConfig(),
	})
	apiInstance.RegisterRoutes(router)

	return &Server{
		router:  router,
		runtime: rt,
		backups: backups,
		api:     apiInstance,
		stop:    make(chan struct{}),
	}
}

// Run starts the HTTP server and blocks until a shutdown signal
func (s *Server) Run() error {
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	addr := fmt.Sprintf("%s:%d", bind, port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.startBackgroundJobs()

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting rowkeep server", "address", addr, "tables", s.runtime.registry.Len())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errChan:
		if shutdownErr := s.Shutdown(); shutdownErr != nil {
			log.Warn("Shutdown after server error failed", "error", shutdownErr)
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Received signal, shutting down", "signal", sig)
	}

	return s.Shutdown()
}

// Shutdown stops background work and the HTTP server. The database is
// closed by the caller.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	s.api.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	log.Info("Server stopped gracefully")
	return nil
}

// startBackgroundJobs starts the periodic backup and persist loops that are
// configured
func (s *Server) startBackgroundJobs() {
	if interval, keep := backupSchedule(); s.backups != nil && interval > 0 {
		log.Info("Periodic backups enabled", "interval", interval, "keep", keep)
		s.every(interval, func() { s.runBackup(keep) })
	}

	if interval := persistInterval(); interval > 0 && s.runtime.database.PersistPath() != "" {
		log.Info("Periodic persistence enabled", "interval", interval, "path", s.runtime.database.PersistPath())
		s.every(interval, s.persist)
	}
}

// every runs fn on each tick until the server stops
func (s *Server) every(interval time.Duration, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// persist saves the in-memory database to its file
func (s *Server) persist() {
	if err := s.runtime.database.SaveToDisk(); err != nil {
		log.Error("Periodic persist failed", "error", err)
	}
}

func (s *Server) runBackup(keep int) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.backups.Create(ctx); err != nil {
		log.Error("Periodic backup failed", "error", err)
		return
	}

	if keep > 0 {
		if _, err := s.backups.Prune(ctx, keep); err != nil {
			log.Warn("Failed to prune backups", "error", err)
		}
	}
}

// corsMiddleware returns a gin middleware for handling CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+api.RequestIDHeader)
			c.Header("Access-Control-Expose-Headers", api.RequestIDHeader+", X-Row-Count")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// ginLogger returns a gin middleware for logging requests
func ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if query != "" {
			path = path + "?" + query
		}

		log.Debug("HTTP request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// runServer is called by the root command to start the server
func runServer() error {
	log.Info("rowkeep starting",
		"version", VersionInfo.Version,
		"build_date", VersionInfo.BuildDate,
		"log_output", log.Output(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	rt, err := openRuntime(ctx)
	cancel()
	if err != nil {
		return err
	}
	log.Info("Database ready", "driver", rt.database.Driver(), "in_memory", rt.database.InMemory())

	var backups *backup.Manager
	if interval, _ := backupSchedule(); interval > 0 {
		backups, err = newBackupManager(rt.database)
		if err != nil {
			rt.Close()
			return err
		}
		checkStorage(backups.Store())
	}

	server := NewServer(rt, backups)
	err = server.Run()

	log.Info("Persisting database to disk")
	if dbErr := rt.Close(); dbErr != nil {
		log.Error("Failed to persist database", "error", dbErr)
		if err == nil {
			err = dbErr
		}
	}

	return err
}

// checkStorage verifies the backup storage before the first backup. S3
// buckets are created when missing.
func checkStorage(store storage.Backend) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	if s3Backend, ok := store.(*storage.S3Backend); ok {
		err = s3Backend.EnsureBucket(ctx)
	} else {
		err = store.Ping(ctx)
	}

	if err != nil {
		log.Warn("Backup storage not accessible - backups may fail", "type", store.Type(), "location", store.Location(), "error", err)
		return
	}
	log.Debug("Backup storage verified", "type", store.Type(), "location", store.Location())
}
