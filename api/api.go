// Package api exposes generation over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/TFMV/datahobbit/metrics"
	"github.com/TFMV/datahobbit/pkg/generate"
	"github.com/TFMV/datahobbit/pkg/generator"
	"github.com/TFMV/datahobbit/pkg/schema"
	"github.com/TFMV/datahobbit/validation"
	"github.com/TFMV/datahobbit/version"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// ServerOptions configures the HTTP server.
type ServerOptions struct {
	Port    string
	Prefork bool

	// OutputDir is the root for every schema read and file written through
	// the API. Request paths must stay inside it.
	OutputDir string

	// MaxRecords caps the records of a single request. Zero means no cap.
	MaxRecords int64

	Logger *zap.Logger
}

// Server holds the Fiber app instance
type Server struct {
	app  *fiber.App
	opts ServerOptions
	log  *zap.Logger
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	SchemaPath  string         `json:"schema_path"`
	Schema      *schema.Schema `json:"schema"`
	Output      string         `json:"output"`
	Format      string         `json:"format"`
	Records     int64          `json:"records"`
	Delimiter   string         `json:"delimiter"`
	MaxFileSize int64          `json:"max_file_size"`
	BatchSize   int            `json:"batch_size"`
	ChunkSize   int            `json:"chunk_size"`
	Workers     int            `json:"workers"`
	Seed        uint64         `json:"seed"`
	Compression string         `json:"compression"`
	Unordered   bool           `json:"unordered"`

	// Verify reads the output back and checks it against the schema.
	Verify bool `json:"verify"`
}

// NewServer initializes a new Fiber instance with the generation routes.
func NewServer(opts ServerOptions) *Server {
	if opts.Port == "" {
		opts.Port = "8080"
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		IdleTimeout:  10 * time.Second, // Prevents idle connections
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // Generation responds when the run ends
		Prefork:      opts.Prefork,
	})

	// Middleware
	app.Use(recover.New()) // Auto-recovers from panics
	app.Use(logger.New())  // Logs all requests

	s := &Server{app: app, opts: opts, log: opts.Logger}

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "datahobbit API",
			"version": version.Version,
			"build":   version.BuildDate,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	app.Get("/types", s.handleTypes)
	app.Post("/generate", s.handleGenerate)

	return s
}

// GetApp returns the underlying Fiber app.
func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) handleTypes(c *fiber.Ctx) error {
	types := make([]fiber.Map, 0, len(generator.Tags()))
	for _, tag := range generator.Tags() {
		dt, err := tag.ArrowType()
		if err != nil {
			return err
		}
		types = append(types, fiber.Map{"type": tag, "arrow_type": dt.String()})
	}
	return c.JSON(types)
}

func (s *Server) handleGenerate(c *fiber.Ctx) error {
	var body GenerateRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}

	req, err := s.toRequest(body)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.log.Info("Generation requested",
		zap.String("output", req.Output),
		zap.String("format", req.Format),
		zap.Int64("records", req.Records))

	report, err := generate.Run(c.UserContext(), req, generate.WithLogger(s.log))
	if err != nil {
		s.log.Error("Generation failed", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error":  err.Error(),
			"report": report,
		})
	}

	if body.Verify {
		if err := s.verify(c.UserContext(), req, report); err != nil {
			s.log.Error("Validation could not run", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":  err.Error(),
				"report": report,
			})
		}
		if !report.Validation.Passed {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(report)
		}
	}
	return c.JSON(report)
}

func (s *Server) verify(ctx context.Context, req generate.Request, report *metrics.RunReport) error {
	sc := req.Schema
	if sc == nil {
		loaded, err := schema.Load(req.SchemaPath)
		if err != nil {
			return err
		}
		sc = loaded
	}
	return validation.NewValidator(sc, s.log).ValidateRun(ctx, report)
}

func (s *Server) toRequest(body GenerateRequest) (generate.Request, error) {
	if s.opts.MaxRecords > 0 && body.Records > s.opts.MaxRecords {
		return generate.Request{}, fmt.Errorf("records exceeds the limit of %d", s.opts.MaxRecords)
	}

	output, err := s.resolve(body.Output)
	if err != nil {
		return generate.Request{}, fmt.Errorf("output: %w", err)
	}

	req := generate.Request{
		Schema:      body.Schema,
		Output:      output,
		Format:      body.Format,
		Records:     body.Records,
		MaxFileSize: body.MaxFileSize,
		BatchSize:   body.BatchSize,
		ChunkSize:   body.ChunkSize,
		Workers:     body.Workers,
		Seed:        body.Seed,
		Compression: body.Compression,
		Unordered:   body.Unordered,
	}
	if body.Schema == nil {
		if req.SchemaPath, err = s.resolve(body.SchemaPath); err != nil {
			return generate.Request{}, fmt.Errorf("schema_path: %w", err)
		}
	}
	if body.Delimiter != "" {
		if req.Delimiter, err = generate.ParseDelimiter(body.Delimiter); err != nil {
			return generate.Request{}, err
		}
	}
	return req, req.Validate()
}

// resolve maps a request path into the output directory.
func (s *Server) resolve(p string) (string, error) {
	if p == "" {
		return "", errors.New("path is required")
	}
	if !filepath.IsLocal(p) {
		return "", fmt.Errorf("path %q must be relative and stay inside the output directory", p)
	}
	return filepath.Join(s.opts.OutputDir, p), nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, schema.ErrSchemaLoad),
		errors.Is(err, schema.ErrUnsupportedType),
		errors.Is(err, generate.ErrInvalidDelimiter):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// Start runs the Fiber server and handles graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS termination signals (graceful shutdown)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	defer signal.Stop(quit)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("datahobbit API is running", zap.String("port", s.opts.Port))
		errCh <- s.app.Listen(":" + s.opts.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	s.log.Info("Received shutdown signal, stopping server")

	// Create a timeout context for the shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("error shutting down: %w", err)
	}

	s.log.Info("Server shutdown successfully")
	return nil
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
