package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/config"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/middlewares"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/models"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/utils"
	"bitbucket.org/mmdatafocus/invoice_validation_backend/validation"
)

const defaultPort = "8080"

var tracer = otel.Tracer("invoice-validation")

// RateLimiter is a fixed-window redis rate limiter.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := "ratelimit:" + c.ClientIP()
	ctx := c.Request.Context()

	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		// Rate limiting is best effort; never block traffic on redis trouble.
		c.Next()
		return
	}
	if count == 1 {
		rl.client.Expire(ctx, key, rl.window)
	}
	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}
	c.Next()
}

func getRedisClient(redisAddress string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})
	return client
}

type fieldRecommendRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=100"`
	TableName string `json:"table_name" binding:"required,oneof=organizations products"`
}

type addressRecommendRequest struct {
	Address string `json:"address" binding:"required,min=1,max=255"`
}

type gstCheckRequest struct {
	GstNo string `json:"gst_no" binding:"required"`
}

func bindingError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

// fieldRecommendHandler recommends similar names from the requested
// master-data table, ranked by trigram similarity.
func fieldRecommendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req fieldRecommendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}

		ctx := c.Request.Context()
		var recommendations any
		var err error
		if req.TableName == validation.TableProducts {
			recommendations, err = models.RankProductsBySimilarity(ctx, req.Name, config.SimilarityLimit)
		} else {
			recommendations, err = models.RankOrganizationsBySimilarity(ctx, req.Name, config.SimilarityLimit)
		}
		if err != nil {
			config.LogError(logger, "server.go", "fieldRecommendHandler", "RankBySimilarity", req, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"input_name":      req.Name,
			"table":           req.TableName,
			"recommendations": recommendations,
		})
	}
}

// addressRecommendHandler recommends similar organization addresses.
func addressRecommendHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req addressRecommendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}

		recommendations, err := models.RankOrganizationAddressesBySimilarity(c.Request.Context(), req.Address, config.SimilarityLimit)
		if err != nil {
			config.LogError(logger, "server.go", "addressRecommendHandler", "RankOrganizationAddressesBySimilarity", req, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"input_address":   req.Address,
			"recommendations": recommendations,
		})
	}
}

// gstCheckHandler looks up the master-data record registered under a GST
// number. A miss is a normal outcome, reported as status "not_found".
func gstCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req gstCheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindingError(c, err)
			return
		}

		org, err := models.GetOrganizationByGst(c.Request.Context(), strings.TrimSpace(req.GstNo))
		if err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				c.JSON(http.StatusOK, gin.H{
					"status":           validation.GstStatusNotFound,
					"matching_records": []any{},
				})
				return
			}
			config.LogError(logger, "server.go", "gstCheckHandler", "GetOrganizationByGst", req, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":           validation.GstStatusFound,
			"matching_records": []*models.Organization{org},
		})
	}
}

// validateInvoiceHandler runs the full validation pipeline over one extracted
// invoice and returns the payload annotated in place. Field-level findings are
// a 200; only an unexpected internal failure is a 500 (with no partial
// results).
func validateInvoiceHandler(engine *validation.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var payload models.InvoicePayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			bindingError(c, err)
			return
		}

		ctx, span := tracer.Start(c.Request.Context(), "validate-invoice")
		err := engine.ValidateInvoice(ctx, &payload)
		span.End()
		if err != nil {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			config.LogError(logger, "server.go", "validateInvoiceHandler", "ValidateInvoice correlation_id="+cid, nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.JSON(http.StatusOK, payload)
	}
}

func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, ginErr := range c.Errors {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"module":         "server.go",
				"path":           c.Request.URL.Path,
				"correlation_id": cid,
			}).Error(ginErr.Error())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Shutdown coordination: handle SIGTERM for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP; until DB/redis are ready the readiness
	// middleware returns 503 for app endpoints.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middlewares.ReadinessMiddleware())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "x-correlation-id")
	corsConfig.AddExposeHeaders("Content-Length")

	r.Use(cors.New(corsConfig))

	// Optional rate limiting.
	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		client := getRedisClient(os.Getenv("REDIS_ADDRESS"))
		limit := int64(600)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				limit = n
			}
		}
		windowSec := int64(60)
		if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
				windowSec = n
			}
		}
		rateLimiter := NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
		r.Use(rateLimiter.RateLimitMiddleware)
	}

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	engine := validation.NewEngine(validation.GormMasterData{}, validation.NewSimilarityHTTPClient())

	r.POST("/validate-invoice", validateInvoiceHandler(engine))
	r.POST("/field-recommend", fieldRecommendHandler())
	r.POST("/address-recommend", addressRecommendHandler())
	r.POST("/gst-check", gstCheckHandler())
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	// AutoMigrate can run DDL that blocks tables; allow disabling migrations
	// on startup (run them as a separate job instead).
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	fmt.Println("Server started successfully")

	// Block until shutdown or server error.
	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Drain HTTP requests.
	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}
