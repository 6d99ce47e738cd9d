package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/hulame/rental-service/internal/config"
	"github.com/hulame/rental-service/internal/observability"
	"github.com/hulame/rental-service/internal/persistence"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				if metrics != nil {
					metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				}
				response := fiber.Map{"error": fiber.Map{
					"code":    domainErr.Code,
					"message": domainErr.Message,
				}}
				if len(domainErr.Details) > 0 {
					response["error"].(fiber.Map)["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(response)
				err = nil
			}
		}()
		return c.Next()
	}
}

// toDomainError also covers fiber's own errors such as 404 for unknown routes.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := apperrors.CodeInternal
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = apperrors.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity, fiber.StatusRequestEntityTooLarge:
			code = apperrors.CodeValidation
		case fiber.StatusMethodNotAllowed, fiber.StatusUpgradeRequired:
			code = apperrors.CodeInvalidOperation
		case fiber.StatusTooManyRequests:
			code = apperrors.CodeRateLimited
		}
		return apperrors.NewDomainError(code, fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

// NewRateLimiter builds a per-IP limiter backed by Redis when available and
// process memory otherwise. It returns nil when rate limiting is disabled.
func NewRateLimiter(cfg config.RateLimitConfig, redis *persistence.Redis, logger *zap.Logger) (*limiter.Limiter, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, err
	}
	if redis != nil && redis.Client != nil {
		store, err := redisstore.NewStoreWithOptions(redis.Client, limiter.StoreOptions{
			Prefix:   "rental_rate_limit",
			MaxRetry: 3,
		})
		if err == nil {
			return limiter.New(store, rate), nil
		}
		logger.Warn("redis rate limit store unavailable, using memory store", zap.Error(err))
	}
	return limiter.New(memorystore.NewStore(), rate), nil
}

// RateLimit rejects clients that exceeded the limiter's rate. A nil limiter
// lets every request through.
func RateLimit(instance *limiter.Limiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if instance == nil {
			return c.Next()
		}
		ip := c.IP()
		lctx, err := instance.Get(c.UserContext(), ip)
		if err != nil {
			// Fail open.
			logger.Error("rate limit check failed", zap.String("ip", ip), zap.Error(err))
			return c.Next()
		}
		if lctx.Reached {
			logger.Warn("rate limit exceeded",
				zap.String("ip", ip),
				zap.Int64("limit", lctx.Limit),
				zap.Int64("remaining", lctx.Remaining))
			return apperrors.NewRateLimited("too many requests, please try again later")
		}
		return c.Next()
	}
}
