package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/hulame/rental-service/internal/api/dto"
	"github.com/hulame/rental-service/internal/persistence"
	"github.com/hulame/rental-service/internal/service"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

const wsUserKey = "ws_user_id"

// NotificationsHandler serves the notification inbox and its live stream.
type NotificationsHandler struct {
	service *service.NotificationService
	redis   *persistence.Redis
	logger  *zap.Logger
}

// NewNotificationsHandler constructs handler. redis may be nil, which
// disables the websocket stream.
func NewNotificationsHandler(notificationService *service.NotificationService, redis *persistence.Redis, logger *zap.Logger) *NotificationsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationsHandler{service: notificationService, redis: redis, logger: logger}
}

// List GET /notifications?unread=true.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	items, err := h.service.List(c.UserContext(), principal.UserID(), c.QueryBool("unread"), limit, offset)
	if err != nil {
		return err
	}
	resp := make([]dto.NotificationResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.NewNotificationResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UnreadCount GET /notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	count, err := h.service.UnreadCount(c.UserContext(), principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"unread_count": count}})
}

// MarkRead POST /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkRead(c.UserContext(), principal.UserID(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "read": true}})
}

// MarkAllRead POST /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	updated, err := h.service.MarkAllRead(c.UserContext(), principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": updated}})
}

// Upgrade guards GET /ws/notifications before the websocket handshake.
func (h *NotificationsHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if h.redis == nil {
		return apperrors.NewDomainError("DEPENDENCY_UNAVAILABLE", "realtime notifications are disabled", fiber.StatusServiceUnavailable, nil)
	}
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	c.Locals(wsUserKey, principal.UserID())
	return c.Next()
}

// Stream relays the user's Redis channel to the websocket until either side closes.
func (h *NotificationsHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals(wsUserKey).(string)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub, err := h.redis.Subscribe(ctx, h.service.ChannelFor(userID))
		if err != nil {
			h.logger.Warn("subscribe notifications", zap.String("user_id", userID), zap.Error(err))
			return
		}
		defer sub.Close()

		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
					h.logger.Debug("websocket write", zap.String("user_id", userID), zap.Error(err))
					return
				}
			}
		}
	})
}
