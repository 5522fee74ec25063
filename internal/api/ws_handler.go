package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"resumeBuilder/internal/tasks"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 5 * time.Second
)

// WsHandler 把某份文档的导出通知从 Redis Pub/Sub 转发到 WebSocket。
type WsHandler struct {
	subscriber     redisSubscriber
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewWsHandler 构造 WebSocket 处理器。subscriber 为 nil 时连接请求返回 503。
func NewWsHandler(subscriber redisSubscriber, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	h := &WsHandler{
		subscriber:     subscriber,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *WsHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.allowedOrigins) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// HandleConnection 升级连接，订阅 document_id 对应的通知频道并启动读写循环。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	if h.subscriber == nil {
		Unavailable(c, "notifications are not configured")
		return
	}
	documentID := strings.TrimSpace(c.Query("document_id"))
	if documentID == "" {
		BadRequest(c, "document_id is required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	log := h.logger.With(
		slog.String("client_ip", c.ClientIP()),
		slog.String("document_id", documentID),
	)

	errCh := make(chan error, 2)
	go h.readLoop(conn, errCh, cancel)
	go h.subscribeLoop(ctx, conn, tasks.NotifyChannel(documentID), errCh, cancel, log)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			log.Info("websocket connection closed", slog.Any("error", err))
		} else {
			log.Info("websocket connection closed")
		}
	}
}

// readLoop 丢弃客户端消息，只用于发现断开。
func (h *WsHandler) readLoop(conn *websocket.Conn, errCh chan<- error, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				errCh <- nil
				return
			}
			errCh <- fmt.Errorf("read message: %w", err)
			return
		}
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(wsWriteTimeout)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}

func (h *WsHandler) subscribeLoop(
	ctx context.Context,
	conn *websocket.Conn,
	channel string,
	errCh chan<- error,
	cancel context.CancelFunc,
	log *slog.Logger,
) {
	defer cancel()
	pubsub := h.subscriber.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		writeClose(conn, websocket.CloseInternalServerErr, "subscribe failed")
		errCh <- fmt.Errorf("subscribe %q: %w", channel, err)
		return
	}
	log.Info("subscribed to redis channel", slog.String("channel", channel))

	ch := pubsub.Channel()
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				errCh <- errors.New("pubsub channel closed")
				return
			}

			log.Info("forwarding message to client", slog.String("channel", channel))
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				errCh <- fmt.Errorf("write message: %w", err)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				errCh <- fmt.Errorf("write ping: %w", err)
				return
			}
		}
	}
}
