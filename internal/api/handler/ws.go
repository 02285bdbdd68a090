package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/qs3c/voucher_go_server/internal/pkg/jwt"
	"github.com/qs3c/voucher_go_server/internal/pkg/ws"
	"github.com/qs3c/voucher_go_server/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 跨域控制交给 CORS 中间件
	},
}

type WSHandler struct {
	hub         *ws.Hub
	chatService *service.ChatService
	jwtSecret   string
}

func NewWSHandler(hub *ws.Hub, chatService *service.ChatService, jwtSecret string) *WSHandler {
	return &WSHandler{
		hub:         hub,
		chatService: chatService,
		jwtSecret:   jwtSecret,
	}
}

type chatInbound struct {
	Content string `json:"content"`
}

// Chat 店面聊天窗
// GET /api/chat/ws?session=xxx
//
// 访客无需登录，session 由前端保存；不传则服务端生成并在首条消息回传。
func (h *WSHandler) Chat(c *gin.Context) {
	session := c.Query("session")
	if session == "" {
		session = newSessionID()
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("聊天连接升级失败: %v", err)
		return
	}

	key := "chat:" + session
	client := &ws.Client{Key: key, Conn: conn}
	h.hub.Register(client)
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	// 回传会话标识与历史，断线重连能续上
	_ = h.hub.Send(key, &ws.Message{Type: "session", Data: gin.H{
		"session": session,
		"history": h.chatService.History(session),
	}})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var in chatInbound
		if err := json.Unmarshal(data, &in); err != nil || in.Content == "" {
			continue
		}

		reply := h.chatService.Reply(session, in.Content)
		_ = h.hub.Send(key, &ws.Message{Type: "chat_reply", Data: gin.H{
			"content": reply,
		}})
	}
}

// AdminEvents 后台事件推送（证书交付进度）
// GET /api/admin/ws?token=xxx
//
// websocket 握手带不了 Authorization 头，token 走查询参数。
func (h *WSHandler) AdminEvents(c *gin.Context) {
	claims, err := jwt.ParseToken(c.Query("token"), h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "无效的认证信息"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("后台连接升级失败: %v", err)
		return
	}

	client := &ws.Client{Key: ws.AdminKey(claims.AdminID), Conn: conn}
	h.hub.Register(client)
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	// 推送是单向的，读循环只为感知断开
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func newSessionID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
