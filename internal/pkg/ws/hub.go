package ws

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
)

// AdminKeyPrefix 后台连接的键前缀，广播后台事件时按它过滤
const AdminKeyPrefix = "admin:"

// AdminKey 后台连接的会话键
func AdminKey(adminID int64) string {
	return AdminKeyPrefix + strconv.FormatInt(adminID, 10)
}

// Hub 以会话键管理连接。聊天连接的键是访客会话 ID，
// 后台连接的键是 "admin:<id>"，一个键可以有多条连接（多标签页、重连）。
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Key  string
	Conn *websocket.Conn
	mu   sync.Mutex // 写锁，防止并发写入
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.Key] == nil {
		h.clients[client.Key] = make(map[*Client]struct{})
	}
	h.clients[client.Key][client] = struct{}{}

	log.Printf("Session %s connected, session_conns: %d", client.Key, len(h.clients[client.Key]))
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.Key]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.Key)
		}
	}
	log.Printf("Session %s disconnected", client.Key)
}

// Send 向指定会话的所有连接发送消息
func (h *Hub) Send(key string, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns, ok := h.clients[key]
	if !ok {
		h.mu.RUnlock()
		return nil
	}
	// 复制一份引用，避免长时间持锁
	clients := make([]*Client, 0, len(conns))
	for c := range conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.mu.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			log.Printf("Send write error for session %s: %v", key, err)
		}
	}
	return nil
}

// Broadcast 向键名带指定前缀的所有会话发送消息（如全部后台连接）
func (h *Hub) Broadcast(prefix string, msg *Message) {
	h.mu.RLock()
	keys := make([]string, 0, len(h.clients))
	for key := range h.clients {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	h.mu.RUnlock()

	for _, key := range keys {
		_ = h.Send(key, msg)
	}
}

// IsOnline 检查会话是否在线
func (h *Hub) IsOnline(key string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns, ok := h.clients[key]
	return ok && len(conns) > 0
}

// ConnectionCount 获取在线连接数
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
