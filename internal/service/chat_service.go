package service

import (
	"strings"
	"sync"
	"time"

	"github.com/qs3c/voucher_go_server/config"
)

// ChatMessage 聊天窗的一条消息
type ChatMessage struct {
	Role    string    `json:"role"` // visitor / bot
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// ChatService 店面聊天窗的关键词应答。规则来自配置，
// 会话历史存内存，进程重启即丢（访客会话本来就是短命的）。
type ChatService struct {
	cfg *config.ChatConfig

	mu       sync.Mutex
	sessions map[string][]ChatMessage
}

func NewChatService(cfg *config.ChatConfig) *ChatService {
	return &ChatService{
		cfg:      cfg,
		sessions: make(map[string][]ChatMessage),
	}
}

// Reply 记录访客消息并按关键词规则生成回复。
// 命中第一条规则即返回，都未命中用默认回复。
func (s *ChatService) Reply(sessionID, content string) string {
	reply := s.matchReply(content)

	now := time.Now()
	s.mu.Lock()
	history := s.sessions[sessionID]
	history = append(history,
		ChatMessage{Role: "visitor", Content: content, SentAt: now},
		ChatMessage{Role: "bot", Content: reply, SentAt: now},
	)
	if max := s.cfg.MaxHistory; max > 0 && len(history) > max {
		history = history[len(history)-max:]
	}
	s.sessions[sessionID] = history
	s.mu.Unlock()

	return reply
}

// History 返回会话历史的副本
func (s *ChatService) History(sessionID string) []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.sessions[sessionID]
	out := make([]ChatMessage, len(history))
	copy(out, history)
	return out
}

// EndSession 清掉一个会话（连接关闭时调用）
func (s *ChatService) EndSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *ChatService) matchReply(content string) string {
	text := strings.ToLower(content)
	for _, rule := range s.cfg.Rules {
		for _, keyword := range rule.Keywords {
			if keyword != "" && strings.Contains(text, strings.ToLower(keyword)) {
				return rule.Reply
			}
		}
	}
	return s.cfg.DefaultReply
}
