package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelDeliveryEvents = "voucher_delivery_events"
)

// 交付阶段常量
const (
	StepRendering = "rendering"
	StepUploading = "uploading"
	StepMailing   = "mailing"
	StepDone      = "done"
	StepFailed    = "failed"
)

// 阶段对应的消息
var StepMessages = map[string]string{
	StepRendering: "正在生成礼品卡证书",
	StepUploading: "正在上传证书",
	StepMailing:   "正在发送邮件",
	StepDone:      "交付完成",
	StepFailed:    "交付失败",
}

// DeliveryEvent worker 的交付进度事件，API 进程订阅后
// 推送给在线的后台管理员。
type DeliveryEvent struct {
	Type      string `json:"type"`
	VoucherID int64  `json:"voucher_id"`
	StudioID  int64  `json:"studio_id"`
	Code      string `json:"code"`
	Step      string `json:"step"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishDelivery 发布交付事件
func (p *Publisher) PublishDelivery(ctx context.Context, event *DeliveryEvent) error {
	event.Type = "delivery_progress"

	if event.Message == "" && event.Step != "" {
		if message, ok := StepMessages[event.Step]; ok {
			event.Message = message
		}
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery event: %w", err)
	}

	return p.client.Publish(ctx, ChannelDeliveryEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅交付事件
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*DeliveryEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelDeliveryEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event DeliveryEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
