package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"irufoodflow/backend/config"
)

// 订单事件类型
const (
	OrderCreated  = "created"
	OrderApproved = "approved"
	OrderReceived = "received"
	OrderReverted = "reverted"
	OrderMerged   = "merged"
	OrderDeleted  = "deleted"
)

// OrderEvent 订单事件消息体
type OrderEvent struct {
	Event     string    `json:"event"`
	OrderID   string    `json:"order_id"`
	TeacherID string    `json:"teacher_id"`
	CourseID  string    `json:"course_id"`
	Week      string    `json:"week"`
	Status    string    `json:"status"`
	Total     string    `json:"total"`
	At        time.Time `json:"at"`
}

// Publisher 订单事件发布接口
// 发布失败只记录日志，不影响业务请求
type Publisher interface {
	PublishOrder(ctx context.Context, evt OrderEvent)
	Close() error
}

// NewPublisher 根据配置返回 Kafka 发布器或空实现
func NewPublisher(cfg *config.KafkaConfig, logger *zap.Logger) Publisher {
	if !cfg.Enabled {
		return NopPublisher{}
	}

	// 异步写入：请求路径只负责入队，投递结果由 Completion 回调记录
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{}, // 同一订单的事件落到同一分区，保证顺序
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		Async:                  true,
		MaxAttempts:            3,
		BatchTimeout:           50 * time.Millisecond,
		Completion:             completionLogger(logger),
	}

	logger.Info("订单事件发布已启用",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)

	return &kafkaPublisher{writer: w, logger: logger}
}

type kafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func (p *kafkaPublisher) PublishOrder(ctx context.Context, evt OrderEvent) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("序列化订单事件失败", zap.String("order_id", evt.OrderID), zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(MessageKey(evt)),
		Value: payload,
	}
	// Async 模式下这里只会返回入队错误
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("订单事件入队失败",
			zap.String("order_id", evt.OrderID),
			zap.String("event", evt.Event),
			zap.Error(err),
		)
	}
}

// completionLogger 记录异步投递失败的消息
func completionLogger(logger *zap.Logger) func([]kafka.Message, error) {
	return func(messages []kafka.Message, err error) {
		if err == nil {
			return
		}
		for _, m := range messages {
			logger.Warn("发布订单事件失败", zap.String("key", string(m.Key)), zap.Error(err))
		}
	}
}

// Close 刷出队列中尚未投递的消息
func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// MessageKey 消息键格式 order.<event>.<order_id>
func MessageKey(evt OrderEvent) string {
	return fmt.Sprintf("order.%s.%s", evt.Event, evt.OrderID)
}

// NopPublisher 未启用 Kafka 时的空实现
type NopPublisher struct{}

func (NopPublisher) PublishOrder(context.Context, OrderEvent) {}

func (NopPublisher) Close() error { return nil }
