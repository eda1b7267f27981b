package notify

import (
	"blogCMS/internal/config"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// InviteEmailQueue is consumed by the mail worker.
const InviteEmailQueue = "invite.email"

// InviteEmailEvent is the message body published to InviteEmailQueue.
type InviteEmailEvent struct {
	To          string    `json:"to"`
	Code        string    `json:"code"`
	InviterName string    `json:"inviterName"`
	InviteURL   string    `json:"inviteUrl"`
	SentAt      time.Time `json:"sentAt"`
}

// AMQPNotifier hands invite e-mails to a worker through RabbitMQ.
// Delivery counts as successful once the broker confirms the message.
type AMQPNotifier struct {
	url     string
	appURL  string
	timeout time.Duration
	now     func() time.Time
}

func NewAMQPNotifier(cfg *config.Config) *AMQPNotifier {
	return &AMQPNotifier{
		url:     cfg.RabbitMQURL,
		appURL:  cfg.AppURL,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

func (n *AMQPNotifier) event(to, code, inviterName string) InviteEmailEvent {
	return InviteEmailEvent{
		To:          to,
		Code:        code,
		InviterName: inviterName,
		InviteURL:   InviteURL(n.appURL, code),
		SentAt:      n.now().UTC(),
	}
}

func (n *AMQPNotifier) SendInviteEmail(ctx context.Context, to, code, inviterName string) error {
	body, err := json.Marshal(n.event(to, code, inviterName))
	if err != nil {
		return fmt.Errorf("ошибка сериализации события: %w", err)
	}

	conn, err := amqp.Dial(n.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return fmt.Errorf("ошибка подключения к RabbitMQ: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("ошибка открытия канала: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(InviteEmailQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("ошибка объявления очереди: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("ошибка включения подтверждений: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	confirmation, err := ch.PublishWithDeferredConfirmWithContext(ctx, "", InviteEmailQueue, false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    n.now().UTC(),
			Body:         body,
		})
	if err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return fmt.Errorf("ошибка публикации: %w", err)
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("ошибка ожидания подтверждения: %w", err)
	}
	if !acked {
		return errors.New("брокер отклонил сообщение")
	}

	return nil
}
