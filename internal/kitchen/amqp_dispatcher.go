package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	Exchange     = "orders_topic"
	KitchenQueue = "kitchen.q"

	publishTimeout = 10 * time.Second
)

// amqp.Channelのうち使う部分
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// 接続1本ぶん。closedは接続が切れたら通知される
type amqpSession struct {
	ch     publisher
	closed <-chan *amqp.Error
	close  func() error
}

// RabbitMQのorders_topicへ伝票を流す。
// 接続が切れたら次のDispatchで張り直す
type AMQPDispatcher struct {
	mu       sync.Mutex
	dial     func() (*amqpSession, error)
	sess     *amqpSession
	shutdown bool
	log      *slog.Logger
}

// 起動時に一度つないでおく（失敗したら起動しない）
func DialAMQP(url string, log *slog.Logger) (*AMQPDispatcher, error) {
	d := newAMQPDispatcher(dialer(url), log)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.connect(); err != nil {
		return nil, err
	}
	return d, nil
}

func newAMQPDispatcher(dial func() (*amqpSession, error), log *slog.Logger) *AMQPDispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &AMQPDispatcher{dial: dial, log: log}
}

func dialer(url string) func() (*amqpSession, error) {
	return func() (*amqpSession, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, fmt.Errorf("amqp dial: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("amqp channel: %w", err)
		}
		if err := declare(ch); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("amqp declare: %w", err)
		}

		return &amqpSession{
			ch:     ch,
			closed: conn.NotifyClose(make(chan *amqp.Error, 1)),
			close: func() error {
				_ = ch.Close()
				return conn.Close()
			},
		}, nil
	}
}

// mu保持中に呼ぶ
func (d *AMQPDispatcher) connect() error {
	sess, err := d.dial()
	if err != nil {
		return err
	}
	d.sess = sess
	if sess.closed != nil {
		go d.watch(sess)
	}
	return nil
}

// ブローカー再起動などで切れたら接続を捨てる
func (d *AMQPDispatcher) watch(sess *amqpSession) {
	amqpErr, ok := <-sess.closed

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess != sess {
		return
	}
	d.sess = nil

	if ok && amqpErr != nil {
		d.log.Warn("amqp connection closed",
			slog.String("action", "amqp_connection_closed"),
			slog.String("reason", amqpErr.Reason),
			slog.Int("code", amqpErr.Code),
		)
	}
}

// 今の接続を返す（無ければ張り直す）
func (d *AMQPDispatcher) session() (*amqpSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.shutdown {
		return nil, errors.New("amqp dispatcher closed")
	}
	if d.sess == nil {
		if err := d.connect(); err != nil {
			return nil, err
		}
		d.log.Info("amqp reconnected", slog.String("action", "amqp_reconnected"))
	}
	return d.sess, nil
}

// 送れなかった接続は捨て、次回張り直す
func (d *AMQPDispatcher) drop(sess *amqpSession) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sess != sess {
		return
	}
	d.sess = nil
	if sess.close != nil {
		_ = sess.close()
	}
}

// 厨房キューをkitchen.#で束ねる
func declare(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(KitchenQueue, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.QueueBind(KitchenQueue, "kitchen.#", Exchange, false, nil)
}

// kitchen.<種別>.<卓 or takeaway>
func RoutingKey(t Ticket) string {
	where := "takeaway"
	if t.TableNo != "" {
		where = "table" + t.TableNo
	}
	return fmt.Sprintf("kitchen.%s.%s", t.OrderType, where)
}

func (d *AMQPDispatcher) Dispatch(ctx context.Context, t Ticket) error {
	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}

	sess, err := d.session()
	if err != nil {
		d.log.ErrorContext(ctx, "amqp redial failed",
			slog.String("action", "amqp_redial_failed"),
			slog.Any("error", err),
		)
		return fmt.Errorf("amqp connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	key := RoutingKey(t)
	err = sess.ch.PublishWithContext(ctx, Exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    t.OrderID,
		Body:         body,
	})
	if err != nil {
		d.drop(sess)
		d.log.ErrorContext(ctx, "kitchen ticket publish failed",
			slog.String("action", "kitchen_ticket_publish_failed"),
			slog.String("routing_key", key),
			slog.Any("error", err),
		)
		return fmt.Errorf("publish ticket: %w", err)
	}
	return nil
}

func (d *AMQPDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.shutdown = true
	sess := d.sess
	d.sess = nil
	if sess == nil || sess.close == nil {
		return nil
	}
	return sess.close()
}
