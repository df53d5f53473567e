package client

import (
	"context"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type RabbitClient interface {
	PublishMessage(ctx context.Context, routingKey string, message []byte) error
	Close() error
}

type rabbitClient struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	mutex        sync.RWMutex
	closed       bool
}

func NewRabbitMQClient(connectionStr, exchangeName string) (RabbitClient, error) {
	conn, ch, err := dialExchange(connectionStr, exchangeName)
	if err != nil {
		return nil, err
	}

	client := &rabbitClient{
		conn:         conn,
		channel:      ch,
		exchangeName: exchangeName,
	}

	go client.monitorConnection(connectionStr)

	return client, nil
}

func dialExchange(connectionStr, exchangeName string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(connectionStr)
	if err != nil {
		return nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, err
	}

	return conn, ch, nil
}

func (c *rabbitClient) monitorConnection(connectionStr string) {
	c.mutex.RLock()
	connCloseChan := c.conn.NotifyClose(make(chan *amqp.Error, 1))
	c.mutex.RUnlock()

	err, ok := <-connCloseChan
	if !ok || c.isClosed() {
		return
	}
	logrus.Errorf("RabbitMQ connection closed: %v", err)

	for !c.isClosed() {
		time.Sleep(5 * time.Second)

		logrus.Info("Attempting to reconnect to RabbitMQ...")
		conn, ch, err := dialExchange(connectionStr, c.exchangeName)
		if err != nil {
			logrus.Errorf("Failed to reconnect to RabbitMQ: %v", err)
			continue
		}

		c.mutex.Lock()
		oldConn := c.conn
		oldChannel := c.channel
		c.conn = conn
		c.channel = ch
		c.mutex.Unlock()

		if oldChannel != nil {
			oldChannel.Close()
		}
		if oldConn != nil {
			oldConn.Close()
		}

		go c.monitorConnection(connectionStr)
		return
	}
}

func (c *rabbitClient) isClosed() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.closed
}

func (c *rabbitClient) PublishMessage(ctx context.Context, routingKey string, message []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if c.closed {
		return errors.New("rabbitmq client closed")
	}

	return c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         message,
		})
}

func (c *rabbitClient) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.closed = true
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// noopRabbitClient drops every message. It is used when no broker is configured.
type noopRabbitClient struct{}

func NewNoopRabbitClient() RabbitClient {
	return noopRabbitClient{}
}

func (noopRabbitClient) PublishMessage(context.Context, string, []byte) error {
	return nil
}

func (noopRabbitClient) Close() error {
	return nil
}
