package client

import (
	"context"

	"github.com/krakosik/symposium/internal/dto"
	"github.com/sirupsen/logrus"
)

// UploadURLPrefix is the path local uploads are served under.
const UploadURLPrefix = "/uploads"

type Clients interface {
	AuthClient() AuthClient
	RabbitMQClient() RabbitClient
	FileStore() FileStore
	Close() error
}

type clients struct {
	authClient   AuthClient
	rabbitClient RabbitClient
	fileStore    FileStore
}

func (c clients) AuthClient() AuthClient {
	return c.authClient
}

func (c clients) RabbitMQClient() RabbitClient {
	return c.rabbitClient
}

func (c clients) FileStore() FileStore {
	return c.fileStore
}

func (c clients) Close() error {
	if err := c.rabbitClient.Close(); err != nil {
		logrus.Errorf("Error closing RabbitMQ client: %v", err)
	}
	return c.fileStore.Close()
}

func NewClients(cfg dto.Config) Clients {
	authClient := NewJWTAuthClient(cfg.JWTSecret, cfg.TokenTTL)

	var rabbitClient RabbitClient
	if cfg.RabbitMQURL == "" {
		logrus.Info("RABBITMQ_URL not set, vote events will not be published")
		rabbitClient = NewNoopRabbitClient()
	} else {
		var err error
		rabbitClient, err = NewRabbitMQClient(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			logrus.Panic(err)
		}
	}

	var fileStore FileStore
	var err error
	switch cfg.UploadBackend {
	case dto.UploadBackendGCS:
		fileStore, err = NewGCSFileStore(context.Background(), cfg.GCSBucket, cfg.GCSCredentialsFile)
	default:
		fileStore, err = NewLocalFileStore(cfg.UploadDir, UploadURLPrefix)
	}
	if err != nil {
		logrus.Panic(err)
	}

	return &clients{
		authClient:   authClient,
		rabbitClient: rabbitClient,
		fileStore:    fileStore,
	}
}
