package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/krakosik/symposium/internal/client"
	"github.com/krakosik/symposium/internal/dto"
	"github.com/krakosik/symposium/internal/model"
	"github.com/krakosik/symposium/internal/repository"
	"github.com/krakosik/symposium/internal/service"
	"github.com/krakosik/symposium/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	routingKey string
	body       []byte
}

type recordingRabbitClient struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (r *recordingRabbitClient) PublishMessage(_ context.Context, routingKey string, message []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, publishedMessage{routingKey: routingKey, body: message})
	return nil
}

func (r *recordingRabbitClient) Close() error {
	return nil
}

func (r *recordingRabbitClient) events(t *testing.T) []service.VoteEvent {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]service.VoteEvent, 0, len(r.messages))
	for _, m := range r.messages {
		var event service.VoteEvent
		require.NoError(t, json.Unmarshal(m.body, &event))
		require.Equal(t, m.routingKey, event.Type)
		events = append(events, event)
	}
	return events
}

type testClients struct {
	client.Clients
	rabbit *recordingRabbitClient
}

func (c testClients) RabbitMQClient() client.RabbitClient {
	return c.rabbit
}

type fixture struct {
	cfg      dto.Config
	repos    repository.Repositories
	services service.Services
	rabbit   *recordingRabbitClient
	registry *prometheus.Registry
}

func setup(t *testing.T) fixture {
	t.Helper()

	cfg := testutil.Config(t)
	repos := testutil.SetupRepositories(t)
	base := client.NewClients(cfg)
	t.Cleanup(func() { _ = base.Close() })

	rabbit := &recordingRabbitClient{}
	registry := prometheus.NewRegistry()
	return fixture{
		cfg:      cfg,
		repos:    repos,
		services: service.NewServices(repos, cfg, testClients{Clients: base, rabbit: rabbit}, registry),
		rabbit:   rabbit,
		registry: registry,
	}
}

func (f fixture) admin(t *testing.T) model.User {
	t.Helper()
	return testutil.CreateUser(t, f.repos, "root@x.edu", "Root", nil, true)
}

func (f fixture) submission(t *testing.T, title string) model.Submission {
	t.Helper()

	author, err := f.repos.User().GetByEmail(context.Background(), "author@x.edu")
	if err != nil {
		author = testutil.CreateUser(t, f.repos, "author@x.edu", "Author", testutil.Ptr("A1"), false)
	}
	return testutil.CreateSubmission(t, f.repos, author, title)
}

func (f fixture) voteCount(t *testing.T, submissionID string) int {
	t.Helper()

	submission, err := f.repos.Submission().GetByID(context.Background(), submissionID)
	require.NoError(t, err)
	return submission.VoteCount
}
