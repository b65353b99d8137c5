//go:build integration

package analytics_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"moreminutes/internal/analytics"
	"moreminutes/pkg/testutil/containers"
)

type PublisherSuite struct {
	suite.Suite
	redpanda  *containers.RedpandaContainer
	publisher *analytics.Publisher
}

func TestPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher, err := analytics.New([]string{s.redpanda.Broker}, logger)
	s.Require().NoError(err)
	s.Require().NotNil(publisher)
	s.publisher = publisher
}

func (s *PublisherSuite) TearDownSuite() {
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.redpanda != nil {
		_ = s.redpanda.Container.Terminate(context.Background())
	}
}

func (s *PublisherSuite) TestPublishRoundTrip() {
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Millisecond)

	s.publisher.Publish(ctx, analytics.Event{
		Name:   analytics.EventPredictionCalculated,
		UserID: "user-42",
		At:     at,
		Props:  map[string]any{"identity": "user"},
	})

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(analytics.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().NotEmpty(records)
	s.Equal("user-42", string(records[0].Key))

	var got analytics.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(analytics.EventPredictionCalculated, got.Name)
	s.Equal("user-42", got.UserID)
	s.Equal(at, got.At)
	s.Equal("user", got.Props["identity"])
}

func (s *PublisherSuite) TestNilPublisherIsNoOp() {
	var nilPublisher *analytics.Publisher
	nilPublisher.Publish(context.Background(), analytics.Event{Name: "ignored"})
	nilPublisher.Close()
}
