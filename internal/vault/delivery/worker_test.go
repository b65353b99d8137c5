package delivery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"moreminutes/internal/vault/metrics"
	"moreminutes/internal/vault/models"
	"moreminutes/internal/vault/store"
)

var testMetrics = metrics.New()

type fakeContacts struct {
	emails   map[uuid.UUID]string
	lastSeen map[uuid.UUID]time.Time
}

func (f *fakeContacts) Contact(_ context.Context, userID uuid.UUID) (string, time.Time, error) {
	email, ok := f.emails[userID]
	if !ok {
		return "", time.Time{}, fmt.Errorf("user not found")
	}
	return email, f.lastSeen[userID], nil
}

type fakeSigner struct{}

func (fakeSigner) SignedURL(_ context.Context, storagePath string, _ time.Duration) (string, error) {
	return "https://storage.example/signed/" + storagePath, nil
}

type sentMail struct {
	to       string
	fileName string
	url      string
}

type fakeMailer struct {
	sent []sentMail
	fail bool
}

func (f *fakeMailer) SendVaultDelivery(_ context.Context, to, fileName, downloadURL string) error {
	if f.fail {
		return fmt.Errorf("mail provider down")
	}
	f.sent = append(f.sent, sentMail{to: to, fileName: fileName, url: downloadURL})
	return nil
}

type DeliveryWorkerSuite struct {
	suite.Suite
	ctx      context.Context
	store    *store.InMemoryStore
	contacts *fakeContacts
	mailer   *fakeMailer
	worker   *Worker
}

func (s *DeliveryWorkerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory()
	s.contacts = &fakeContacts{
		emails:   make(map[uuid.UUID]string),
		lastSeen: make(map[uuid.UUID]time.Time),
	}
	s.mailer = &fakeMailer{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.worker = NewWorker(s.store, s.contacts, fakeSigner{}, s.mailer, nil, testMetrics,
		90*24*time.Hour, time.Hour, logger)
}

func TestDeliveryWorkerSuite(t *testing.T) {
	suite.Run(t, new(DeliveryWorkerSuite))
}

func (s *DeliveryWorkerSuite) addUser(lastSeen time.Time) uuid.UUID {
	userID := uuid.New()
	s.contacts.emails[userID] = userID.String() + "@example.com"
	s.contacts.lastSeen[userID] = lastSeen
	return userID
}

func (s *DeliveryWorkerSuite) addItem(userID uuid.UUID, trigger models.Trigger, triggerValue *time.Time) *models.Item {
	item := &models.Item{
		ID:           uuid.New(),
		UserID:       userID,
		Type:         models.TypeText,
		StoragePath:  fmt.Sprintf("vault/%s/1-letter.txt", userID),
		Trigger:      trigger,
		TriggerValue: triggerValue,
		CreatedAt:    time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(s.T(), s.store.Insert(s.ctx, item))
	return item
}

func datePtr(t time.Time) *time.Time { return &t }

func (s *DeliveryWorkerSuite) TestDeliversPastFixedDate() {
	userID := s.addUser(time.Now().UTC())
	item := s.addItem(userID, models.TriggerFixedDate, datePtr(time.Now().UTC().Add(-24*time.Hour)))

	s.worker.Sweep(s.ctx)

	require.Len(s.T(), s.mailer.sent, 1)
	assert.Equal(s.T(), s.contacts.emails[userID], s.mailer.sent[0].to)
	assert.Equal(s.T(), "1-letter.txt", s.mailer.sent[0].fileName)
	assert.Contains(s.T(), s.mailer.sent[0].url, item.StoragePath)

	stored, err := s.store.Get(s.ctx, item.ID, userID)
	require.NoError(s.T(), err)
	assert.True(s.T(), stored.Delivered)
}

func (s *DeliveryWorkerSuite) TestSkipsFutureFixedDate() {
	userID := s.addUser(time.Now().UTC())
	s.addItem(userID, models.TriggerFixedDate, datePtr(time.Now().UTC().Add(24*time.Hour)))

	s.worker.Sweep(s.ctx)

	assert.Empty(s.T(), s.mailer.sent)
}

func (s *DeliveryWorkerSuite) TestDeliversAfterInactivityWindow() {
	quietUser := s.addUser(time.Now().UTC().Add(-100 * 24 * time.Hour))
	activeUser := s.addUser(time.Now().UTC().Add(-time.Hour))
	quietItem := s.addItem(quietUser, models.TriggerInactivity, nil)
	s.addItem(activeUser, models.TriggerInactivity, nil)

	s.worker.Sweep(s.ctx)

	require.Len(s.T(), s.mailer.sent, 1)
	assert.Equal(s.T(), s.contacts.emails[quietUser], s.mailer.sent[0].to)

	stored, err := s.store.Get(s.ctx, quietItem.ID, quietUser)
	require.NoError(s.T(), err)
	assert.True(s.T(), stored.Delivered)
}

func (s *DeliveryWorkerSuite) TestDeliveredItemsNotResent() {
	userID := s.addUser(time.Now().UTC())
	s.addItem(userID, models.TriggerFixedDate, datePtr(time.Now().UTC().Add(-24*time.Hour)))

	s.worker.Sweep(s.ctx)
	s.worker.Sweep(s.ctx)

	assert.Len(s.T(), s.mailer.sent, 1)
}

func (s *DeliveryWorkerSuite) TestMailFailureLeavesItemUndelivered() {
	userID := s.addUser(time.Now().UTC())
	item := s.addItem(userID, models.TriggerFixedDate, datePtr(time.Now().UTC().Add(-24*time.Hour)))
	s.mailer.fail = true

	s.worker.Sweep(s.ctx)

	stored, err := s.store.Get(s.ctx, item.ID, userID)
	require.NoError(s.T(), err)
	assert.False(s.T(), stored.Delivered)

	s.mailer.fail = false
	s.worker.Sweep(s.ctx)
	assert.Len(s.T(), s.mailer.sent, 1)
}

func (s *DeliveryWorkerSuite) TestUnknownOwnerIsSkipped() {
	orphan := uuid.New()
	s.addItem(orphan, models.TriggerInactivity, nil)

	s.worker.Sweep(s.ctx)

	assert.Empty(s.T(), s.mailer.sent)
}
