package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"courtbook/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessenger scripts per-token outcomes instead of using testify mocks:
// the dispatcher's batching makes call-by-call expectations unwieldy.
type fakeMessenger struct {
	mu sync.Mutex

	multicastCalls [][]string
	sendCalls      []string
	topicSends     int
	subscribeCalls [][]string
	lastMsg        Message

	failTokens      map[string]error
	multicastErr    error
	multicastErrFor int // fail this many multicast calls, 0 = never
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{failTokens: map[string]error{}}
}

func (f *fakeMessenger) SendMulticast(ctx context.Context, tokens []string, msg Message) (*BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.multicastCalls = append(f.multicastCalls, tokens)
	f.lastMsg = msg

	if f.multicastErr != nil && (f.multicastErrFor == 0 || len(f.multicastCalls) <= f.multicastErrFor) {
		return nil, f.multicastErr
	}

	res := &BatchResult{Outcomes: make([]SendOutcome, len(tokens))}
	for i, t := range tokens {
		if err, bad := f.failTokens[t]; bad {
			res.Outcomes[i] = SendOutcome{Err: err}
			res.FailureCount++
		} else {
			res.Outcomes[i] = SendOutcome{Success: true}
			res.SuccessCount++
		}
	}
	return res, nil
}

func (f *fakeMessenger) Send(ctx context.Context, token string, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls = append(f.sendCalls, token)
	if err, bad := f.failTokens[token]; bad {
		return err
	}
	return nil
}

func (f *fakeMessenger) SubscribeToTopic(ctx context.Context, tokens []string, topic string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribeCalls = append(f.subscribeCalls, tokens)
	bad := 0
	for _, t := range tokens {
		if _, fail := f.failTokens[t]; fail {
			bad++
		}
	}
	return len(tokens) - bad, bad, nil
}

func (f *fakeMessenger) SendToTopic(ctx context.Context, topic string, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topicSends++
	return nil
}

// fakeStore backs both repositories with maps.
type fakeStore struct {
	mu          sync.Mutex
	jobs        map[int64]*domain.Notification
	nextID      int64
	tokens      []string
	deactivated map[string]int
}

func newFakeStore(tokens ...string) *fakeStore {
	return &fakeStore{
		jobs:        map[int64]*domain.Notification{},
		tokens:      tokens,
		deactivated: map[string]int{},
	}
}

func (s *fakeStore) Create(ctx context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n.ID = s.nextID
	cp := *n
	s.jobs[n.ID] = &cp
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *j
	return &cp, nil
}

func (s *fakeStore) List(ctx context.Context, limit, offset int) ([]domain.Notification, int64, error) {
	return nil, 0, nil
}

func (s *fakeStore) MarkSending(ctx context.Context, id int64, totalDevices int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id].Status = domain.NotificationSending
	s.jobs[id].TotalDevices = totalDevices
	return nil
}

func (s *fakeStore) IncrementCounters(ctx context.Context, id int64, sent, success, failed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.jobs[id]
	j.TotalSent += sent
	j.TotalSuccess += success
	j.TotalFailed += failed
	return nil
}

func (s *fakeStore) MarkCompleted(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id].Status = domain.NotificationCompleted
	s.jobs[id].SentAt = &at
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id int64, errDetails string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id].Status = domain.NotificationFailed
	s.jobs[id].ErrorDetails = errDetails
	return nil
}

func (s *fakeStore) Upsert(ctx context.Context, userID int64, token, deviceType, deviceName string, now time.Time) (*domain.DeviceToken, error) {
	return &domain.DeviceToken{UserID: userID, Token: token, IsActive: true}, nil
}

func (s *fakeStore) Remove(ctx context.Context, userID int64, token string) (bool, error) {
	return true, nil
}

func (s *fakeStore) ListByUser(ctx context.Context, userID int64) ([]domain.DeviceToken, error) {
	return nil, nil
}

func (s *fakeStore) ActiveTokensForUsers(ctx context.Context, userIDs []int64) ([]string, error) {
	return s.tokens, nil
}

func (s *fakeStore) ActiveTokens(ctx context.Context) ([]string, error) {
	return s.tokens, nil
}

func (s *fakeStore) DeactivateByToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivated[token]++
	return nil
}

func (s *fakeStore) TouchLastUsed(ctx context.Context, token string, at time.Time) error {
	return nil
}

type fakeDirectory struct{}

func (fakeDirectory) IDsByRole(ctx context.Context, role domain.UserRole) ([]int64, error) {
	return []int64{1}, nil
}

func (fakeDirectory) AllIDs(ctx context.Context) ([]int64, error) {
	return []int64{1}, nil
}

func makeTokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("token-%04d", i)
	}
	return out
}

func newDispatcher(m Messenger, s *fakeStore) *Dispatcher {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	d := NewDispatcher(m, s, s, fakeDirectory{}, log)
	d.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return d
}

func TestDispatch_BatchesOf500(t *testing.T) {
	m := newFakeMessenger()
	s := newFakeStore(makeTokens(1200)...)
	d := newDispatcher(m, s)

	res, err := d.Dispatch(context.Background(), 1, DispatchRequest{Title: "t", Body: "b"})
	require.NoError(t, err)

	require.Len(t, m.multicastCalls, 3)
	assert.Len(t, m.multicastCalls[0], 500)
	assert.Len(t, m.multicastCalls[1], 500)
	assert.Len(t, m.multicastCalls[2], 200)

	assert.Equal(t, 1200, res.TotalDevices)
	assert.Equal(t, 1200, res.Sent)
	assert.Equal(t, 1200, res.Success)
	assert.Equal(t, 0, res.Failed)

	job, _ := s.GetByID(context.Background(), res.NotificationID)
	assert.Equal(t, domain.NotificationCompleted, job.Status)
	assert.Equal(t, 1200, job.TotalSent)
	assert.Equal(t, 1200, job.TotalSuccess)
	assert.NotNil(t, job.SentAt)
}

func TestDispatch_PermanentFailureDeactivatesOnce(t *testing.T) {
	m := newFakeMessenger()
	m.failTokens["token-0003"] = &ProviderError{Permanent: true, Err: errors.New("unregistered")}
	m.failTokens["token-0007"] = &ProviderError{Permanent: false, Err: errors.New("unavailable")}

	s := newFakeStore(makeTokens(10)...)
	d := newDispatcher(m, s)

	res, err := d.Dispatch(context.Background(), 1, DispatchRequest{Title: "t", Body: "b"})
	require.NoError(t, err)

	assert.Equal(t, 8, res.Success)
	assert.Equal(t, 2, res.Failed)

	assert.Equal(t, 1, s.deactivated["token-0003"], "permanent failure deactivates exactly once")
	assert.Zero(t, s.deactivated["token-0007"], "transient failure never deactivates")
}

func TestDispatch_MulticastFallsBackToIndividual(t *testing.T) {
	m := newFakeMessenger()
	m.multicastErr = errors.New("transport down")

	s := newFakeStore(makeTokens(5)...)
	d := newDispatcher(m, s)
	d.maxAttempts = 2

	res, err := d.Dispatch(context.Background(), 1, DispatchRequest{Title: "t", Body: "b"})
	require.NoError(t, err)

	assert.Len(t, m.multicastCalls, 2, "multicast retried before fallback")
	assert.Len(t, m.sendCalls, 5, "every token sent individually")
	assert.Equal(t, 5, res.Success)

	job, _ := s.GetByID(context.Background(), res.NotificationID)
	assert.Equal(t, domain.NotificationCompleted, job.Status)
}

func TestDispatch_TopicModeSingleSend(t *testing.T) {
	m := newFakeMessenger()
	s := newFakeStore(makeTokens(1200)...)
	d := newDispatcher(m, s)

	res, err := d.Dispatch(context.Background(), 1, DispatchRequest{
		Title: "t", Body: "b", Topic: "promo-march",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, m.topicSends, "one network call regardless of population")
	assert.Len(t, m.subscribeCalls, 3, "subscription is still batched")
	assert.Zero(t, len(m.multicastCalls))
	assert.Equal(t, 1200, res.Success)
}

func TestDispatch_NoTargets(t *testing.T) {
	m := newFakeMessenger()
	s := newFakeStore()
	d := newDispatcher(m, s)

	_, err := d.Dispatch(context.Background(), 1, DispatchRequest{Title: "t", Body: "b"})
	assert.ErrorIs(t, err, ErrNoTargets)

	job, _ := s.GetByID(context.Background(), 1)
	assert.Equal(t, domain.NotificationFailed, job.Status)
}

func TestDispatch_ProgressiveCounters(t *testing.T) {
	m := newFakeMessenger()
	s := newFakeStore(makeTokens(600)...)
	d := newDispatcher(m, s)

	// Fail one token in the second batch; totals must accumulate across
	// batches, not get overwritten by the last one.
	m.failTokens["token-0550"] = &ProviderError{Permanent: false, Err: errors.New("busy")}

	res, err := d.Dispatch(context.Background(), 1, DispatchRequest{Title: "t", Body: "b"})
	require.NoError(t, err)

	job, _ := s.GetByID(context.Background(), res.NotificationID)
	assert.Equal(t, 600, job.TotalSent)
	assert.Equal(t, 599, job.TotalSuccess)
	assert.Equal(t, 1, job.TotalFailed)
	assert.Equal(t, 600, job.TotalDevices)
}

func TestDispatch_DuplicateTokensDeduplicated(t *testing.T) {
	m := newFakeMessenger()
	s := newFakeStore("tok-a", "tok-b", "tok-a")
	d := newDispatcher(m, s)

	res, err := d.Dispatch(context.Background(), 1, DispatchRequest{Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalDevices)
	assert.Equal(t, []string{"tok-a", "tok-b"}, m.multicastCalls[0])
}

func TestExecute_RerunsPendingJob(t *testing.T) {
	m := newFakeMessenger()
	s := newFakeStore(makeTokens(3)...)
	d := newDispatcher(m, s)

	job := &domain.Notification{Title: "t", Body: "b", Status: domain.NotificationPending}
	require.NoError(t, s.Create(context.Background(), job))

	res, err := d.Execute(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Success)

	// A completed job cannot be executed again
	_, err = d.Execute(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestExecute_CarriesStoredPayload(t *testing.T) {
	m := newFakeMessenger()
	s := newFakeStore(makeTokens(2)...)
	d := newDispatcher(m, s)

	job := &domain.Notification{
		Title:  "Booking confirmed",
		Body:   "See you on court",
		Type:   domain.NotificationBooking,
		Data:   json.RawMessage(`{"booking_id":"42"}`),
		Status: domain.NotificationPending,
	}
	require.NoError(t, s.Create(context.Background(), job))

	_, err := d.Execute(context.Background(), job.ID)
	require.NoError(t, err)

	assert.Equal(t, "Booking confirmed", m.lastMsg.Title)
	assert.Equal(t, map[string]string{"booking_id": "42"}, m.lastMsg.Data,
		"redelivery keeps the persisted data payload")
}
