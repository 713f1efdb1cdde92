package notification

import (
	"context"
	"fmt"
	"time"

	"courtbook/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	defaultBatchSize   = 500
	defaultSendTimeout = 30 * time.Second
	defaultMaxAttempts = 3
)

// Dispatcher fans a notification out to device tokens in batches, keeping
// the job row's counters current as each batch lands.
type Dispatcher struct {
	messenger Messenger
	notifs    NotificationRepository
	tokens    DeviceTokenRepository
	users     UserDirectory
	log       *logrus.Logger

	batchSize   int
	sendTimeout time.Duration
	maxAttempts int
	now         func() time.Time
}

func NewDispatcher(
	messenger Messenger,
	notifs NotificationRepository,
	tokens DeviceTokenRepository,
	users UserDirectory,
	log *logrus.Logger,
) *Dispatcher {
	return &Dispatcher{
		messenger:   messenger,
		notifs:      notifs,
		tokens:      tokens,
		users:       users,
		log:         log,
		batchSize:   defaultBatchSize,
		sendTimeout: defaultSendTimeout,
		maxAttempts: defaultMaxAttempts,
		now:         time.Now,
	}
}

// Dispatch records the job, resolves the target population, and delivers.
// Topic targeting sends one message regardless of population size; everything
// else goes through batched multicast.
func (d *Dispatcher) Dispatch(ctx context.Context, createdBy int64, req DispatchRequest) (*DispatchResult, error) {
	if req.Title == "" || req.Body == "" {
		return nil, ErrValidation
	}
	nType := domain.NotificationType(req.Type)
	if nType == "" {
		nType = domain.NotificationGeneral
	}

	job := &domain.Notification{
		Title:       req.Title,
		Body:        req.Body,
		Type:        nType,
		Data:        encodeData(req.Data),
		TargetUsers: req.TargetUserIDs,
		TargetRole:  req.TargetRole,
		TargetTopic: req.Topic,
		Status:      domain.NotificationPending,
		CreatedBy:   createdBy,
	}
	if err := d.notifs.Create(ctx, job); err != nil {
		return nil, err
	}

	tokens, err := d.resolveTokens(ctx, req)
	if err != nil {
		_ = d.notifs.MarkFailed(ctx, job.ID, err.Error())
		return nil, err
	}
	if len(tokens) == 0 {
		_ = d.notifs.MarkFailed(ctx, job.ID, ErrNoTargets.Error())
		return nil, ErrNoTargets
	}

	if err := d.notifs.MarkSending(ctx, job.ID, len(tokens)); err != nil {
		return nil, err
	}

	msg := Message{Title: req.Title, Body: req.Body, Data: req.Data}
	var res *DispatchResult
	if req.Topic != "" {
		res, err = d.deliverToTopic(ctx, job.ID, tokens, req.Topic, msg)
	} else {
		res, err = d.deliverMulticast(ctx, job.ID, tokens, msg)
	}
	if err != nil {
		return nil, err
	}
	res.NotificationID = job.ID
	res.TotalDevices = len(tokens)
	return res, nil
}

// Execute re-runs delivery for an already persisted pending job; the retry
// endpoint lands here. The message is rebuilt entirely from the job row, so
// the payload survives redelivery.
func (d *Dispatcher) Execute(ctx context.Context, jobID int64) (*DispatchResult, error) {
	job, err := d.notifs.GetByID(ctx, jobID)
	if err != nil {
		return nil, ErrNotFound
	}
	if job.Status != domain.NotificationPending {
		return nil, fmt.Errorf("notification %d is %s: %w", jobID, job.Status, ErrNotPending)
	}

	req := DispatchRequest{
		Title:         job.Title,
		Body:          job.Body,
		Type:          string(job.Type),
		TargetUserIDs: job.TargetUsers,
		TargetRole:    job.TargetRole,
		Topic:         job.TargetTopic,
	}
	tokens, err := d.resolveTokens(ctx, req)
	if err != nil {
		_ = d.notifs.MarkFailed(ctx, job.ID, err.Error())
		return nil, err
	}
	if len(tokens) == 0 {
		_ = d.notifs.MarkFailed(ctx, job.ID, ErrNoTargets.Error())
		return nil, ErrNoTargets
	}
	if err := d.notifs.MarkSending(ctx, job.ID, len(tokens)); err != nil {
		return nil, err
	}

	msg := Message{Title: job.Title, Body: job.Body, Data: decodeData(job.Data)}
	var res *DispatchResult
	if job.TargetTopic != "" {
		res, err = d.deliverToTopic(ctx, job.ID, tokens, job.TargetTopic, msg)
	} else {
		res, err = d.deliverMulticast(ctx, job.ID, tokens, msg)
	}
	if err != nil {
		return nil, err
	}
	res.NotificationID = job.ID
	res.TotalDevices = len(tokens)
	return res, nil
}

// resolveTokens maps the request's targeting mode to the active token set,
// deduplicated. Precedence: explicit users, then role, then everyone.
func (d *Dispatcher) resolveTokens(ctx context.Context, req DispatchRequest) ([]string, error) {
	var (
		tokens []string
		err    error
	)
	switch {
	case len(req.TargetUserIDs) > 0:
		tokens, err = d.tokens.ActiveTokensForUsers(ctx, req.TargetUserIDs)
	case req.TargetRole != "":
		var ids []int64
		ids, err = d.users.IDsByRole(ctx, domain.UserRole(req.TargetRole))
		if err == nil {
			tokens, err = d.tokens.ActiveTokensForUsers(ctx, ids)
		}
	default:
		tokens, err = d.tokens.ActiveTokens(ctx)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

func (d *Dispatcher) deliverMulticast(ctx context.Context, jobID int64, tokens []string, msg Message) (*DispatchResult, error) {
	res := &DispatchResult{}
	deactivated := make(map[string]struct{})

	for start := 0; start < len(tokens); start += d.batchSize {
		end := start + d.batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		success, failed, err := d.sendBatch(ctx, batch, msg, deactivated)
		if err != nil {
			// Transport-level failure: record what landed, mark the job
			// failed, stop remaining batches.
			_ = d.notifs.MarkFailed(ctx, jobID, err.Error())
			d.log.WithError(err).WithField("notification_id", jobID).Error("dispatch aborted")
			return nil, err
		}

		res.Sent += len(batch)
		res.Success += success
		res.Failed += failed
		if err := d.notifs.IncrementCounters(ctx, jobID, len(batch), success, failed); err != nil {
			d.log.WithError(err).WithField("notification_id", jobID).Error("counter update failed")
		}
	}

	if err := d.notifs.MarkCompleted(ctx, jobID, d.now().UTC()); err != nil {
		return nil, err
	}
	return res, nil
}

// sendBatch attempts one multicast, retrying transient transport failures,
// and falls back to per-token sends when the multicast call itself keeps
// failing. Tokens with permanent failures are deactivated once per run.
func (d *Dispatcher) sendBatch(ctx context.Context, batch []string, msg Message, deactivated map[string]struct{}) (success, failed int, err error) {
	var result *BatchResult
	var lastErr error

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		result, lastErr = d.messenger.SendMulticast(sendCtx, batch, msg)
		cancel()
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			return 0, 0, ctx.Err()
		}
		d.log.WithError(lastErr).WithField("attempt", attempt).Warn("multicast failed")
	}

	if lastErr != nil {
		// Multicast transport is down; try each token on its own before
		// giving up on the batch.
		return d.sendIndividually(ctx, batch, msg, deactivated)
	}

	for i, out := range result.Outcomes {
		if out.Success {
			success++
			continue
		}
		failed++
		d.deactivateIfPermanent(ctx, batch[i], out.Err, deactivated)
	}
	return success, failed, nil
}

func (d *Dispatcher) sendIndividually(ctx context.Context, batch []string, msg Message, deactivated map[string]struct{}) (success, failed int, err error) {
	for _, token := range batch {
		if ctx.Err() != nil {
			return 0, 0, ctx.Err()
		}
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		sendErr := d.messenger.Send(sendCtx, token, msg)
		cancel()

		if sendErr == nil {
			success++
			_ = d.tokens.TouchLastUsed(ctx, token, d.now().UTC())
			continue
		}
		failed++
		d.deactivateIfPermanent(ctx, token, sendErr, deactivated)
	}
	return success, failed, nil
}

func (d *Dispatcher) deactivateIfPermanent(ctx context.Context, token string, sendErr error, deactivated map[string]struct{}) {
	if !IsPermanentTokenError(sendErr) {
		return
	}
	if _, done := deactivated[token]; done {
		return
	}
	deactivated[token] = struct{}{}
	if err := d.tokens.DeactivateByToken(ctx, token); err != nil {
		d.log.WithError(err).Error("token deactivation failed")
		return
	}
	d.log.WithField("reason", sendErr.Error()).Info("device token deactivated")
}

// deliverToTopic subscribes the population in batches, tolerating partial
// subscription failures, then sends a single topic message. One network call
// for the payload no matter how large the population.
func (d *Dispatcher) deliverToTopic(ctx context.Context, jobID int64, tokens []string, topic string, msg Message) (*DispatchResult, error) {
	var subSuccess, subFailed int
	for start := 0; start < len(tokens); start += d.batchSize {
		end := start + d.batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		ok, bad, err := d.messenger.SubscribeToTopic(ctx, tokens[start:end], topic)
		if err != nil {
			_ = d.notifs.MarkFailed(ctx, jobID, err.Error())
			return nil, err
		}
		subSuccess += ok
		subFailed += bad
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		lastErr = d.messenger.SendToTopic(sendCtx, topic, msg)
		cancel()
		if lastErr == nil {
			break
		}
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
	}
	if lastErr != nil {
		_ = d.notifs.MarkFailed(ctx, jobID, lastErr.Error())
		return nil, lastErr
	}

	res := &DispatchResult{Sent: subSuccess, Success: subSuccess, Failed: subFailed}
	if err := d.notifs.IncrementCounters(ctx, jobID, res.Sent, res.Success, res.Failed); err != nil {
		d.log.WithError(err).WithField("notification_id", jobID).Error("counter update failed")
	}
	if err := d.notifs.MarkCompleted(ctx, jobID, d.now().UTC()); err != nil {
		return nil, err
	}
	return res, nil
}

// GetJob returns a dispatch job for progress polling.
func (d *Dispatcher) GetJob(ctx context.Context, id int64) (*domain.Notification, error) {
	job, err := d.notifs.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return job, nil
}

func (d *Dispatcher) ListJobs(ctx context.Context, limit, offset int) ([]domain.Notification, int64, error) {
	return d.notifs.List(ctx, limit, offset)
}
