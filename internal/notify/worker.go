package notify

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog/log"

	"github.com/servicecoinrwb/BAS-System/internal/model"
)

// SubscriptionStore is the slice of the store the pool needs: who wants to
// hear about a unit, and dropping subscribers that are gone.
type SubscriptionStore interface {
	SubscriptionsForUnit(ctx context.Context, unitID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

func (WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job is one raised alarm to fan out to the unit's subscribers.
type Job struct {
	UnitID   string
	UnitName string
	Code     string
	Message  string
}

// pushPayload is the JSON body delivered to the browser.
type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Unit  string `json:"unit"`
	Code  string `json:"code"`
}

// WorkerPool manages a pool of workers for sending alarm notifications.
type WorkerPool struct {
	size    int
	jobs    chan Job
	store   SubscriptionStore
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, store SubscriptionStore, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size),
		store:   store,
		webpush: webpushOptions,
		sender:  WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Debug().Int("worker", id).Msg("notification worker started")
	for {
		select {
		case job := <-wp.jobs:
			wp.sendForAlarm(ctx, job)
		case <-ctx.Done():
			log.Debug().Int("worker", id).Msg("notification worker shutting down")
			return
		}
	}
}

// Dispatch sends a job to the worker pool.
func (wp *WorkerPool) Dispatch(job Job) {
	wp.jobs <- job
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// sendForAlarm fetches the unit's subscriptions and pushes the alarm to
// each of them.
func (wp *WorkerPool) sendForAlarm(ctx context.Context, job Job) {
	subscriptions, err := wp.store.SubscriptionsForUnit(ctx, job.UnitID)
	if err != nil {
		log.Error().Err(err).Str("unit", job.UnitID).Msg("failed to fetch subscriptions")
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{
		Title: "Alarm: " + job.UnitName,
		Body:  job.Message,
		Unit:  job.UnitID,
		Code:  job.Code,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal push payload")
		return
	}

	log.Info().Str("unit", job.UnitID).Str("code", job.Code).Int("subscribers", len(subscriptions)).Msg("sending alarm notifications")
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification and drops the
// subscription if the push service reports it gone.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to send notification")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		log.Info().Str("endpoint", sub.Endpoint).Msg("subscription expired, deleting")
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Error().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to delete expired subscription")
		}
	}
}
