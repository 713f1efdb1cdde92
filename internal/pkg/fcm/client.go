package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"courtbook/internal/modules/notification"
)

// Client adapts the Firebase Cloud Messaging SDK to the dispatcher's
// Messenger interface, classifying SDK errors into permanent and transient.
type Client struct {
	mc *messaging.Client
}

// NewClient initializes the Firebase app from a service-account credentials
// file and returns the messaging adapter.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	mc, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &Client{mc: mc}, nil
}

func (c *Client) SendMulticast(ctx context.Context, tokens []string, msg notification.Message) (*notification.BatchResult, error) {
	br, err := c.mc.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	})
	if err != nil {
		return nil, err
	}

	res := &notification.BatchResult{
		SuccessCount: br.SuccessCount,
		FailureCount: br.FailureCount,
		Outcomes:     make([]notification.SendOutcome, len(br.Responses)),
	}
	for i, r := range br.Responses {
		if r.Success {
			res.Outcomes[i] = notification.SendOutcome{Success: true}
			continue
		}
		res.Outcomes[i] = notification.SendOutcome{Err: classify(r.Error)}
	}
	return res, nil
}

func (c *Client) Send(ctx context.Context, token string, msg notification.Message) error {
	_, err := c.mc.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func (c *Client) SubscribeToTopic(ctx context.Context, tokens []string, topic string) (int, int, error) {
	tr, err := c.mc.SubscribeToTopic(ctx, tokens, topic)
	if err != nil {
		return 0, 0, err
	}
	return tr.SuccessCount, tr.FailureCount, nil
}

func (c *Client) SendToTopic(ctx context.Context, topic string, msg notification.Message) error {
	_, err := c.mc.Send(ctx, &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	})
	return err
}

// classify wraps an SDK error, marking it permanent when FCM reports the
// token as gone for good: unregistered, wrong sender, or malformed.
func classify(err error) error {
	if err == nil {
		return nil
	}
	permanent := messaging.IsUnregistered(err) ||
		messaging.IsSenderIDMismatch(err) ||
		messaging.IsInvalidArgument(err)
	return &notification.ProviderError{Permanent: permanent, Err: err}
}
