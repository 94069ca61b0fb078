package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"

	"buy-bye-api-server/config"
)

// Pusher sends FCM notifications to customer devices.
type Pusher struct {
	client *messaging.Client
}

// NewPusher initializes the Firebase app from a credentials file. With no
// credentials configured the pusher is nil-safe and drops messages.
func NewPusher(ctx context.Context, cfg config.FirebaseConfig) (*Pusher, error) {
	if cfg.CredentialsFile == "" {
		return &Pusher{}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("push: initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("push: messaging client: %w", err)
	}
	return &Pusher{client: client}, nil
}

// Send delivers one notification to a device token. Data values ride along
// for client-side routing.
func (p *Pusher) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if p.client == nil || token == "" {
		return nil
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	_, err := p.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}
