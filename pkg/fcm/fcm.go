// Package fcm schedules notifications in a durable outbox and delivers them
// through Firebase Cloud Messaging once they fall due.
package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Sender delivers one message. *messaging.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NewMessagingClient creates an FCM client from a service account file, or
// from application default credentials when credentialsFile is empty.
func NewMessagingClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Client initialized successfully")
	return client, nil
}

func toMessage(e Entry) *messaging.Message {
	return &messaging.Message{
		Topic: e.Subscriber,
		Notification: &messaging.Notification{
			Title: e.Title,
			Body:  e.Body,
		},
		Data: map[string]string{
			"type":            "task_reminder",
			"notification_id": e.ID,
		},
	}
}
