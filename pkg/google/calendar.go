package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harrisonrobin/tasknotify/pkg/engine"
	"github.com/harrisonrobin/tasknotify/pkg/model"
)

const (
	// EventLength is how long the reminder event occupies the calendar.
	EventLength = 15 * time.Minute

	subscriberProperty = "tasknotify_subscriber"
)

// CalendarClient schedules notifications as calendar events carrying a popup
// reminder at their start time. It implements engine.Scheduler.
type CalendarClient struct {
	srv         *calendar.Service
	calendarID  string
	subscribers engine.SubscriberSource
}

var _ engine.Scheduler = (*CalendarClient)(nil)

// NewCalendarClient creates a new Google Calendar client.
func NewCalendarClient(srv *calendar.Service, calendarID string, subscribers engine.SubscriberSource) *CalendarClient {
	return &CalendarClient{srv: srv, calendarID: calendarID, subscribers: subscribers}
}

// Create inserts the reminder event and returns its id.
func (c *CalendarClient) Create(ctx context.Context, n engine.Notification) (string, error) {
	subscriber, err := c.subscribers.SubscriberID(ctx)
	if err != nil {
		return "", model.Fail(model.KindStore, "create", fmt.Errorf("read subscriber id: %w", err))
	}
	if subscriber == "" {
		return "", model.Fail(model.KindValidation, "create", model.ErrNoSubscriber)
	}

	created, err := c.srv.Events.Insert(c.calendarID, toEvent(n, subscriber)).Context(ctx).Do()
	if err != nil {
		return "", classify("create", err)
	}
	if created.Id == "" {
		return "", model.Fail(model.KindProvider, "create", errors.New("event created without an id"))
	}
	return created.Id, nil
}

// Cancel deletes the event from the calendar.
func (c *CalendarClient) Cancel(ctx context.Context, id string) error {
	if err := c.srv.Events.Delete(c.calendarID, id).Context(ctx).Do(); err != nil {
		return classify("cancel", err)
	}
	return nil
}

func toEvent(n engine.Notification, subscriber string) *calendar.Event {
	start := n.SendAfter.UTC()
	return &calendar.Event{
		Summary:     n.Title,
		Description: n.Body,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: start.Add(EventLength).Format(time.RFC3339),
			TimeZone: "UTC",
		},
		Reminders: &calendar.EventReminders{
			UseDefault: false,
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: 0, ForceSendFields: []string{"Minutes"}},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{subscriberProperty: subscriber},
		},
	}
}

// classify maps API errors to provider failures and everything else to transport.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return model.Fail(model.KindProvider, op, err)
	}
	return model.Fail(model.KindTransport, op, err)
}
