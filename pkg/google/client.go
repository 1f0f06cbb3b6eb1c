package google

import (
	"context"
	"fmt"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/tasknotify/pkg/auth"
	"github.com/harrisonrobin/tasknotify/pkg/engine"
)

// NewClient authenticates with the stored token and targets the calendar
// whose summary is calendarName.
func NewClient(ctx context.Context, calendarName string, subscribers engine.SubscriberSource) (*CalendarClient, error) {
	srv, err := auth.GetCalendarService(ctx)
	if err != nil {
		return nil, err
	}
	calendarID, err := ResolveCalendarID(ctx, srv, calendarName)
	if err != nil {
		return nil, err
	}
	return NewCalendarClient(srv, calendarID, subscribers), nil
}

// ResolveCalendarID finds the id of the calendar with the given summary.
func ResolveCalendarID(ctx context.Context, srv *calendar.Service, calendarName string) (string, error) {
	calendarList, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	for _, item := range calendarList.Items {
		if item.Summary == calendarName {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", calendarName)
}
