// Package google implements the calendar backend on top of the Google
// Calendar and Google Tasks APIs.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
	gtasks "google.golang.org/api/tasks/v1"

	"bookey/internal/calendar"
	"bookey/internal/config"
	"bookey/internal/models"
)

// Client provides a calendar.Backend backed by Google Calendar and Google Tasks.
type Client struct {
	calendar   *gcal.Service
	tasks      *gtasks.Service
	logger     *slog.Logger
	calendarID string
	taskList   string
	location   *time.Location
}

var _ calendar.Backend = (*Client)(nil)

// NewClient creates a new Google client.
// It handles loading credentials and the saved token, and sets up an
// authenticated HTTP client that persists refreshed tokens.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.GoogleConfig, loc *time.Location) (*Client, error) {
	oauthConfig, err := getOAuthConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	token, err := tokenFromFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load token from %s: %w. Please run the 'auth' command first", cfg.TokenFile, err)
	}

	source := newSavingTokenSource(oauthConfig.TokenSource(ctx, token), cfg.TokenFile, token, logger)
	httpClient := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source))
	return newClient(ctx, logger, cfg, loc, option.WithHTTPClient(httpClient))
}

func newClient(ctx context.Context, logger *slog.Logger, cfg config.GoogleConfig, loc *time.Location, opts ...option.ClientOption) (*Client, error) {
	calService, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	taskService, err := gtasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{
		calendar:   calService,
		tasks:      taskService,
		logger:     logger,
		calendarID: cfg.CalendarID,
		taskList:   cfg.TaskList,
		location:   loc,
	}, nil
}

// ListSlots fetches the events of the window and buckets them per date.
func (c *Client) ListSlots(ctx context.Context, focus time.Time, days int) (calendar.Buckets, error) {
	dates := calendar.Window(focus, days, c.location)
	from, to := calendar.Bounds(dates)
	c.logger.Debug("Fetching events", "calendarID", c.calendarID, "from", from, "to", to)

	call := c.calendar.Events.List(c.calendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		OrderBy("startTime")
	if tz := c.zoneName(); tz != "" {
		call = call.TimeZone(tz)
	}

	var events []models.Event
	err := call.Pages(ctx, func(page *gcal.Events) error {
		events = append(events, c.toInternalEvents(page.Items)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}

	c.logger.Info("Fetched events from Google Calendar", "count", len(events), "calendarID", c.calendarID)
	return calendar.Bucketize(dates, events), nil
}

// CreateEvent inserts an event. Date-only start and end create an all-day event.
func (c *Client) CreateEvent(ctx context.Context, title, startISO, endISO, description string) (models.Event, error) {
	body, err := c.eventBody(title, startISO, endISO, description)
	if err != nil {
		return models.Event{}, err
	}
	created, err := c.calendar.Events.Insert(c.calendarID, body).Context(ctx).Do()
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	event, ok := c.toInternalEvent(created)
	if !ok {
		return models.Event{}, fmt.Errorf("created event %s has no usable start", created.Id)
	}
	c.logger.Info("Created event", "id", event.ID, "title", event.Title)
	return event, nil
}

// DeleteEvent removes an event by ID.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if err := c.calendar.Events.Delete(c.calendarID, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	c.logger.Info("Deleted event", "id", id)
	return nil
}

// eventBody converts user input to a Google event. Google treats the end
// date of all-day events as exclusive, so one day is added.
func (c *Client) eventBody(title, startISO, endISO, description string) (*gcal.Event, error) {
	start, allDay, err := models.ParseISO(startISO, c.location)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event start: %w", err)
	}
	end, _, err := models.ParseISO(endISO, c.location)
	if err != nil {
		return nil, fmt.Errorf("failed to parse event end: %w", err)
	}

	ev := &gcal.Event{Summary: title, Description: description}
	if allDay {
		ev.Start = &gcal.EventDateTime{Date: start.Format(models.DateLayout)}
		ev.End = &gcal.EventDateTime{Date: end.AddDate(0, 0, 1).Format(models.DateLayout)}
		return ev, nil
	}
	tz := c.zoneName()
	ev.Start = &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: tz}
	ev.End = &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: tz}
	return ev, nil
}

// toInternalEvents converts Google Calendar events to the internal Event model.
func (c *Client) toInternalEvents(googleEvents []*gcal.Event) []models.Event {
	var internalEvents []models.Event
	for _, item := range googleEvents {
		event, ok := c.toInternalEvent(item)
		if !ok {
			c.logger.Warn("Skipping event without a usable start", "id", item.Id)
			continue
		}
		internalEvents = append(internalEvents, event)
	}
	return internalEvents
}

func (c *Client) toInternalEvent(item *gcal.Event) (models.Event, bool) {
	if item.Start == nil || item.End == nil {
		return models.Event{}, false
	}
	event := models.Event{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
	}

	if item.Start.Date != "" {
		start, err := time.ParseInLocation(models.DateLayout, item.Start.Date, c.location)
		if err != nil {
			return models.Event{}, false
		}
		end, err := time.ParseInLocation(models.DateLayout, item.End.Date, c.location)
		if err != nil || !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
		event.Start, event.End, event.AllDay = start, end.AddDate(0, 0, -1), true
		return event, true
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return models.Event{}, false
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		end = start
	}
	event.Start, event.End = start.In(c.location), end.In(c.location)
	return event, true
}

// zoneName returns the IANA name of the configured zone, or "" when it is
// the process-local zone, which Google cannot resolve.
func (c *Client) zoneName() string {
	if c.location == time.Local || c.location.String() == "Local" {
		return ""
	}
	return c.location.String()
}
