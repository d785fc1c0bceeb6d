// Package caldav implements the calendar backend on top of a CalDAV server.
// Events are VEVENTs and tasks are VTODOs; both are addressed by their
// object path.
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"bookey/internal/calendar"
	"bookey/internal/config"
	"bookey/internal/models"
)

const productID = "-//bookey//EN"

// customTransport handles adding Basic Auth and custom headers to requests.
type customTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "bookey/1.0")
	return t.Transport.RoundTrip(req)
}

// Client provides a calendar.Backend backed by a CalDAV server.
type Client struct {
	caldavClient *caldav.Client
	logger       *slog.Logger
	location     *time.Location
	eventsPath   string
	tasksPath    string
}

var _ calendar.Backend = (*Client)(nil)

// NewClient connects to the server and resolves the configured event and
// task calendars by display name.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.CalDAVConfig, loc *time.Location) (*Client, error) {
	httpClient := &http.Client{Transport: &customTransport{
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: http.DefaultTransport,
	}}

	caldavClient, err := caldav.NewClient(httpClient, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	c := &Client{caldavClient: caldavClient, logger: logger, location: loc}

	logger.Info("Finding CalDAV calendar", "calendarName", cfg.CalendarName)
	calendars, err := c.listCalendars(ctx)
	if err != nil {
		return nil, err
	}
	if c.eventsPath, err = findCalendar(calendars, cfg.CalendarName); err != nil {
		return nil, err
	}
	taskName := cfg.TaskCalendarName
	if taskName == "" {
		taskName = cfg.CalendarName
	}
	if c.tasksPath, err = findCalendar(calendars, taskName); err != nil {
		return nil, err
	}
	logger.Info("Successfully found CalDAV calendars", "events", c.eventsPath, "tasks", c.tasksPath)
	return c, nil
}

// ListSlots queries the VEVENTs of the window, expands recurring ones and
// buckets the occurrences per date.
func (c *Client) ListSlots(ctx context.Context, focus time.Time, days int) (calendar.Buckets, error) {
	dates := calendar.Window(focus, days, c.location)
	from, to := calendar.Bounds(dates)
	c.logger.Debug("Querying events", "calendar", c.eventsPath, "from", from, "to", to)

	objects, err := c.caldavClient.QueryCalendar(ctx, c.eventsPath, &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{Name: ical.CompCalendar, AllProps: true, AllComps: true},
		CompFilter: caldav.CompFilter{
			Name:  ical.CompCalendar,
			Comps: []caldav.CompFilter{{Name: ical.CompEvent, Start: from.UTC(), End: to.UTC()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	var events []models.Event
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		occs, errs := objectOccurrences(obj.Path, obj.Data.Events(), from, to, c.location)
		for _, err := range errs {
			c.logger.Warn("Skipping unreadable event", "path", obj.Path, "error", err)
		}
		events = append(events, occs...)
	}
	sortEvents(events)

	c.logger.Info("Fetched events from CalDAV", "count", len(events), "calendar", c.eventsPath)
	return calendar.Bucketize(dates, events), nil
}

// CreateEvent stores a new VEVENT. Date-only start and end create an
// all-day event.
func (c *Client) CreateEvent(ctx context.Context, title, startISO, endISO, description string) (models.Event, error) {
	start, allDay, err := models.ParseISO(startISO, c.location)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to parse event start: %w", err)
	}
	end, _, err := models.ParseISO(endISO, c.location)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to parse event end: %w", err)
	}
	event := models.Event{
		Title:       title,
		Description: description,
		Start:       start,
		End:         end,
		AllDay:      allDay,
	}

	uid := uuid.New().String()
	event.ID = objectPath(c.eventsPath, uid)
	if _, err := c.caldavClient.PutCalendarObject(ctx, event.ID, newCalendar(toVEvent(uid, event, time.Now()))); err != nil {
		return models.Event{}, fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	c.logger.Info("Created event", "path", event.ID, "title", title)
	return event, nil
}

// DeleteEvent removes the calendar object holding the event. For recurring
// events this removes the whole series.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	if err := c.caldavClient.RemoveAll(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	c.logger.Info("Deleted event", "path", id)
	return nil
}

func (c *Client) listCalendars(ctx context.Context) ([]caldav.Calendar, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendars: %w", err)
	}
	return calendars, nil
}

// findCalendar returns the path of the calendar with the matching name.
func findCalendar(calendars []caldav.Calendar, name string) (string, error) {
	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("no calendar found with name '%s'", name)
}

func objectPath(calendarPath, uid string) string {
	return strings.TrimSuffix(calendarPath, "/") + "/" + uid + ".ics"
}

func newCalendar(comp *ical.Component) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, comp)
	return cal
}
