package caldav

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"bookey/internal/models"
)

// ListTasks queries the VTODOs of the task calendar and returns the
// incomplete ones, earliest due date first.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	objects, err := c.caldavClient.QueryCalendar(ctx, c.tasksPath, &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{Name: ical.CompCalendar, AllProps: true, AllComps: true},
		CompFilter: caldav.CompFilter{
			Name:  ical.CompCalendar,
			Comps: []caldav.CompFilter{{Name: ical.CompToDo}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}

	var tasks []models.Task
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, child := range obj.Data.Children {
			if child.Name != ical.CompToDo {
				continue
			}
			if task := parseTask(obj.Path, child, c.location); !task.Completed {
				tasks = append(tasks, task)
			}
		}
	}
	models.SortTasks(tasks)
	c.logger.Info("Fetched tasks from CalDAV", "count", len(tasks), "calendar", c.tasksPath)
	return tasks, nil
}

// CreateTask stores a new VTODO. Only the date of due is kept.
func (c *Client) CreateTask(ctx context.Context, title, notes string, due *time.Time) (models.Task, error) {
	uid := uuid.New().String()
	task := models.Task{ID: objectPath(c.tasksPath, uid), Title: title, Notes: notes}
	if due != nil {
		d := models.StartOfDay(*due, c.location)
		task.Due = &d
	}
	if _, err := c.caldavClient.PutCalendarObject(ctx, task.ID, newCalendar(toVTodo(uid, task, time.Now()))); err != nil {
		return models.Task{}, fmt.Errorf("failed to create task on CalDAV server: %w", err)
	}
	c.logger.Info("Created task", "path", task.ID, "title", title)
	return task, nil
}

// CompleteTask fetches the task object, marks it completed and writes it back.
func (c *Client) CompleteTask(ctx context.Context, id string) error {
	obj, err := c.caldavClient.GetCalendarObject(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch task %s: %w", id, err)
	}
	if obj.Data == nil || !markCompleted(obj.Data, time.Now()) {
		return fmt.Errorf("object %s holds no task", id)
	}
	if _, err := c.caldavClient.PutCalendarObject(ctx, id, obj.Data); err != nil {
		return fmt.Errorf("failed to complete task %s: %w", id, err)
	}
	c.logger.Info("Completed task", "path", id)
	return nil
}
