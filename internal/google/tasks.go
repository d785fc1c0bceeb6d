package google

import (
	"context"
	"fmt"
	"time"

	gtasks "google.golang.org/api/tasks/v1"

	"bookey/internal/models"
)

const taskStatusCompleted = "completed"

// ListTasks fetches the incomplete tasks of the configured list, earliest
// due date first and undated tasks last.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := c.tasks.Tasks.List(c.taskList).
		ShowCompleted(false).
		ShowHidden(false).
		Pages(ctx, func(page *gtasks.Tasks) error {
			for _, item := range page.Items {
				task := c.toInternalTask(item)
				if !task.Completed {
					tasks = append(tasks, task)
				}
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	models.SortTasks(tasks)
	c.logger.Info("Fetched tasks from Google Tasks", "count", len(tasks), "taskList", c.taskList)
	return tasks, nil
}

// CreateTask inserts a task. Google stores due dates as midnight UTC and
// ignores the time, so only the date of due is sent.
func (c *Client) CreateTask(ctx context.Context, title, notes string, due *time.Time) (models.Task, error) {
	body := &gtasks.Task{Title: title, Notes: notes}
	if due != nil {
		body.Due = due.Format(models.DateLayout) + "T00:00:00.000Z"
	}
	created, err := c.tasks.Tasks.Insert(c.taskList, body).Context(ctx).Do()
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	c.logger.Info("Created task", "id", created.Id, "title", created.Title)
	return c.toInternalTask(created), nil
}

// CompleteTask marks a task as completed.
func (c *Client) CompleteTask(ctx context.Context, id string) error {
	_, err := c.tasks.Tasks.Patch(c.taskList, id, &gtasks.Task{Status: taskStatusCompleted}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to complete task %s: %w", id, err)
	}
	c.logger.Info("Completed task", "id", id)
	return nil
}

// toInternalTask converts a Google task. The due timestamp only carries a
// date, which is kept as midnight in the configured zone.
func (c *Client) toInternalTask(item *gtasks.Task) models.Task {
	task := models.Task{
		ID:        item.Id,
		Title:     item.Title,
		Notes:     item.Notes,
		Completed: item.Status == taskStatusCompleted,
	}
	if len(item.Due) >= len(models.DateLayout) {
		if due, err := time.ParseInLocation(models.DateLayout, item.Due[:len(models.DateLayout)], c.location); err == nil {
			task.Due = &due
		}
	}
	return task
}
