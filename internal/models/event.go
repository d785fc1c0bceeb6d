package models

import "time"

// Event represents a calendar event as the UI sees it.
// This is an internal representation, independent of any specific calendar provider.
type Event struct {
	ID          string    // Backend-assigned identifier (Google event ID, CalDAV object path)
	Title       string    // Summary or title of the event
	Description string    // Detailed description of the event
	Start       time.Time // Start of the event; midnight for all-day events
	End         time.Time // End of the event; last covered day for all-day events
	AllDay      bool      // True when the start carries no time of day
}

// Date returns the calendar date the event starts on, as YYYY-MM-DD.
func (e Event) Date() string {
	return DateKey(e.Start)
}

// Task represents a to-do item.
type Task struct {
	ID        string     // Backend-assigned identifier
	Title     string     // Title of the task
	Notes     string     // Free-form notes
	Due       *time.Time // Optional due date, midnight in the configured zone
	Completed bool       // Completion status
}

// DueKey returns the due date as YYYY-MM-DD, or "" when the task has none.
func (t Task) DueKey() string {
	if t.Due == nil {
		return ""
	}
	return DateKey(*t.Due)
}
