package engine

import "fmt"

// Notification is a transient message for the presentation layer. Duration
// is counted in frames.
type Notification struct {
	Text     string `json:"text"`
	Color    string `json:"color"`
	Duration int    `json:"duration"`
}

const DefaultNotificationDuration = 50

func (e *Engine) notify(color string, duration int, format string, args ...any) {
	e.notes = append(e.notes, Notification{Text: fmt.Sprintf(format, args...), Color: color, Duration: duration})
}

// PopNotifications returns and clears the pending notifications.
func (e *Engine) PopNotifications() []Notification {
	notes := e.notes
	e.notes = nil
	return notes
}
