package task

import (
	"slices"
	"strings"

	"github.com/edutate/vanessa/models"
	"github.com/edutate/vanessa/types"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EventInput holds the editable fields of an event.
type EventInput struct {
	Title       string          `json:"title"`
	Date        string          `json:"date"`
	Category    models.Category `json:"category"`
	Description string          `json:"description,omitempty"`
}

// NewEventID mints a fresh event id.
var NewEventID = func() string {
	return "evt-" + uuid.NewString()
}

var titleCaser = cases.Title(language.English)

// NormalizeCategory maps free-form input such as "deadline" or "TO-DO"
// onto a known category. Empty input yields CategoryOther.
func NormalizeCategory(c models.Category) (models.Category, error) {
	raw := strings.TrimSpace(string(c))
	if raw == "" {
		return models.CategoryOther, nil
	}
	normalized := models.Category(titleCaser.String(strings.ToLower(raw)))
	if normalized == "To-do" {
		normalized = models.CategoryToDo
	}
	if !normalized.Valid() {
		return "", types.NewValidationError("category", "category must be one of Deadline, Testing, Visit, To-Do, Other")
	}
	return normalized, nil
}

func (in EventInput) normalize() (EventInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	if in.Title == "" {
		return in, types.NewValidationError("title", "event title is required")
	}
	if !models.IsISODate(in.Date) {
		return in, types.NewValidationError("date", "event date must be formatted YYYY-MM-DD")
	}
	cat, err := NormalizeCategory(in.Category)
	if err != nil {
		return in, err
	}
	in.Category = cat
	return in, nil
}

// UpsertEvent replaces the event with eventID, or appends a new event
// when eventID is empty.
func UpsertEvent(events []models.Event, in EventInput, eventID string) ([]models.Event, models.Event, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, models.Event{}, err
	}

	ev := models.Event{
		ID:          eventID,
		Title:       in.Title,
		Date:        in.Date,
		Category:    in.Category,
		Description: in.Description,
	}

	if eventID != "" {
		i := slices.IndexFunc(events, func(e models.Event) bool { return e.ID == eventID })
		if i < 0 {
			return nil, models.Event{}, types.NewNotFoundError("event", eventID)
		}
		next := models.CloneEvents(events)
		next[i] = ev
		return next, ev, nil
	}

	ev.ID = NewEventID()
	next := append(models.CloneEvents(events), ev)
	return next, ev, nil
}

// DeleteEvent removes the event with eventID. Deleting an absent id is
// not an error.
func DeleteEvent(events []models.Event, eventID string) []models.Event {
	return slices.DeleteFunc(models.CloneEvents(events), func(e models.Event) bool { return e.ID == eventID })
}
