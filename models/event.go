package models

// Category classifies a timeline event.
type Category string

const (
	CategoryDeadline Category = "Deadline"
	CategoryTesting  Category = "Testing"
	CategoryVisit    Category = "Visit"
	CategoryToDo     Category = "To-Do"
	CategoryOther    Category = "Other"
)

// Categories lists every event category in display order.
var Categories = []Category{CategoryDeadline, CategoryTesting, CategoryVisit, CategoryToDo, CategoryOther}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Event is an entry in the flat, dated event log.
type Event struct {
	ID          string   `json:"id" validate:"required,nonempty"`
	Title       string   `json:"title" validate:"required,nonempty"`
	Date        string   `json:"date" validate:"required,isodate"`
	Category    Category `json:"category" validate:"required,oneof=Deadline Testing Visit To-Do Other"`
	Description string   `json:"description,omitempty"`
}

// CloneEvents copies an event slice.
func CloneEvents(events []Event) []Event {
	if events == nil {
		return nil
	}
	return append([]Event(nil), events...)
}

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry of an assistant transcript.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
