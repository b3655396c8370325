// Package planner reconciles the plan against free-form progress updates
// using a structured-output oracle, and validates everything the oracle
// returns before it is allowed near the caller's state.
package planner

import (
	"fmt"
	"strings"

	"github.com/edutate/vanessa/models"
	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	models.RegisterValidations(validate)
}

// SchemaType names a JSON value kind in a response schema.
type SchemaType string

const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of the JSON the oracle must
// return. Transports translate it into their native form.
type Schema struct {
	Type             SchemaType         `json:"type"`
	Description      string             `json:"description,omitempty"`
	Properties       map[string]*Schema `json:"properties,omitempty"`
	PropertyOrdering []string           `json:"propertyOrdering,omitempty"`
	Required         []string           `json:"required,omitempty"`
	Items            *Schema            `json:"items,omitempty"`
	Enum             []string           `json:"enum,omitempty"`
}

func str(desc string) *Schema { return &Schema{Type: TypeString, Description: desc} }

func object(props map[string]*Schema, order []string, required ...string) *Schema {
	return &Schema{Type: TypeObject, Properties: props, PropertyOrdering: order, Required: required}
}

func array(items *Schema) *Schema { return &Schema{Type: TypeArray, Items: items} }

// PlanSchema describes a complete plan: an array of sections, each with
// items, each with todos and optional subtasks.
func PlanSchema() *Schema {
	subtask := object(map[string]*Schema{
		"id":          str("Stable subtask id. Keep existing ids unchanged."),
		"text":        str("Subtask text."),
		"isCompleted": {Type: TypeBoolean},
	}, []string{"id", "text", "isCompleted"}, "id", "text", "isCompleted")

	todo := object(map[string]*Schema{
		"id":          str("Stable task id. Keep existing ids unchanged; invent a new unique id for new tasks."),
		"text":        str("What needs to be done."),
		"isCompleted": {Type: TypeBoolean},
		"priority": {
			Type: TypeString,
			Enum: []string{string(models.PriorityHigh), string(models.PriorityMedium), string(models.PriorityLow)},
		},
		"dueDate":  str("Due date formatted YYYY-MM-DD."),
		"notes":    str("Free-form notes."),
		"subtasks": array(subtask),
	}, []string{"id", "text", "isCompleted", "priority", "dueDate", "notes", "subtasks"}, "id", "text", "isCompleted")

	item := object(map[string]*Schema{
		"id":          str("Stable item id. Keep existing ids unchanged."),
		"title":       str("Milestone title."),
		"date":        str("Human-readable date or date range."),
		"description": str("Milestone description."),
		"todos":       array(todo),
		"status": {
			Type:        TypeString,
			Description: "todo when no task is complete, done when all are, otherwise in-progress.",
			Enum:        []string{string(models.StatusTodo), string(models.StatusInProgress), string(models.StatusDone)},
		},
	}, []string{"id", "title", "date", "description", "todos", "status"}, "id", "title", "date", "description", "todos", "status")

	section := object(map[string]*Schema{
		"id":    str("Stable section id. Keep existing ids unchanged."),
		"title": str("Section title."),
		"items": array(item),
	}, []string{"id", "title", "items"}, "id", "title", "items")

	return array(section)
}

// Violation describes one reason a candidate plan was rejected.
type Violation struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationResult contains the result of plan validation
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

func (r *ValidationResult) add(field, tag, message string, value any) {
	r.Valid = false
	r.Violations = append(r.Violations, Violation{Field: field, Tag: tag, Value: value, Message: message})
}

// ErrorSummary returns a single string summarizing all violations
func (r ValidationResult) ErrorSummary() string {
	return strings.Join(r.Messages(), "; ")
}

// Messages returns the violation messages in discovery order.
func (r ValidationResult) Messages() []string {
	msgs := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		msgs = append(msgs, v.Message)
	}
	return msgs
}

// ValidatePlan checks a candidate plan on its own and against the prior
// plan it was derived from. A candidate passes only if it is well formed,
// every id is unique within its kind, every item status matches its
// todos, and nothing the prior plan contained has been dropped or
// reordered at section level.
func ValidatePlan(prior, candidate models.Plan) ValidationResult {
	result := ValidationResult{Valid: true}

	if len(candidate) == 0 {
		result.add("plan", "required", "plan must contain at least one section", nil)
		return result
	}

	for i, s := range candidate {
		validateTags(&result, fmt.Sprintf("sections[%d]", i), s)
	}

	sectionIDs := map[string]bool{}
	itemIDs := map[string]bool{}
	todoIDs := map[string]bool{}
	checkUnique := func(seen map[string]bool, kind, id string) {
		if id == "" {
			return
		}
		if seen[id] {
			result.add(kind+".id", "unique", fmt.Sprintf("duplicate %s id %q", kind, id), id)
			return
		}
		seen[id] = true
	}

	for _, s := range candidate {
		checkUnique(sectionIDs, "section", s.ID)
		for _, it := range s.Items {
			checkUnique(itemIDs, "item", it.ID)
			if want := models.DeriveStatus(it.Todos); it.Status != want {
				result.add("item.status", "rollup",
					fmt.Sprintf("item %q has status %q but its tasks imply %q", it.ID, it.Status, want), it.Status)
			}
			for _, t := range it.Todos {
				checkUnique(todoIDs, "task", t.ID)
			}
		}
	}

	checkPreserved(&result, prior, sectionIDs, itemIDs, todoIDs)
	checkSectionOrder(&result, prior, candidate)
	return result
}

func validateTags(result *ValidationResult, prefix string, s any) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		result.add(prefix, "invalid", err.Error(), nil)
		return
	}
	for _, fe := range fieldErrs {
		field := prefix + strings.TrimPrefix(fe.Namespace(), "Section")
		result.add(field, fe.Tag(), formatValidationError(field, fe), fe.Value())
	}
}

func checkPreserved(result *ValidationResult, prior models.Plan, sections, items, todos map[string]bool) {
	for _, s := range prior {
		if !sections[s.ID] {
			result.add("section.id", "preserved", fmt.Sprintf("section %q was removed", s.ID), s.ID)
		}
		for _, it := range s.Items {
			if !items[it.ID] {
				result.add("item.id", "preserved", fmt.Sprintf("item %q was removed", it.ID), it.ID)
			}
			for _, t := range it.Todos {
				if !todos[t.ID] {
					result.add("task.id", "preserved", fmt.Sprintf("task %q was removed", t.ID), t.ID)
				}
			}
		}
	}
}

// checkSectionOrder requires prior sections to keep their relative order.
// New sections may appear anywhere.
func checkSectionOrder(result *ValidationResult, prior, candidate models.Plan) {
	position := make(map[string]int, len(candidate))
	for i, s := range candidate {
		if _, dup := position[s.ID]; !dup {
			position[s.ID] = i
		}
	}
	last := -1
	for _, s := range prior {
		pos, ok := position[s.ID]
		if !ok {
			continue
		}
		if pos < last {
			result.add("section.order", "order", fmt.Sprintf("section %q moved out of chronological order", s.ID), s.ID)
			continue
		}
		last = pos
	}
}

// formatValidationError creates a human-readable error message
func formatValidationError(field string, err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "nonempty":
		return fmt.Sprintf("%s cannot be empty or whitespace", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, err.Param())
	case "isodate":
		return fmt.Sprintf("%s must be formatted YYYY-MM-DD", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, err.Tag())
	}
}
