package handler

import "encoding/json"

type createTaskRequest struct {
	Title       string  `json:"title"       validate:"required,max=255"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	Status      string  `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
	Priority    string  `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date"`
}

type updateTaskRequest struct {
	Title       *string      `json:"title"       validate:"omitempty,min=1,max=255"`
	Description *string      `json:"description" validate:"omitempty,max=5000"`
	Status      *string      `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
	Priority    *string      `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     optionalDate `json:"due_date"`
}

// optionalDate distinguishes three update cases for due_date: absent from
// the request, explicit null (clear), and a date string (re-parse).
type optionalDate struct {
	Present bool
	Value   *string
}

func (o *optionalDate) UnmarshalJSON(b []byte) error {
	o.Present = true
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}
