package dto

// CreateCourseRequest creates a course owned by the invoking teacher.
type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"priceCents" validate:"min=0"`
	Published   bool   `json:"published,omitempty"`
}

// UpdateCourseRequest edits course fields.
type UpdateCourseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int64  `json:"priceCents,omitempty"`
	Published   *bool   `json:"published,omitempty"`
}

// CreateModuleRequest adds an ordered module to a course.
type CreateModuleRequest struct {
	Title    string `json:"title" validate:"required"`
	Position int    `json:"position" validate:"min=0"`
}

// CreateLessonRequest adds a lesson to a module.
type CreateLessonRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content,omitempty"`
	Position int    `json:"position" validate:"min=0"`
}

// UpdateLessonRequest edits lesson fields.
type UpdateLessonRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Position *int    `json:"position,omitempty"`
}
