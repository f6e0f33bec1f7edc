package dto

import "time"

// CreateGroupRequest creates a student group.
type CreateGroupRequest struct {
	Name      string     `json:"name" validate:"required"`
	CourseID  *string    `json:"courseId,omitempty"`
	TeacherID *string    `json:"teacherId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// UpdateGroupRequest edits group fields.
type UpdateGroupRequest struct {
	Name      *string    `json:"name,omitempty"`
	CourseID  *string    `json:"courseId,omitempty"`
	TeacherID *string    `json:"teacherId,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Active    *bool      `json:"active,omitempty"`
}

// AddGroupMemberRequest enrolls a student into a group.
type AddGroupMemberRequest struct {
	UserID string `json:"userId" validate:"required"`
}
