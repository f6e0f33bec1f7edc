package dto

// PostChatMessageRequest posts a message to a group chat.
type PostChatMessageRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

// BroadcastNotificationRequest fans a notification out to a group.
type BroadcastNotificationRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Body    string `json:"body" validate:"required"`
}

// CreatePaymentRequest opens a pending payment for a student and course.
type CreatePaymentRequest struct {
	StudentID   string `json:"studentId" validate:"required"`
	CourseID    string `json:"courseId" validate:"required"`
	AmountCents int64  `json:"amountCents" validate:"min=1"`
	Currency    string `json:"currency,omitempty"`
}

// CreateUserRequest registers a user with a role.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT"`
}

// UpdateUserRequest edits user fields.
type UpdateUserRequest struct {
	FullName *string `json:"fullName,omitempty"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN TEACHER STUDENT"`
	Active   *bool   `json:"active,omitempty"`
}
