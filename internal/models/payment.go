package models

import "time"

// PaymentStatus enumerates the payment lifecycle.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusCanceled PaymentStatus = "CANCELED"
)

// Payment is a student's payment record for a course.
type Payment struct {
	ID          string        `db:"id" json:"id"`
	StudentID   string        `db:"student_id" json:"student_id"`
	CourseID    string        `db:"course_id" json:"course_id"`
	AmountCents int64         `db:"amount_cents" json:"amount_cents"`
	Currency    string        `db:"currency" json:"currency"`
	Status      PaymentStatus `db:"status" json:"status"`
	PaidAt      *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// PaymentFilter narrows down payment listings.
type PaymentFilter struct {
	StudentID string
	CourseID  string
	Status    *PaymentStatus
	Page      int
	PageSize  int
}
