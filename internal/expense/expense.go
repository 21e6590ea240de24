package expense

import "time"

// ExpenseStatus tracks an expense through the submission/approval workflow
type ExpenseStatus string

const (
	StatusDraft     ExpenseStatus = "draft"
	StatusSubmitted ExpenseStatus = "submitted"
	StatusApproved  ExpenseStatus = "approved"
	StatusRejected  ExpenseStatus = "rejected"
)

// ReportStatus tracks an expense report through manager review
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportApproved ReportStatus = "approved"
	ReportRejected ReportStatus = "rejected"
)

// Expense represents a single expense with its scanned receipt
type Expense struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Date        time.Time     `json:"date"`
	Amount      int           `json:"amount"` // Amount in cents
	Currency    string        `json:"currency"`
	Category    string        `json:"category"`
	Vendor      string        `json:"vendor"`
	Status      ExpenseStatus `json:"status"`
	Filename    string        `json:"filename"`
	ContentType string        `json:"content_type"`
	ReportID    string        `json:"report_id,omitempty"` // ID of the report this expense belongs to
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Report represents a bundle of submitted expenses awaiting manager review
type Report struct {
	ID          string       `json:"id"`
	ExpenseIDs  []string     `json:"expense_ids"` // IDs of expenses in this report
	TotalAmount int          `json:"total_amount"` // Total amount in cents
	Status      ReportStatus `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
