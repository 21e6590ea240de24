package expense

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aditya-raulji/expense-scanner/internal/extraction"
)

// IDGenerator generates unique IDs for expenses and reports
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// Extractor runs OCR and heuristic field extraction on a receipt image
type Extractor interface {
	ExtractTextFromImage(imageData []byte, contentType string, progress func(float64)) (string, extraction.ExtractedReceiptData, error)
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// ScanResult is what a receipt scan hands back to the form: the draft
// expense, the raw and extracted data, the form prefill and the
// per-field validation report. Nothing is persisted yet.
type ScanResult struct {
	Expense    *Expense                        `json:"expense"`
	RawText    string                          `json:"raw_text"`
	Extracted  extraction.ExtractedReceiptData `json:"extracted"`
	Prefill    extraction.FormPrefill          `json:"prefill"`
	Validation extraction.ValidationReport     `json:"validation"`
}

// Service handles expense operations
type Service struct {
	db          DB
	extractor   Extractor
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, extractor Extractor, storage Storage) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, extractor Extractor, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		extractor:   extractor,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	// Get the extension
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	// Remove special characters, keep only alphanumeric, spaces, hyphens, and underscores
	reg := regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	base = reg.ReplaceAllString(base, "")

	// Replace multiple spaces with single space
	reg = regexp.MustCompile(`\s+`)
	base = reg.ReplaceAllString(base, " ")

	// Trim spaces
	base = strings.TrimSpace(base)

	// Truncate to reasonable length (50 chars for base, plus extension)
	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	// If base is empty after sanitization, use a default
	if base == "" {
		base = "receipt"
	}

	return base + ext
}

// ScanReceipt stores the receipt file, runs OCR plus field extraction and
// returns a draft expense with the form prefill and validation report.
// The expense is not saved to the database; the caller reviews the
// prefilled form and submits via CreateExpense.
func (s *Service) ScanReceipt(filename string, data []byte, contentType string) (*ScanResult, error) {
	// Generate unique ID
	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	// Sanitize filename to clean up phone-generated long filenames
	cleanFilename := sanitizeFilename(filename)

	// Save file to storage
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, cleanFilename), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	// Recognize and extract fields
	rawText, extracted, err := s.extractor.ExtractTextFromImage(data, contentType, nil)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		// Clean up the saved file since scanning failed
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}

	validation := extraction.ValidateExtractedData(extracted)
	prefill := extraction.FormatForForm(extracted)

	// Parse date
	date, err := time.Parse("2006-01-02", extracted.Date)
	if err != nil {
		date = now
	}

	// Convert amount from dollars (float) to cents (int)
	amountCents := int(extracted.Amount * 100)

	draft := &Expense{
		ID:          id,
		Description: extracted.Description,
		Date:        date,
		Amount:      amountCents,
		Currency:    prefill.Currency,
		Category:    extracted.Category,
		Vendor:      extracted.Vendor,
		Status:      StatusDraft,
		Filename:    savedPath,
		ContentType: contentType,
	}

	return &ScanResult{
		Expense:    draft,
		RawText:    rawText,
		Extracted:  extracted,
		Prefill:    prefill,
		Validation: validation,
	}, nil
}

// CreateExpense saves a reviewed expense to the database
func (s *Service) CreateExpense(expense *Expense) error {
	now := s.timeSource.Now()

	if expense.ID == "" {
		expense.ID = s.idGenerator.Generate()
	}
	if expense.Status == "" || expense.Status == StatusDraft {
		expense.Status = StatusSubmitted
	}
	expense.CreatedAt = now
	expense.UpdatedAt = now

	if err := s.db.SaveExpense(expense); err != nil {
		return fmt.Errorf("saving expense to database: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID
func (s *Service) GetExpense(id string) (*Expense, error) {
	expense, err := s.db.GetExpense(id)
	if err != nil {
		return nil, fmt.Errorf("getting expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns all expenses
func (s *Service) ListExpenses() ([]*Expense, error) {
	expenses, err := s.db.ListExpenses()
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an expense and its receipt file
func (s *Service) DeleteExpense(id string) error {
	expense, err := s.db.GetExpense(id)
	if err != nil {
		return fmt.Errorf("getting expense for deletion: %w", err)
	}

	// Delete file
	if err := s.storage.Delete(expense.Filename); err != nil {
		// Log error but continue with database deletion
		slog.Warn("Failed to delete file", "filename", expense.Filename, "error", err)
	}

	// Delete from database
	if err := s.db.DeleteExpense(id); err != nil {
		return fmt.Errorf("deleting expense from database: %w", err)
	}
	return nil
}

// GetExpenseFile retrieves the receipt file data for an expense
func (s *Service) GetExpenseFile(id string) ([]byte, string, error) {
	expense, err := s.db.GetExpense(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting expense: %w", err)
	}

	data, err := s.storage.Get(expense.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting expense file: %w", err)
	}

	return data, expense.ContentType, nil
}

// CreateReport bundles the specified expenses into a new report pending review
func (s *Service) CreateReport(expenseIDs []string) (*Report, error) {
	if len(expenseIDs) == 0 {
		return nil, fmt.Errorf("at least one expense is required")
	}

	now := s.timeSource.Now()
	id := s.idGenerator.Generate()

	// Validate all expenses exist and calculate total
	var totalAmount int
	for _, expenseID := range expenseIDs {
		expense, err := s.db.GetExpense(expenseID)
		if err != nil {
			return nil, fmt.Errorf("getting expense %s: %w", expenseID, err)
		}
		if expense.ReportID != "" {
			return nil, fmt.Errorf("expense %s is already in a report", expenseID)
		}
		if expense.Status != StatusSubmitted {
			return nil, fmt.Errorf("expense %s is not submitted", expenseID)
		}
		totalAmount += expense.Amount
	}

	report := &Report{
		ID:          id,
		ExpenseIDs:  expenseIDs,
		TotalAmount: totalAmount,
		Status:      ReportPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Save report
	if err := s.db.SaveReport(report); err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}

	// Mark expenses as belonging to the report
	for _, expenseID := range expenseIDs {
		expense, err := s.db.GetExpense(expenseID)
		if err != nil {
			return nil, fmt.Errorf("getting expense %s for update: %w", expenseID, err)
		}
		expense.ReportID = id
		expense.UpdatedAt = now
		if err := s.db.SaveExpense(expense); err != nil {
			return nil, fmt.Errorf("updating expense %s: %w", expenseID, err)
		}
	}

	return report, nil
}

// GetReport retrieves a report by ID
func (s *Service) GetReport(id string) (*Report, error) {
	report, err := s.db.GetReport(id)
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}
	return report, nil
}

// GetReportWithExpenses retrieves a report with its associated expenses
func (s *Service) GetReportWithExpenses(id string) (*Report, []*Expense, error) {
	report, err := s.db.GetReport(id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting report: %w", err)
	}

	expenses := make([]*Expense, 0, len(report.ExpenseIDs))
	for _, expenseID := range report.ExpenseIDs {
		expense, err := s.db.GetExpense(expenseID)
		if err != nil {
			return nil, nil, fmt.Errorf("getting expense %s: %w", expenseID, err)
		}
		expenses = append(expenses, expense)
	}

	return report, expenses, nil
}

// ListReports returns all reports
func (s *Service) ListReports() ([]*Report, error) {
	reports, err := s.db.ListReports()
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return reports, nil
}

// ApproveReport marks a pending report and its expenses as approved
func (s *Service) ApproveReport(id string) (*Report, error) {
	return s.resolveReport(id, ReportApproved, StatusApproved)
}

// RejectReport marks a pending report as rejected. Its expenses are
// released from the report so they can be corrected and resubmitted.
func (s *Service) RejectReport(id string) (*Report, error) {
	return s.resolveReport(id, ReportRejected, StatusRejected)
}

func (s *Service) resolveReport(id string, reportStatus ReportStatus, expenseStatus ExpenseStatus) (*Report, error) {
	report, err := s.db.GetReport(id)
	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}
	if report.Status != ReportPending {
		return nil, fmt.Errorf("report %s is already %s", id, report.Status)
	}

	now := s.timeSource.Now()
	report.Status = reportStatus
	report.UpdatedAt = now
	if err := s.db.SaveReport(report); err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}

	for _, expenseID := range report.ExpenseIDs {
		expense, err := s.db.GetExpense(expenseID)
		if err != nil {
			return nil, fmt.Errorf("getting expense %s for update: %w", expenseID, err)
		}
		expense.Status = expenseStatus
		if expenseStatus == StatusRejected {
			expense.ReportID = ""
		}
		expense.UpdatedAt = now
		if err := s.db.SaveExpense(expense); err != nil {
			return nil, fmt.Errorf("updating expense %s: %w", expenseID, err)
		}
	}

	return report, nil
}
