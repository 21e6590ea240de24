package extraction

import "strconv"

// FormPrefill is ExtractedReceiptData formatted for direct use in the
// expense submission form. It is a pure projection; no new extraction
// happens here.
type FormPrefill struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ExpenseDate string `json:"expenseDate"`
	Vendor      string `json:"vendor"`
}

// FormatForForm projects extracted data into form fields. An absent amount
// becomes the empty string.
func FormatForForm(data ExtractedReceiptData) FormPrefill {
	amount := ""
	if data.Amount > 0 {
		amount = strconv.FormatFloat(data.Amount, 'f', 2, 64)
	}

	return FormPrefill{
		Amount:      amount,
		Currency:    detectCurrency(data),
		Category:    data.Category,
		Description: data.Description,
		ExpenseDate: data.Date,
		Vendor:      data.Vendor,
	}
}

// detectCurrency always returns USD. Receipts rarely carry an unambiguous
// currency marker once OCR has mangled the symbols, so the form defaults
// to the company currency and the user corrects it when needed.
func detectCurrency(ExtractedReceiptData) string {
	return "USD"
}
