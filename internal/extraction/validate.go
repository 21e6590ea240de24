package extraction

// ValidationReport lists what is missing from an extraction result before
// it can prefill the expense form.
type ValidationReport struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// ValidateExtractedData checks the required fields independently, so a
// single pass reports every problem at once. Vendor and category are
// optional enrichments and are never validated.
func ValidateExtractedData(data ExtractedReceiptData) ValidationReport {
	errors := []string{}

	if data.Amount <= 0 {
		errors = append(errors, "Amount could not be extracted or is invalid")
	}
	if data.Date == "" {
		errors = append(errors, "Date could not be extracted")
	}
	if data.Description == "" {
		errors = append(errors, "Description could not be extracted")
	}

	return ValidationReport{
		IsValid: len(errors) == 0,
		Errors:  errors,
	}
}
