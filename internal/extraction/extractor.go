package extraction

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aditya-raulji/expense-scanner/internal/ocr"
)

// ErrAlreadyProcessing is returned when an extraction is requested while a
// previous one on the same Extractor has not yet completed. Callers should
// retry later or use a separate instance.
var ErrAlreadyProcessing = errors.New("an extraction is already in progress")

// RecognitionError wraps a failure from the OCR engine.
type RecognitionError struct {
	Err error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognizing text: %v", e.Err)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// extractorState models the single-in-flight contract explicitly.
type extractorState int

const (
	stateIdle extractorState = iota
	stateProcessing
)

// Extractor runs the OCR engine and the parsing cascade as one operation.
// It allows a single in-flight recognition per instance: there is no
// queueing, a second concurrent call fails with ErrAlreadyProcessing.
// Independent instances run fully in parallel.
type Extractor struct {
	engine ocr.Engine
	parser *Parser

	mu    sync.Mutex
	state extractorState
}

// NewExtractor creates an Extractor backed by the given OCR engine.
func NewExtractor(engine ocr.Engine, parser *Parser) *Extractor {
	return &Extractor{
		engine: engine,
		parser: parser,
	}
}

// ExtractTextFromImage recognizes text from an image and parses it into
// structured expense fields. The progress callback, if non-nil, receives
// recognition progress in [0,1]; it is informational only.
func (e *Extractor) ExtractTextFromImage(imageData []byte, contentType string, progress func(float64)) (string, ExtractedReceiptData, error) {
	if err := e.begin(); err != nil {
		return "", ExtractedReceiptData{}, err
	}
	defer e.finish()

	text, err := e.engine.Recognize(imageData, contentType, progress)
	if err != nil {
		return "", ExtractedReceiptData{}, &RecognitionError{Err: err}
	}

	return text, e.parser.ParseExpenseData(text), nil
}

func (e *Extractor) begin() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == stateProcessing {
		return ErrAlreadyProcessing
	}
	e.state = stateProcessing
	return nil
}

func (e *Extractor) finish() {
	e.mu.Lock()
	e.state = stateIdle
	e.mu.Unlock()
}
