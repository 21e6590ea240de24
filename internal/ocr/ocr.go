package ocr

// Engine defines the interface for optical character recognition. The
// engine is a black box: it gets an image and returns the recognized plain
// text. The progress callback, when non-nil, receives a recognition
// progress fraction in [0,1] and has no effect on the output.
type Engine interface {
	// Recognize converts a receipt image/PDF to raw text
	Recognize(imageData []byte, contentType string, progress func(float64)) (string, error)
	// Close closes the engine and releases resources
	Close() error
}
