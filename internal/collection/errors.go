package collection

// ExtractionError reports a page that lacks the expected markup or carries an unreadable date.
type ExtractionError struct {
	Reason string
	Text   string // offending raw text, when there is one
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := e.Reason
	if e.Text != "" {
		msg += ": " + e.Text
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

const (
	reasonDateNotFound   = "date element not found"
	reasonColourNotFound = "colour element not found"
	reasonUnparseable    = "unparseable date"
	reasonParseHTML      = "parse html"
)
