package entity

import "time"

// Session holds the extracted text of one uploaded document.
// It is created when extraction finishes (successfully or not) and is
// immutable afterwards except for being replaced wholesale.
type Session struct {
	ID        string
	Text      string
	CreatedAt time.Time
	Extracted bool // false means extraction failed; Text is empty then
}
