// AngelaMos | 2026
// status.go

package post

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/nhpc-ltd/blog-api/internal/core"
)

// Status is the publication state of a post. The zero value is UnderReview.
type Status int

const (
	UnderReview Status = iota
	Published
	Rejected
)

// Stored literals predate the enum and are kept for data compatibility.
const (
	literalUnderReview = "false"
	literalPublished   = "true"
	literalRejected    = "reject"
)

func (s Status) String() string {
	switch s {
	case UnderReview:
		return "under_review"
	case Published:
		return "published"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func (s Status) literal() (string, error) {
	switch s {
	case UnderReview:
		return literalUnderReview, nil
	case Published:
		return literalPublished, nil
	case Rejected:
		return literalRejected, nil
	}
	return "", fmt.Errorf("unknown post status %d: %w", int(s), core.ErrInvalidInput)
}

// ParseStatus accepts both the API names and the stored literals.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "under_review", literalUnderReview:
		return UnderReview, nil
	case "published", literalPublished:
		return Published, nil
	case "rejected", literalRejected:
		return Rejected, nil
	}
	return 0, fmt.Errorf("unknown post status %q: %w", s, core.ErrInvalidInput)
}

func (s Status) Value() (driver.Value, error) {
	return s.literal()
}

func (s *Status) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan post status: unsupported type %T", src)
	}

	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Transition is a named edge of the publication state machine.
type Transition int

const (
	// Submit is applied by create and edit. It re-enters review from any
	// state, including Rejected.
	Submit Transition = iota
	Publish
	Reject
	Unpublish
)

func (t Transition) String() string {
	switch t {
	case Submit:
		return "submit"
	case Publish:
		return "publish"
	case Reject:
		return "reject"
	case Unpublish:
		return "unpublish"
	}
	return fmt.Sprintf("Transition(%d)", int(t))
}

// Apply returns the state reached by taking t from the given state.
func (t Transition) Apply(from Status) (Status, error) {
	switch {
	case t == Submit:
		return UnderReview, nil
	case t == Publish && from == UnderReview:
		return Published, nil
	case t == Reject && from == UnderReview:
		return Rejected, nil
	case t == Unpublish && from == Published:
		return UnderReview, nil
	}
	return from, fmt.Errorf("cannot %s a post that is %s: %w", t, from, core.ErrInvalidTransition)
}
