package matcher

import (
	"fmt"
	"time"
)

// Fields adapts a map-shaped item (e.g. a row deserialized from an
// external store) to the core.MatchItem capability using explicit field
// names. The adapter is resolved once at the pipeline boundary: field
// presence is validated here, not per comparison.
type Fields struct {
	title   string
	body    string
	created time.Time
}

// NewFields validates that titleField and contentField exist on data and
// hold strings, returning ErrInvalidField otherwise. A "created_at"
// entry of type time.Time is picked up for tie-breaking when present.
func NewFields(data map[string]any, titleField, contentField string) (*Fields, error) {
	title, err := stringField(data, titleField)
	if err != nil {
		return nil, err
	}
	body, err := stringField(data, contentField)
	if err != nil {
		return nil, err
	}

	f := &Fields{title: title, body: body}
	if created, ok := data["created_at"].(time.Time); ok {
		f.created = created
	}

	return f, nil
}

func stringField(data map[string]any, field string) (string, error) {
	raw, ok := data[field]
	if !ok {
		return "", fmt.Errorf("field %q: %w", field, ErrInvalidField)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q is %T, want string: %w", field, raw, ErrInvalidField)
	}
	return s, nil
}

// Title implements core.MatchItem.
func (f *Fields) Title() string { return f.title }

// Body implements core.MatchItem.
func (f *Fields) Body() string { return f.body }

// Created implements core.MatchItem.
func (f *Fields) Created() time.Time { return f.created }
