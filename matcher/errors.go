package matcher

import "errors"

// ErrInvalidField is returned when an item cannot expose the title and
// content fields the matcher compares on.
var ErrInvalidField = errors.New("item missing title or content field")
