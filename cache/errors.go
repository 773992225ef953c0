package cache

import "fmt"

// ErrStoreClosed is returned when a write hits a closed store.
var ErrStoreClosed = fmt.Errorf("store is closed")
