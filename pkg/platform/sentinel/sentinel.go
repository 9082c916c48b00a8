package sentinel

import "errors"

// ErrNotFound is returned (optionally wrapped) by stores when no record
// exists for the requested key. Handlers translate it into a 404.
//
// Validation failures are not errors here; they travel as data.
var ErrNotFound = errors.New("not found")
