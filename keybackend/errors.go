package keybackend

import "errors"

// ErrEmptySecret is returned when a secret source yields an empty secret.
var ErrEmptySecret = errors.New("secret is empty")
