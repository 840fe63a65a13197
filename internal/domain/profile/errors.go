package profile

import "errors"

// Sentinel kinds for profile assembly errors.
var (
	ErrAssemble = errors.New("profile assembly failed")
)
