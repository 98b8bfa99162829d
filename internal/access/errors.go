package access

import (
	"errors"

	"github.com/swell-network/swell-core/pkg/revert"
)

// Manager failure kinds.
var (
	ErrUnauthorized       = revert.ErrUnauthorized
	ErrAlreadyPaused      = revert.New("AlreadyPaused")
	ErrAlreadyUnpaused    = revert.New("AlreadyUnpaused")
	ErrNoTokensToWithdraw = revert.New("NoTokensToWithdraw")
	ErrLastAdmin          = revert.New("LastAdmin")
)

var (
	ErrUnknownCategory = errors.New("unknown pause category")
	ErrNoAdmin         = errors.New("manager requires an admin")
)
