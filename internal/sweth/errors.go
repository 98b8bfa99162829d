package sweth

import "github.com/swell-network/swell-core/pkg/revert"

// Engine failure kinds.
var (
	ErrUnauthorized        = revert.ErrUnauthorized
	ErrArithmeticOverflow  = revert.ErrArithmeticOverflow
	ErrZeroAddress         = revert.ErrZeroAddress
	ErrDepositsPaused      = revert.New("CoreMethodsPaused")
	ErrNotInWhitelist      = revert.New("NotInWhitelist")
	ErrInvalidDeposit      = revert.New("InvalidETHDeposit")
	ErrInsufficientBalance = revert.New("InsufficientBalance")
	ErrBotMethodsPaused    = revert.New("BotMethodsPaused")
	ErrNothingToReprice    = revert.New("NothingToReprice")
	ErrInvalidReprice      = revert.New("InvalidReprice")
)
