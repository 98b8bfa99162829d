package events

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Event is a typed protocol event. Args returns the values in ABI input
// order, indexed and non-indexed alike.
type Event interface {
	EventName() string
	Args() []interface{}
}

// CoreMethodsPause is emitted when the core pause flag flips.
type CoreMethodsPause struct{ NewPausedStatus bool }

// BotMethodsPause is emitted when the bot pause flag flips.
type BotMethodsPause struct{ NewPausedStatus bool }

// OperatorMethodsPause is emitted when the operator pause flag flips.
type OperatorMethodsPause struct{ NewPausedStatus bool }

// WithdrawalsPause is emitted when the withdrawals pause flag flips.
type WithdrawalsPause struct{ NewPausedStatus bool }

func (e CoreMethodsPause) EventName() string       { return CoreMethodsPauseName }
func (e BotMethodsPause) EventName() string        { return BotMethodsPauseName }
func (e OperatorMethodsPause) EventName() string   { return OperatorMethodsPauseName }
func (e WithdrawalsPause) EventName() string       { return WithdrawalsPauseName }
func (e CoreMethodsPause) Args() []interface{}     { return []interface{}{e.NewPausedStatus} }
func (e BotMethodsPause) Args() []interface{}      { return []interface{}{e.NewPausedStatus} }
func (e OperatorMethodsPause) Args() []interface{} { return []interface{}{e.NewPausedStatus} }
func (e WithdrawalsPause) Args() []interface{}     { return []interface{}{e.NewPausedStatus} }

// AddressChange is the payload shared by the Updated* registry events.
// OldAddress is whatever was stored before, including the zero address.
type AddressChange struct {
	NewAddress common.Address
	OldAddress common.Address
}

func (c AddressChange) Args() []interface{} {
	return []interface{}{c.NewAddress, c.OldAddress}
}

type (
	UpdatedSwETH                struct{ AddressChange }
	UpdatedDepositManager       struct{ AddressChange }
	UpdatedNodeOperatorRegistry struct{ AddressChange }
	UpdatedSwellTreasury        struct{ AddressChange }
)

func (UpdatedSwETH) EventName() string                { return UpdatedSwETHName }
func (UpdatedDepositManager) EventName() string       { return UpdatedDepositManagerName }
func (UpdatedNodeOperatorRegistry) EventName() string { return UpdatedNodeOperatorRegistryName }
func (UpdatedSwellTreasury) EventName() string        { return UpdatedSwellTreasuryName }

// ETHDepositReceived is emitted once per accepted deposit.
// NewTotalETHDeposited is the cumulative amount deposited so far.
type ETHDepositReceived struct {
	From                 common.Address
	Amount               *uint256.Int
	SwETHMinted          *uint256.Int
	NewTotalETHDeposited *uint256.Int
}

func (ETHDepositReceived) EventName() string { return ETHDepositReceivedName }

func (e ETHDepositReceived) Args() []interface{} {
	return []interface{}{e.From, e.Amount, e.SwETHMinted, e.NewTotalETHDeposited}
}

// Transfer is the ERC20 transfer event, used by swETH and the token ledger.
// A mint has the zero address as From.
type Transfer struct {
	From  common.Address
	To    common.Address
	Value *uint256.Int
}

func (Transfer) EventName() string { return TransferName }

func (e Transfer) Args() []interface{} {
	return []interface{}{e.From, e.To, e.Value}
}

// AddedToWhitelist is emitted when an address first becomes a member.
type AddedToWhitelist struct {
	Address common.Address
}

func (AddedToWhitelist) EventName() string { return AddedToWhitelistName }

func (e AddedToWhitelist) Args() []interface{} {
	return []interface{}{e.Address}
}

// OwnershipTransferred is emitted when the whitelist owner changes.
type OwnershipTransferred struct {
	PreviousOwner common.Address
	NewOwner      common.Address
}

func (OwnershipTransferred) EventName() string { return OwnershipTransferredName }

func (e OwnershipTransferred) Args() []interface{} {
	return []interface{}{e.PreviousOwner, e.NewOwner}
}

// RoleChange is the payload of RoleGranted and RoleRevoked.
type RoleChange struct {
	Role    common.Hash
	Account common.Address
	Sender  common.Address
}

func (c RoleChange) Args() []interface{} {
	return []interface{}{c.Role, c.Account, c.Sender}
}

type (
	RoleGranted struct{ RoleChange }
	RoleRevoked struct{ RoleChange }
)

func (RoleGranted) EventName() string { return RoleGrantedName }
func (RoleRevoked) EventName() string { return RoleRevokedName }

// Reprice is emitted when the pooled-asset total is updated.
type Reprice struct {
	NewTotalPooledAsset      *uint256.Int
	PreviousTotalPooledAsset *uint256.Int
	NewSwETHToETHRate        *uint256.Int
}

func (Reprice) EventName() string { return RepriceName }

func (e Reprice) Args() []interface{} {
	return []interface{}{e.NewTotalPooledAsset, e.PreviousTotalPooledAsset, e.NewSwETHToETHRate}
}
