// Package events defines the protocol's event ABI and turns typed events
// into EVM-style logs (topics + data) and back.
package events

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Event names.
const (
	CoreMethodsPauseName            = "CoreMethodsPause"
	BotMethodsPauseName             = "BotMethodsPause"
	OperatorMethodsPauseName        = "OperatorMethodsPause"
	WithdrawalsPauseName            = "WithdrawalsPause"
	UpdatedSwETHName                = "UpdatedSwETH"
	UpdatedDepositManagerName       = "UpdatedDepositManager"
	UpdatedNodeOperatorRegistryName = "UpdatedNodeOperatorRegistry"
	UpdatedSwellTreasuryName        = "UpdatedSwellTreasury"
	ETHDepositReceivedName          = "ETHDepositReceived"
	TransferName                    = "Transfer"
	AddedToWhitelistName            = "AddedToWhitelist"
	OwnershipTransferredName        = "OwnershipTransferred"
	RoleGrantedName                 = "RoleGranted"
	RoleRevokedName                 = "RoleRevoked"
	RepriceName                     = "Reprice"
)

const protocolABIJSON = `[
{"type":"event","name":"CoreMethodsPause","anonymous":false,"inputs":[{"name":"newPausedStatus","type":"bool","indexed":false}]},
{"type":"event","name":"BotMethodsPause","anonymous":false,"inputs":[{"name":"newPausedStatus","type":"bool","indexed":false}]},
{"type":"event","name":"OperatorMethodsPause","anonymous":false,"inputs":[{"name":"newPausedStatus","type":"bool","indexed":false}]},
{"type":"event","name":"WithdrawalsPause","anonymous":false,"inputs":[{"name":"newPausedStatus","type":"bool","indexed":false}]},
{"type":"event","name":"UpdatedSwETH","anonymous":false,"inputs":[{"name":"newAddress","type":"address","indexed":false},{"name":"oldAddress","type":"address","indexed":false}]},
{"type":"event","name":"UpdatedDepositManager","anonymous":false,"inputs":[{"name":"newAddress","type":"address","indexed":false},{"name":"oldAddress","type":"address","indexed":false}]},
{"type":"event","name":"UpdatedNodeOperatorRegistry","anonymous":false,"inputs":[{"name":"newAddress","type":"address","indexed":false},{"name":"oldAddress","type":"address","indexed":false}]},
{"type":"event","name":"UpdatedSwellTreasury","anonymous":false,"inputs":[{"name":"newAddress","type":"address","indexed":false},{"name":"oldAddress","type":"address","indexed":false}]},
{"type":"event","name":"ETHDepositReceived","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false},{"name":"swETHMinted","type":"uint256","indexed":false},{"name":"newTotalETHDeposited","type":"uint256","indexed":false}]},
{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
{"type":"event","name":"AddedToWhitelist","anonymous":false,"inputs":[{"name":"_address","type":"address","indexed":true}]},
{"type":"event","name":"OwnershipTransferred","anonymous":false,"inputs":[{"name":"previousOwner","type":"address","indexed":true},{"name":"newOwner","type":"address","indexed":true}]},
{"type":"event","name":"RoleGranted","anonymous":false,"inputs":[{"name":"role","type":"bytes32","indexed":true},{"name":"account","type":"address","indexed":true},{"name":"sender","type":"address","indexed":true}]},
{"type":"event","name":"RoleRevoked","anonymous":false,"inputs":[{"name":"role","type":"bytes32","indexed":true},{"name":"account","type":"address","indexed":true},{"name":"sender","type":"address","indexed":true}]},
{"type":"event","name":"Reprice","anonymous":false,"inputs":[{"name":"newTotalPooledAsset","type":"uint256","indexed":false},{"name":"previousTotalPooledAsset","type":"uint256","indexed":false},{"name":"newSwETHToETHRate","type":"uint256","indexed":false}]}
]`

// ProtocolABI is the parsed event ABI shared by every protocol component.
var ProtocolABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(protocolABIJSON))
	if err != nil {
		panic("events: invalid protocol ABI: " + err.Error())
	}
	ProtocolABI = parsed
}
