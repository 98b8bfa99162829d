package events

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

var (
	ErrUnknownEvent = errors.New("unknown event")
	ErrMalformedLog = errors.New("malformed log")
)

// Log is an EVM-style log emitted by a protocol component. Seq is assigned
// by the journal when the emitting operation commits.
type Log struct {
	Seq     uint64         `json:"seq"`
	Address common.Address `json:"address"`
	Name    string         `json:"event"`
	Topics  []common.Hash  `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

// Encode turns ev into a log emitted by contract. Indexed arguments become
// topics after the signature hash; the rest are ABI-packed into Data.
func Encode(contract common.Address, ev Event) (Log, error) {
	def, ok := ProtocolABI.Events[ev.EventName()]
	if !ok {
		return Log{}, fmt.Errorf("%w: %s", ErrUnknownEvent, ev.EventName())
	}
	args := ev.Args()
	if len(args) != len(def.Inputs) {
		return Log{}, fmt.Errorf("%s: got %d args, want %d", def.Name, len(args), len(def.Inputs))
	}

	topics := []common.Hash{def.ID}
	var data []interface{}
	for i, in := range def.Inputs {
		v := toABIValue(args[i])
		if !in.Indexed {
			data = append(data, v)
			continue
		}
		t, err := abi.MakeTopics([]interface{}{v})
		if err != nil {
			return Log{}, fmt.Errorf("%s.%s topic: %w", def.Name, in.Name, err)
		}
		topics = append(topics, t[0][0])
	}

	packed, err := def.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return Log{}, fmt.Errorf("%s pack: %w", def.Name, err)
	}
	return Log{Address: contract, Name: def.Name, Topics: topics, Data: packed}, nil
}

// Decode turns a log back into its typed event.
func Decode(l Log) (Event, error) {
	if len(l.Topics) == 0 {
		return nil, fmt.Errorf("%w: no topics", ErrMalformedLog)
	}
	def, err := ProtocolABI.EventByID(l.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, l.Topics[0].Hex())
	}

	var indexed abi.Arguments
	for _, in := range def.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if len(l.Topics)-1 != len(indexed) {
		return nil, fmt.Errorf("%w: %s has %d topics, want %d", ErrMalformedLog, def.Name, len(l.Topics)-1, len(indexed))
	}

	fields := make(map[string]interface{}, len(def.Inputs))
	if err := def.Inputs.UnpackIntoMap(fields, l.Data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedLog, def.Name, err)
	}
	if err := abi.ParseTopicsIntoMap(fields, indexed, l.Topics[1:]); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedLog, def.Name, err)
	}
	return fromFields(def.Name, fields)
}

func fromFields(name string, f map[string]interface{}) (Event, error) {
	r := fieldReader{fields: f}
	var ev Event
	switch name {
	case CoreMethodsPauseName:
		ev = CoreMethodsPause{NewPausedStatus: r.bool("newPausedStatus")}
	case BotMethodsPauseName:
		ev = BotMethodsPause{NewPausedStatus: r.bool("newPausedStatus")}
	case OperatorMethodsPauseName:
		ev = OperatorMethodsPause{NewPausedStatus: r.bool("newPausedStatus")}
	case WithdrawalsPauseName:
		ev = WithdrawalsPause{NewPausedStatus: r.bool("newPausedStatus")}
	case UpdatedSwETHName:
		ev = UpdatedSwETH{r.addressChange()}
	case UpdatedDepositManagerName:
		ev = UpdatedDepositManager{r.addressChange()}
	case UpdatedNodeOperatorRegistryName:
		ev = UpdatedNodeOperatorRegistry{r.addressChange()}
	case UpdatedSwellTreasuryName:
		ev = UpdatedSwellTreasury{r.addressChange()}
	case ETHDepositReceivedName:
		ev = ETHDepositReceived{
			From:                 r.address("from"),
			Amount:               r.uint("amount"),
			SwETHMinted:          r.uint("swETHMinted"),
			NewTotalETHDeposited: r.uint("newTotalETHDeposited"),
		}
	case TransferName:
		ev = Transfer{From: r.address("from"), To: r.address("to"), Value: r.uint("value")}
	case AddedToWhitelistName:
		ev = AddedToWhitelist{Address: r.address("_address")}
	case OwnershipTransferredName:
		ev = OwnershipTransferred{PreviousOwner: r.address("previousOwner"), NewOwner: r.address("newOwner")}
	case RoleGrantedName:
		ev = RoleGranted{r.roleChange()}
	case RoleRevokedName:
		ev = RoleRevoked{r.roleChange()}
	case RepriceName:
		ev = Reprice{
			NewTotalPooledAsset:      r.uint("newTotalPooledAsset"),
			PreviousTotalPooledAsset: r.uint("previousTotalPooledAsset"),
			NewSwETHToETHRate:        r.uint("newSwETHToETHRate"),
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedLog, name, r.err)
	}
	return ev, nil
}

// fieldReader pulls typed values out of an unpacked field map, remembering
// the first mismatch.
type fieldReader struct {
	fields map[string]interface{}
	err    error
}

func (r *fieldReader) fail(name string, v interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("field %s has type %T", name, v)
	}
}

func (r *fieldReader) bool(name string) bool {
	v, ok := r.fields[name].(bool)
	if !ok {
		r.fail(name, r.fields[name])
	}
	return v
}

func (r *fieldReader) address(name string) common.Address {
	v, ok := r.fields[name].(common.Address)
	if !ok {
		r.fail(name, r.fields[name])
	}
	return v
}

func (r *fieldReader) hash(name string) common.Hash {
	switch v := r.fields[name].(type) {
	case common.Hash:
		return v
	case [32]byte:
		return v
	default:
		r.fail(name, v)
		return common.Hash{}
	}
}

func (r *fieldReader) uint(name string) *uint256.Int {
	b, ok := r.fields[name].(*big.Int)
	if !ok {
		r.fail(name, r.fields[name])
		return new(uint256.Int)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		r.fail(name, b)
	}
	return v
}

func (r *fieldReader) addressChange() AddressChange {
	return AddressChange{NewAddress: r.address("newAddress"), OldAddress: r.address("oldAddress")}
}

func (r *fieldReader) roleChange() RoleChange {
	return RoleChange{Role: r.hash("role"), Account: r.address("account"), Sender: r.address("sender")}
}

// toABIValue converts domain types into what accounts/abi packs.
func toABIValue(v interface{}) interface{} {
	if u, ok := v.(*uint256.Int); ok {
		if u == nil {
			return new(big.Int)
		}
		return u.ToBig()
	}
	return v
}
