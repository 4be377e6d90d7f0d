package claim

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/eoscanada/eos-go"

	"github.com/eosbp/bpclaim/client"
	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/module"
)

const (
	SystemAccount      = "eosio"
	ClaimRewardsAction = "claimrewards"
)

// ClaimRewards is the data of the claimrewards action.
type ClaimRewards struct {
	Owner eos.AccountName `json:"owner"`
}

// NewClaimRewardsAction returns the action without data.
func NewClaimRewardsAction(producer, permission string) *eos.Action {
	return &eos.Action{
		Account: eos.AN(SystemAccount),
		Name:    eos.ActN(ClaimRewardsAction),
		Authorization: []eos.PermissionLevel{
			{Actor: eos.AN(producer), Permission: eos.PN(permission)},
		},
	}
}

// PackLocal serializes the action data without asking the node.
func PackLocal(producer string) ([]byte, error) {
	data, err := eos.MarshalBinary(&ClaimRewards{Owner: eos.AN(producer)})
	if err != nil {
		return nil, errors.SigningError.Wrapf(err, "FailToPackActionData(owner=%s)", producer)
	}
	return data, nil
}

// packActionData asks the node for the binary form of the action data as
// cleos does. Nodes without abi_json_to_bin fall back to local packing.
func (s *Submitter) packActionData(ctx context.Context) ([]byte, error) {
	if s.cfg.LocalABI {
		return PackLocal(s.cfg.Producer)
	}
	data, err := s.tc.AbiJSONToBin(ctx, SystemAccount, ClaimRewardsAction,
		map[string]string{"owner": s.cfg.Producer})
	if err != nil {
		if client.IsUnknownEndpoint(err) {
			s.log.Infof("Node does not serve abi_json_to_bin, packing action data locally")
			return PackLocal(s.cfg.Producer)
		}
		return nil, submissionError(err, "FailToPackActionData")
	}
	return data, nil
}

// TaPoS returns the reference block fields for the last irreversible block.
func TaPoS(info *module.ChainInfo) (uint16, uint32, error) {
	id := info.LastIrreversibleBlockID
	if len(id) < 12 {
		return 0, 0, errors.InvalidStateError.Errorf("InvalidBlockID(len=%d)", len(id))
	}
	return uint16(info.LastIrreversibleBlockNum), binary.LittleEndian.Uint32(id[8:12]), nil
}

func newTransaction(action *eos.Action, info *module.ChainInfo, expiration time.Time) (*eos.Transaction, error) {
	refNum, refPrefix, err := TaPoS(info)
	if err != nil {
		return nil, err
	}
	return &eos.Transaction{
		TransactionHeader: eos.TransactionHeader{
			Expiration:     eos.JSONTime{Time: expiration.UTC().Truncate(time.Second)},
			RefBlockNum:    refNum,
			RefBlockPrefix: refPrefix,
		},
		Actions: []*eos.Action{action},
	}, nil
}
