package claim

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/eoscanada/eos-go"

	"github.com/eosbp/bpclaim/client"
	"github.com/eosbp/bpclaim/common"
	"github.com/eosbp/bpclaim/common/crypto"
	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/common/log"
	"github.com/eosbp/bpclaim/module"
)

const (
	DefaultExpiration      = 60 * time.Second
	DefaultMaxSignAttempts = 10
)

type SubmitterConfig struct {
	Producer   string
	Permission string
	Expiration time.Duration
	// LocalABI packs the action data without abi_json_to_bin.
	LocalABI bool
	// DryRun signs the transaction without pushing it.
	DryRun          bool
	MaxSignAttempts int
}

// Submission is a signed claim transaction and, unless it was a dry run,
// the response of the node.
type Submission struct {
	TransactionID string                    `json:"transaction_id"`
	Expiration    time.Time                 `json:"expiration"`
	Attempts      int                       `json:"sign_attempts"`
	DryRun        bool                      `json:"dry_run"`
	Signed        *module.SignedTransaction `json:"signed"`
	Response      *module.PushResult        `json:"response,omitempty"`
}

type Submitter struct {
	tc     module.TransactionClient
	wallet module.Wallet
	clock  common.Clock
	cfg    SubmitterConfig
	log    log.Logger
}

func NewSubmitter(tc module.TransactionClient, w module.Wallet, cl common.Clock, cfg SubmitterConfig) *Submitter {
	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultExpiration
	}
	if cfg.MaxSignAttempts <= 0 {
		cfg.MaxSignAttempts = DefaultMaxSignAttempts
	}
	if cl == nil {
		cl = &common.GoTimeClock{}
	}
	return &Submitter{
		tc:     tc,
		wallet: w,
		clock:  cl,
		cfg:    cfg,
		log:    log.WithFields(log.Fields{log.FieldKeyModule: "claim", log.FieldKeyProducer: cfg.Producer}),
	}
}

// SigningDigest returns sha256(chainID || packedTrx || zero context free
// data digest).
func SigningDigest(chainID, packedTrx []byte) []byte {
	return crypto.SHA256(chainID, packedTrx, make([]byte, 32))
}

// sign packs and signs the transaction, moving the expiration one second
// forward until the signature is canonical.
func (s *Submitter) sign(tx *eos.Transaction, chainID []byte) ([]byte, *crypto.Signature, int, error) {
	base := tx.Expiration.Time
	for attempt := 1; attempt <= s.cfg.MaxSignAttempts; attempt++ {
		tx.Expiration = eos.JSONTime{Time: base.Add(time.Duration(attempt-1) * time.Second)}
		packed, err := eos.MarshalBinary(tx)
		if err != nil {
			return nil, nil, attempt, errors.SigningError.Wrap(err, "FailToPackTransaction")
		}
		bs, err := s.wallet.Sign(SigningDigest(chainID, packed))
		if err != nil {
			return nil, nil, attempt, errors.SigningError.Wrap(err, "FailToSign")
		}
		sig, err := crypto.SignatureFromBytes(bs)
		if err != nil {
			return nil, nil, attempt, errors.SigningError.Wrap(err, "InvalidSignature")
		}
		if sig.IsCanonical() {
			return packed, sig, attempt, nil
		}
		s.log.Debugf("Non canonical signature at attempt %d, moving expiration", attempt)
	}
	return nil, nil, s.cfg.MaxSignAttempts, errors.SigningError.Errorf(
		"NoCanonicalSignature(attempts=%d)", s.cfg.MaxSignAttempts)
}

// submissionError types a failure of the node while submitting. An error
// envelope from the node is a rejection, anything else a broadcast failure.
func submissionError(err error, msg string) error {
	if apiErr, ok := client.AsAPIError(err); ok {
		return errors.ChainRejectedError.Wrapf(err, "%s(name=%s,code=%d,what=%s)",
			msg, apiErr.Err.Name, apiErr.Err.Code, apiErr.Err.What)
	}
	return errors.BroadcastError.Wrap(err, msg)
}

// Submit builds, signs and pushes the claimrewards transaction. It never
// retries a failed push.
func (s *Submitter) Submit(ctx context.Context) (*Submission, error) {
	data, err := s.packActionData(ctx)
	if err != nil {
		return nil, err
	}
	action := NewClaimRewardsAction(s.cfg.Producer, s.cfg.Permission)
	action.ActionData = eos.NewActionDataFromHexData(data)

	info, err := s.tc.GetInfo(ctx)
	if err != nil {
		return nil, errors.BroadcastError.Wrap(err, "FailToGetChainInfo")
	}
	tx, err := newTransaction(action, info, s.clock.Now().Add(s.cfg.Expiration))
	if err != nil {
		return nil, err
	}

	packed, sig, attempts, err := s.sign(tx, info.ChainID)
	if err != nil {
		return nil, err
	}
	sub := &Submission{
		TransactionID: hex.EncodeToString(crypto.SHA256(packed)),
		Expiration:    tx.Expiration.Time,
		Attempts:      attempts,
		DryRun:        s.cfg.DryRun,
		Signed: &module.SignedTransaction{
			Signatures:            []string{sig.String()},
			Compression:           "none",
			PackedContextFreeData: "",
			PackedTrx:             hex.EncodeToString(packed),
		},
	}
	s.log.Debugf("Signed tx=%s ref_block=%d expiration=%s attempts=%d",
		sub.TransactionID, tx.RefBlockNum, sub.Expiration.Format(time.RFC3339), attempts)
	if s.cfg.DryRun {
		s.log.Infof("Dry run, transaction %s is not pushed", sub.TransactionID)
		return sub, nil
	}

	resp, err := s.tc.PushTransaction(ctx, sub.Signed)
	if err != nil {
		return sub, submissionError(err, "FailToPush")
	}
	if resp.TransactionID != "" && resp.TransactionID != sub.TransactionID {
		s.log.Warnf("Node reported tx=%s, computed tx=%s", resp.TransactionID, sub.TransactionID)
	}
	sub.Response = resp
	s.log.Infof("Claim transaction %s pushed", sub.TransactionID)
	return sub, nil
}
