package client

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/eoscanada/eos-go"
	"github.com/shopspring/decimal"

	"github.com/eosbp/bpclaim/common"
	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/module"
)

// TableRowsParam is the body of get_table_rows.
type TableRowsParam struct {
	Code       string `json:"code"`
	Scope      string `json:"scope"`
	Table      string `json:"table"`
	JSON       bool   `json:"json"`
	LowerBound string `json:"lower_bound,omitempty"`
	UpperBound string `json:"upper_bound,omitempty"`
	Limit      uint32 `json:"limit,omitempty"`
}

type TableRows struct {
	Rows []json.RawMessage `json:"rows"`
	// More is a bool on newer nodes and a string key on some older ones.
	More    json.RawMessage `json:"more,omitempty"`
	NextKey string          `json:"next_key,omitempty"`
}

// chainTime accepts "2006-01-02T15:04:05.000" style strings and
// microseconds since epoch, either as number or as numeric string.
type chainTime struct {
	time.Time
}

var chainTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

func (t *chainTime) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if s == "null" {
		return errors.InvalidStateError.New("NullTimestamp")
	}
	if us, err := strconv.ParseInt(strings.Trim(s, `"`), 10, 64); err == nil {
		t.Time = time.UnixMicro(us).UTC()
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.InvalidStateError.Wrapf(err, "InvalidTimestamp(value=%s)", s)
	}
	for _, layout := range chainTimeLayouts {
		if tm, err := time.ParseInLocation(layout, str, time.UTC); err == nil {
			t.Time = tm.UTC()
			return nil
		}
	}
	return errors.InvalidStateError.Errorf("InvalidTimestamp(value=%s)", str)
}

// flexBool accepts true, false, 1 and 0.
type flexBool bool

func (v *flexBool) UnmarshalJSON(b []byte) error {
	switch strings.Trim(string(b), `"`) {
	case "true", "1":
		*v = true
	case "false", "0", "null":
		*v = false
	default:
		return errors.InvalidStateError.Errorf("InvalidBool(value=%s)", b)
	}
	return nil
}

type statRow struct {
	Supply    string `json:"supply"`
	MaxSupply string `json:"max_supply"`
	Issuer    string `json:"issuer"`
}

// ParseAsset parses an asset string such as "1021522193.9461 EOS".
func ParseAsset(s string) (decimal.Decimal, string, error) {
	asset, err := eos.NewAssetFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, "", errors.InvalidStateError.Wrapf(err, "InvalidAsset(value=%q)", s)
	}
	amount := decimal.New(int64(asset.Amount), -int32(asset.Symbol.Precision))
	return amount, asset.Symbol.Symbol, nil
}

func (r *statRow) toTokenSupply() (*module.TokenSupply, error) {
	supply, symbol, err := ParseAsset(r.Supply)
	if err != nil {
		return nil, err
	}
	ts := &module.TokenSupply{
		Symbol: symbol,
		Supply: supply,
		Issuer: r.Issuer,
	}
	if r.MaxSupply != "" {
		if ts.MaxSupply, _, err = ParseAsset(r.MaxSupply); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

type globalRow struct {
	PervoteBucket           *decimal.Decimal `json:"pervote_bucket"`
	PerblockBucket          decimal.Decimal  `json:"perblock_bucket"`
	LastPervoteBucketFill   *chainTime       `json:"last_pervote_bucket_fill"`
	TotalProducerVoteWeight *decimal.Decimal `json:"total_producer_vote_weight"`
	TotalUnpaidBlocks       decimal.Decimal  `json:"total_unpaid_blocks"`
}

func (r *globalRow) toGlobalState() (*module.GlobalState, error) {
	switch {
	case r.PervoteBucket == nil:
		return nil, errors.InvalidStateError.New("MissingField(pervote_bucket)")
	case r.LastPervoteBucketFill == nil:
		return nil, errors.InvalidStateError.New("MissingField(last_pervote_bucket_fill)")
	case r.TotalProducerVoteWeight == nil:
		return nil, errors.InvalidStateError.New("MissingField(total_producer_vote_weight)")
	}
	return &module.GlobalState{
		PervoteBucket:           r.PervoteBucket.IntPart(),
		PerblockBucket:          r.PerblockBucket.IntPart(),
		LastPervoteBucketFill:   r.LastPervoteBucketFill.Time,
		TotalProducerVoteWeight: r.TotalProducerVoteWeight.InexactFloat64(),
		TotalUnpaidBlocks:       r.TotalUnpaidBlocks.IntPart(),
	}, nil
}

type producerRow struct {
	Owner         string           `json:"owner"`
	TotalVotes    *decimal.Decimal `json:"total_votes"`
	IsActive      flexBool         `json:"is_active"`
	UnpaidBlocks  decimal.Decimal  `json:"unpaid_blocks"`
	LastClaimTime *chainTime       `json:"last_claim_time"`
	URL           string           `json:"url"`
}

func (r *producerRow) toProducerRecord() (*module.ProducerRecord, error) {
	if r.TotalVotes == nil {
		return nil, errors.InvalidStateError.Errorf("MissingField(total_votes,owner=%s)", r.Owner)
	}
	pr := &module.ProducerRecord{
		Owner:        r.Owner,
		TotalVotes:   r.TotalVotes.InexactFloat64(),
		IsActive:     bool(r.IsActive),
		UnpaidBlocks: r.UnpaidBlocks.IntPart(),
		URL:          r.URL,
	}
	if r.LastClaimTime != nil {
		pr.LastClaimTime = r.LastClaimTime.Time
	}
	return pr, nil
}

type infoResponse struct {
	ServerVersion            string             `json:"server_version"`
	ChainID                  common.RawHexBytes `json:"chain_id"`
	HeadBlockNum             uint32             `json:"head_block_num"`
	HeadBlockTime            *chainTime         `json:"head_block_time"`
	LastIrreversibleBlockNum uint32             `json:"last_irreversible_block_num"`
	LastIrreversibleBlockID  common.RawHexBytes `json:"last_irreversible_block_id"`
}

func (r *infoResponse) toChainInfo() (*module.ChainInfo, error) {
	if len(r.ChainID) != 32 {
		return nil, errors.InvalidStateError.Errorf("InvalidChainID(len=%d)", len(r.ChainID))
	}
	if len(r.LastIrreversibleBlockID) != 32 {
		return nil, errors.InvalidStateError.Errorf("InvalidBlockID(len=%d)", len(r.LastIrreversibleBlockID))
	}
	ci := &module.ChainInfo{
		ChainID:                  r.ChainID.Bytes(),
		HeadBlockNum:             r.HeadBlockNum,
		LastIrreversibleBlockNum: r.LastIrreversibleBlockNum,
		LastIrreversibleBlockID:  r.LastIrreversibleBlockID.Bytes(),
		ServerVersion:            r.ServerVersion,
	}
	if r.HeadBlockTime != nil {
		ci.HeadBlockTime = r.HeadBlockTime.Time
	}
	return ci, nil
}

type abiJSONToBinParam struct {
	Code   string      `json:"code"`
	Action string      `json:"action"`
	Args   interface{} `json:"args"`
}

type abiJSONToBinResponse struct {
	BinArgs common.RawHexBytes `json:"binargs"`
}
