package module

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TokenSupply is the stat row of a token.
type TokenSupply struct {
	Symbol    string
	Supply    decimal.Decimal
	MaxSupply decimal.Decimal
	Issuer    string
}

// GlobalState holds the fields of the system global table used by vote pay.
type GlobalState struct {
	PervoteBucket           int64
	PerblockBucket          int64
	LastPervoteBucketFill   time.Time
	TotalProducerVoteWeight float64
	TotalUnpaidBlocks       int64
}

// ProducerRecord is a row of the producers table.
type ProducerRecord struct {
	Owner         string
	TotalVotes    float64
	IsActive      bool
	UnpaidBlocks  int64
	LastClaimTime time.Time
	URL           string
}

// ChainInfo is the subset of get_info used for TaPoS.
type ChainInfo struct {
	ChainID                  []byte
	HeadBlockNum             uint32
	HeadBlockTime            time.Time
	LastIrreversibleBlockNum uint32
	LastIrreversibleBlockID  []byte
	ServerVersion            string
}

// ChainStateReader reads the snapshots the reward estimation needs.
// Implementations never mutate chain state.
type ChainStateReader interface {
	GetTokenSupply(ctx context.Context, symbol string) (*TokenSupply, error)
	GetGlobalState(ctx context.Context) (*GlobalState, error)
	GetProducer(ctx context.Context, owner string) (*ProducerRecord, error)
}

// SignedTransaction is the packed form accepted by push_transaction.
type SignedTransaction struct {
	Signatures            []string `json:"signatures"`
	Compression           string   `json:"compression"`
	PackedContextFreeData string   `json:"packed_context_free_data"`
	PackedTrx             string   `json:"packed_trx"`
}

// PushResult is the response of an accepted transaction.
type PushResult struct {
	TransactionID string          `json:"transaction_id"`
	Processed     json.RawMessage `json:"processed,omitempty"`
}

// TransactionClient is what the claim submitter needs from a node.
type TransactionClient interface {
	GetInfo(ctx context.Context) (*ChainInfo, error)
	AbiJSONToBin(ctx context.Context, code, action string, args interface{}) ([]byte, error)
	PushTransaction(ctx context.Context, tx *SignedTransaction) (*PushResult, error)
}
