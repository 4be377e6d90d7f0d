package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/module"
)

const (
	pathGetInfo         = "/v1/chain/get_info"
	pathGetTableRows    = "/v1/chain/get_table_rows"
	pathAbiJSONToBin    = "/v1/chain/abi_json_to_bin"
	pathPushTransaction = "/v1/chain/push_transaction"

	systemAccount = "eosio"
	tokenAccount  = "eosio.token"
)

// ChainClient implements the chain state reader and the transaction
// client on top of the chain API.
type ChainClient struct {
	*Client
}

func NewChainClient(hc *http.Client, endpoint string) *ChainClient {
	return &ChainClient{Client: New(hc, endpoint)}
}

var (
	_ module.ChainStateReader  = (*ChainClient)(nil)
	_ module.TransactionClient = (*ChainClient)(nil)
)

func (c *ChainClient) GetTableRows(ctx context.Context, param *TableRowsParam) (*TableRows, error) {
	rows := &TableRows{}
	if err := c.Do(ctx, pathGetTableRows, param, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// firstRow returns the first row of the table or NotFoundError.
func (c *ChainClient) firstRow(ctx context.Context, param *TableRowsParam, v interface{}) error {
	rows, err := c.GetTableRows(ctx, param)
	if err != nil {
		return err
	}
	if len(rows.Rows) == 0 {
		return errors.NotFoundError.Errorf("NoRow(code=%s,scope=%s,table=%s)",
			param.Code, param.Scope, param.Table)
	}
	if err := json.Unmarshal(rows.Rows[0], v); err != nil {
		if errors.CodeOf(err) != errors.UnknownError {
			return errors.Wrapf(err, "MalformedRow(table=%s)", param.Table)
		}
		return errors.InvalidStateError.Wrapf(err, "MalformedRow(table=%s)", param.Table)
	}
	return nil
}

func (c *ChainClient) GetTokenSupply(ctx context.Context, symbol string) (*module.TokenSupply, error) {
	var row statRow
	err := c.firstRow(ctx, &TableRowsParam{
		Code:  tokenAccount,
		Scope: symbol,
		Table: "stat",
		JSON:  true,
		Limit: 1,
	}, &row)
	if err != nil {
		return nil, err
	}
	return row.toTokenSupply()
}

func (c *ChainClient) GetGlobalState(ctx context.Context) (*module.GlobalState, error) {
	var row globalRow
	err := c.firstRow(ctx, &TableRowsParam{
		Code:  systemAccount,
		Scope: systemAccount,
		Table: "global",
		JSON:  true,
		Limit: 1,
	}, &row)
	if err != nil {
		return nil, err
	}
	return row.toGlobalState()
}

// GetProducer looks the producer up with a lower bound query. The first row
// belongs to another account when the producer is not registered.
func (c *ChainClient) GetProducer(ctx context.Context, owner string) (*module.ProducerRecord, error) {
	var row producerRow
	err := c.firstRow(ctx, &TableRowsParam{
		Code:       systemAccount,
		Scope:      systemAccount,
		Table:      "producers",
		JSON:       true,
		LowerBound: owner,
		Limit:      1,
	}, &row)
	if err != nil {
		return nil, err
	}
	if row.Owner != owner {
		return nil, errors.NotFoundError.Errorf("NoProducer(owner=%s,found=%s)", owner, row.Owner)
	}
	return row.toProducerRecord()
}

func (c *ChainClient) GetInfo(ctx context.Context) (*module.ChainInfo, error) {
	var resp infoResponse
	if err := c.Do(ctx, pathGetInfo, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toChainInfo()
}

func (c *ChainClient) AbiJSONToBin(ctx context.Context, code, action string, args interface{}) ([]byte, error) {
	var resp abiJSONToBinResponse
	err := c.Do(ctx, pathAbiJSONToBin, &abiJSONToBinParam{
		Code:   code,
		Action: action,
		Args:   args,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.BinArgs) == 0 {
		return nil, errors.InvalidStateError.Errorf("EmptyBinArgs(code=%s,action=%s)", code, action)
	}
	return resp.BinArgs.Bytes(), nil
}

func (c *ChainClient) PushTransaction(ctx context.Context, tx *module.SignedTransaction) (*module.PushResult, error) {
	var resp module.PushResult
	if err := c.Do(ctx, pathPushTransaction, tx, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
