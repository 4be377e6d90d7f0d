package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/module"
)

type fakeNode struct {
	t        *testing.T
	handlers map[string]func(body []byte) (int, string)
	requests map[string][]byte
}

func newFakeNode(t *testing.T) (*fakeNode, *ChainClient) {
	n := &fakeNode{
		t:        t,
		handlers: map[string]func([]byte) (int, string){},
		requests: map[string][]byte{},
	}
	srv := httptest.NewServer(n)
	t.Cleanup(srv.Close)
	return n, NewChainClient(srv.Client(), srv.URL+"/")
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	n.requests[r.URL.Path] = body
	h, ok := n.handlers[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"code":404,"message":"Not Found","error":{"code":0,"name":"exception","what":"unspecified","details":[{"message":"Unknown Endpoint","file":"http_plugin.cpp","line_number":254,"method":"handle_http_request"}]}}`)
		return
	}
	status, resp := h(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp)
}

func (n *fakeNode) tableRows(table, rows string) {
	prev := n.handlers[pathGetTableRows]
	n.handlers[pathGetTableRows] = func(body []byte) (int, string) {
		var p TableRowsParam
		require.NoError(n.t, json.Unmarshal(body, &p))
		if p.Table == table {
			return http.StatusOK, `{"rows":` + rows + `,"more":false}`
		}
		if prev != nil {
			return prev(body)
		}
		return http.StatusOK, `{"rows":[],"more":false}`
	}
}

func TestGetTokenSupply(t *testing.T) {
	n, c := newFakeNode(t)
	n.tableRows("stat", `[{"supply":"1021522193.9461 EOS","max_supply":"10000000000.0000 EOS","issuer":"eosio"}]`)

	ts, err := c.GetTokenSupply(context.Background(), "EOS")
	require.NoError(t, err)
	assert.Equal(t, "EOS", ts.Symbol)
	assert.True(t, decimal.RequireFromString("1021522193.9461").Equal(ts.Supply))
	assert.True(t, decimal.RequireFromString("10000000000").Equal(ts.MaxSupply))

	var p TableRowsParam
	require.NoError(t, json.Unmarshal(n.requests[pathGetTableRows], &p))
	assert.Equal(t, TableRowsParam{Code: "eosio.token", Scope: "EOS", Table: "stat", JSON: true, Limit: 1}, p)
}

func TestGetTokenSupply_Errors(t *testing.T) {
	t.Run("NoRow", func(t *testing.T) {
		n, c := newFakeNode(t)
		n.tableRows("stat", `[]`)
		_, err := c.GetTokenSupply(context.Background(), "EOS")
		assert.Equal(t, errors.NotFoundError, errors.CodeOf(err))
	})
	t.Run("BadAsset", func(t *testing.T) {
		n, c := newFakeNode(t)
		n.tableRows("stat", `[{"supply":"lots of EOS"}]`)
		_, err := c.GetTokenSupply(context.Background(), "EOS")
		assert.Equal(t, errors.InvalidStateError, errors.CodeOf(err))
	})
	t.Run("BadRow", func(t *testing.T) {
		n, c := newFakeNode(t)
		n.tableRows("stat", `[{"supply":17}]`)
		_, err := c.GetTokenSupply(context.Background(), "EOS")
		assert.Equal(t, errors.InvalidStateError, errors.CodeOf(err))
	})
}

func TestGetGlobalState(t *testing.T) {
	tests := []struct {
		name string
		row  string
		fill time.Time
	}{
		{
			"ISOTime",
			`{"pervote_bucket":"123456789","perblock_bucket":42,"last_pervote_bucket_fill":"2018-06-20T10:00:00.500","total_producer_vote_weight":"3.2463293829839648e+16","total_unpaid_blocks":100}`,
			time.Date(2018, 6, 20, 10, 0, 0, 500*int(time.Millisecond), time.UTC),
		},
		{
			"Microseconds",
			`{"pervote_bucket":123456789,"last_pervote_bucket_fill":1529488800500000,"total_producer_vote_weight":"32463293829839648.00000000000000000"}`,
			time.Date(2018, 6, 20, 10, 0, 0, 500*int(time.Millisecond), time.UTC),
		},
		{
			"QuotedMicroseconds",
			`{"pervote_bucket":123456789,"last_pervote_bucket_fill":"1529488800500000","total_producer_vote_weight":"32463293829839648"}`,
			time.Date(2018, 6, 20, 10, 0, 0, 500*int(time.Millisecond), time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, c := newFakeNode(t)
			n.tableRows("global", "["+tt.row+"]")
			gs, err := c.GetGlobalState(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(123456789), gs.PervoteBucket)
			assert.True(t, tt.fill.Equal(gs.LastPervoteBucketFill), "fill=%v", gs.LastPervoteBucketFill)
			assert.InDelta(t, 3.2463293829839648e16, gs.TotalProducerVoteWeight, 1e3)
		})
	}
}

func TestGetGlobalState_Malformed(t *testing.T) {
	rows := map[string]string{
		"BadTime":       `{"pervote_bucket":1,"last_pervote_bucket_fill":"yesterday","total_producer_vote_weight":"1"}`,
		"MissingWeight": `{"pervote_bucket":1,"last_pervote_bucket_fill":"2018-06-20T10:00:00.000"}`,
		"BadWeight":     `{"pervote_bucket":1,"last_pervote_bucket_fill":"2018-06-20T10:00:00.000","total_producer_vote_weight":"heavy"}`,
	}
	for name, row := range rows {
		t.Run(name, func(t *testing.T) {
			n, c := newFakeNode(t)
			n.tableRows("global", "["+row+"]")
			_, err := c.GetGlobalState(context.Background())
			assert.Equal(t, errors.InvalidStateError, errors.CodeOf(err), "err=%v", err)
		})
	}
}

func TestGetProducer(t *testing.T) {
	n, c := newFakeNode(t)
	n.tableRows("producers", `[{"owner":"eosnationftw","total_votes":"1234567890.5","producer_key":"EOS6MRyAjQq8ud7hVNYcfnVPJqcVpscN5So8BhtHuGYqET5GDW5CV","is_active":1,"url":"https://eosnation.io","unpaid_blocks":12,"last_claim_time":"2018-06-20T10:00:00.000","location":124}]`)

	pr, err := c.GetProducer(context.Background(), "eosnationftw")
	require.NoError(t, err)
	assert.Equal(t, "eosnationftw", pr.Owner)
	assert.InDelta(t, 1234567890.5, pr.TotalVotes, 1e-6)
	assert.True(t, pr.IsActive)
	assert.Equal(t, int64(12), pr.UnpaidBlocks)

	var p TableRowsParam
	require.NoError(t, json.Unmarshal(n.requests[pathGetTableRows], &p))
	assert.Equal(t, "eosnationftw", p.LowerBound)
	assert.Equal(t, uint32(1), p.Limit)

	_, err = c.GetProducer(context.Background(), "eosnation")
	assert.Equal(t, errors.NotFoundError, errors.CodeOf(err))
}

func TestConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewChainClient(&http.Client{Timeout: time.Second}, url)
	_, err := c.GetGlobalState(context.Background())
	assert.Equal(t, errors.ConnectivityError, errors.CodeOf(err))
}

func TestTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	c := NewChainClient(srv.Client(), srv.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.GetInfo(ctx)
	assert.Equal(t, errors.ConnectivityError, errors.CodeOf(err))
}

func TestAPIError(t *testing.T) {
	n, c := newFakeNode(t)
	n.handlers[pathPushTransaction] = func([]byte) (int, string) {
		return http.StatusInternalServerError, `{"code":500,"message":"Internal Service Error","error":{"code":3090003,"name":"unsatisfied_authorization","what":"Provided keys, permissions, and delays do not satisfy declared authorizations","details":[{"message":"transaction declares authority '{\"actor\":\"eosnationftw\",\"permission\":\"claim\"}', but does not have signatures for it.","file":"authorization_manager.cpp","line_number":524,"method":"check_authorization"}]}}`
	}
	_, err := c.PushTransaction(context.Background(), &module.SignedTransaction{})
	require.Error(t, err)
	assert.Equal(t, errors.APIError, errors.CodeOf(err))

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 500, apiErr.StatusCode)
	assert.Equal(t, 3090003, apiErr.Err.Code)
	assert.Equal(t, "unsatisfied_authorization", apiErr.Err.Name)
	assert.Contains(t, apiErr.Error(), "does not have signatures")
	assert.False(t, IsUnknownEndpoint(err))

	_, err = c.AbiJSONToBin(context.Background(), "eosio", "claimrewards", map[string]string{"owner": "a"})
	assert.True(t, IsUnknownEndpoint(err))
}

func TestGetInfoAndPush(t *testing.T) {
	n, c := newFakeNode(t)
	n.handlers[pathGetInfo] = func([]byte) (int, string) {
		return http.StatusOK, `{"server_version":"d1bc8d3","chain_id":"aca376f206b8fc25a6ed44dbdc66547c36c6c33e3a119ffbeaef943642f0e906","head_block_num":1001,"last_irreversible_block_num":670,"last_irreversible_block_id":"0000029eb4a6b4a0a0c4c7e2d2f3a1b0c0d0e0f00112233445566778899aabbc","head_block_time":"2018-06-20T10:00:00.500"}`
	}
	n.handlers[pathAbiJSONToBin] = func(body []byte) (int, string) {
		return http.StatusOK, `{"binargs":"0000000000ea3055"}`
	}
	n.handlers[pathPushTransaction] = func(body []byte) (int, string) {
		return http.StatusOK, `{"transaction_id":"abcd","processed":{"id":"abcd"}}`
	}

	info, err := c.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(670), info.LastIrreversibleBlockNum)
	assert.Len(t, info.ChainID, 32)

	bin, err := c.AbiJSONToBin(context.Background(), "eosio", "claimrewards", map[string]string{"owner": "eosio"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0xea, 0x30, 0x55}, bin)

	res, err := c.PushTransaction(context.Background(), &module.SignedTransaction{
		Signatures:  []string{"SIG_K1_x"},
		Compression: "none",
		PackedTrx:   "00",
	})
	require.NoError(t, err)
	assert.Equal(t, "abcd", res.TransactionID)

	var pushed map[string]interface{}
	require.NoError(t, json.Unmarshal(n.requests[pathPushTransaction], &pushed))
	assert.Equal(t, "none", pushed["compression"])
	assert.Equal(t, "", pushed["packed_context_free_data"])
}

func TestObserver(t *testing.T) {
	n, c := newFakeNode(t)
	n.tableRows("global", `[]`)
	var paths []string
	c.SetObserver(func(path string, _ time.Duration, err error) {
		paths = append(paths, path)
	})
	_, _ = c.GetGlobalState(context.Background())
	assert.Equal(t, []string{pathGetTableRows}, paths)
}
