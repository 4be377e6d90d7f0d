package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_RawHexBytes_UnmarshalJSON(t *testing.T) {
	var hb RawHexBytes

	err := json.Unmarshal([]byte("null"), &hb)
	if err != nil {
		t.Errorf("Fail to unmarshal json null err=%+v", err)
	}
	assert.Nil(t, hb)

	err = json.Unmarshal([]byte(`"0a0bff"`), &hb)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x0b, 0xff}, hb.Bytes())

	err = json.Unmarshal([]byte(`"0x0a"`), &hb)
	assert.Error(t, err)
}

func Test_RawHexBytes_MarshalJSON(t *testing.T) {
	var hb RawHexBytes
	bs, err := json.Marshal(hb)
	if err != nil {
		t.Errorf("Fail to marshal json null err=%+v", err)
	}
	assert.Equal(t, []byte("null"), bs)

	bs, err = json.Marshal(RawHexBytes{0xde, 0xad})
	assert.NoError(t, err)
	assert.Equal(t, `"dead"`, string(bs))
}

func TestHexPre(t *testing.T) {
	assert.Equal(t, "<nil>", HexPre(nil))
	assert.Equal(t, "0102", HexPre([]byte{1, 2}))
	assert.Equal(t, "01020304..", HexPre([]byte{1, 2, 3, 4, 5}))
}
