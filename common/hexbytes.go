package common

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// RawHexBytes is marshalled as a hex string without prefix, the way
// keystore files and packed transactions carry binary data.
type RawHexBytes []byte

func (rh RawHexBytes) MarshalJSON() ([]byte, error) {
	if rh == nil {
		return []byte("null"), nil
	}
	s := hex.EncodeToString(rh)
	return json.Marshal(s)
}

func (rh *RawHexBytes) UnmarshalJSON(b []byte) error {
	var os *string
	if err := json.Unmarshal(b, &os); err != nil {
		return err
	}
	if os == nil {
		*rh = nil
		return nil
	}
	if bin, err := hex.DecodeString(*os); err != nil {
		return err
	} else {
		*rh = bin
		return nil
	}
}

func (rh RawHexBytes) Bytes() []byte {
	if rh == nil {
		return nil
	}
	return rh[:]
}

func (rh RawHexBytes) String() string {
	if rh == nil {
		return "null"
	}
	return hex.EncodeToString(rh)
}

const PrefixLen = 4

// HexPre returns hexadecimal string of prefix of byte slice bs.
func HexPre(bs []byte) string {
	if bs == nil {
		return "<nil>"
	}
	if len(bs) > PrefixLen {
		return fmt.Sprintf("%x..", bs[:PrefixLen])
	}
	return fmt.Sprintf("%x", bs)
}
