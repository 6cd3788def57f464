// Package codec encodes websocket frames. The client picks one through
// the websocket subprotocol; JSON is the default.
package codec

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/coder/websocket"
	"github.com/fxamacker/cbor/v2"

	"github.com/DoyleJ11/scoreboard-backend/pkg/types"
)

type Codec interface {
	Name() string
	MessageType() websocket.MessageType
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Name() string                       { return types.SubprotocolJSON }
func (jsonCodec) MessageType() websocket.MessageType { return websocket.MessageText }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type cborCodec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

func (c cborCodec) Name() string                       { return types.SubprotocolCBOR }
func (c cborCodec) MessageType() websocket.MessageType { return websocket.MessageBinary }
func (c cborCodec) Marshal(v any) ([]byte, error)      { return c.enc.Marshal(v) }
func (c cborCodec) Unmarshal(data []byte, v any) error { return c.dec.Unmarshal(data, v) }

var (
	JSON Codec = jsonCodec{}
	CBOR Codec = mustCBOR()
)

func mustCBOR() Codec {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor enc mode: %v", err))
	}
	dec, err := cbor.DecOptions{
		MaxNestedLevels:  8,
		MaxArrayElements: 64,
		MaxMapPairs:      64,
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor dec mode: %v", err))
	}
	return cborCodec{enc: enc, dec: dec}
}

// Subprotocols lists what the server offers, in preference order.
func Subprotocols() []string {
	return []string{types.SubprotocolJSON, types.SubprotocolCBOR}
}

// ForSubprotocol returns the codec for a negotiated subprotocol; an
// empty or unknown name falls back to JSON.
func ForSubprotocol(name string) Codec {
	if name == types.SubprotocolCBOR {
		return CBOR
	}
	return JSON
}
