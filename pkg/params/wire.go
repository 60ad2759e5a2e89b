package params

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/rovermesh/rovermesh/pkg/errors"
)

// encMode is the CBOR encoder mode for parameter events.
// Deterministic encoding with integer keys keeps messages compact and
// byte-stable across peers.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode, lenient for forward compatibility.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnixMicro,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// EncodeEvent encodes a parameter event to its wire form.
func EncodeEvent(ev *ParameterEvent) ([]byte, error) {
	data, err := encMode.Marshal(ev)
	if err != nil {
		return nil, errors.NewSerializationError("parameter event", err)
	}
	return data, nil
}

// DecodeEvent decodes a wire message into a parameter event.
func DecodeEvent(data []byte) (*ParameterEvent, error) {
	var ev ParameterEvent
	if err := decMode.Unmarshal(data, &ev); err != nil {
		return nil, errors.NewSerializationError("parameter event", err)
	}
	return &ev, nil
}
