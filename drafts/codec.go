package drafts

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

const draftRecordVersionV1 = 1

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("drafts: CBOR encoder initialization failed: " + err.Error())
	}

	// any-typed values must decode to map[string]any, not
	// map[interface{}]interface{}.
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("drafts: CBOR decoder initialization failed: " + err.Error())
	}
}

type record struct {
	Version uint8          `cbor:"v"`
	SavedAt int64          `cbor:"t"`
	Values  map[string]any `cbor:"d"`
}

func encodeRecord(r *record) ([]byte, error) {
	r.Version = draftRecordVersionV1
	return encMode.Marshal(r)
}

func decodeRecord(data []byte) (*record, error) {
	var r record
	if err := decMode.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if r.Version != draftRecordVersionV1 {
		return nil, fmt.Errorf("%w: version %d", ErrCorrupt, r.Version)
	}
	return &r, nil
}
