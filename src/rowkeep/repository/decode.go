package repository

import (
	"encoding/json"
	"io"

	"github.com/bitswalk/rowkeep/src/common/errors"
)

// DecodeRows parses a JSON row object or an array of row objects. batch
// reports whether the input was an array. Numbers are kept as json.Number
// so 64-bit keys are not rounded through float64.
func DecodeRows(r io.Reader) (rows []Row, batch bool, err error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, false, errors.ErrInvalidJSON.WithCause(err)
	}
	if dec.More() {
		return nil, false, errors.ErrInvalidJSON.WithMessage("unexpected data after JSON value")
	}

	switch v := body.(type) {
	case map[string]any:
		return []Row{v}, false, nil
	case []any:
		rows = make([]Row, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, true, errors.ErrInvalidJSON.WithMessagef("element %d is not an object", i)
			}
			rows = append(rows, obj)
		}
		return rows, true, nil
	default:
		return nil, false, errors.ErrInvalidJSON.WithMessage("expected an object or an array of objects")
	}
}
