package lang

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/goccy/go-yaml"
)

// Decode reads exactly one YAML document from r and returns its [Value] tree.
//
// Mapping order is preserved. Integers and floats both become numbers,
// and non-string mapping keys are converted to their textual form.
func Decode(ctx context.Context, r io.Reader) (*Value, error) {
	dec := yaml.NewDecoder(r, yaml.UseOrderedMap())

	var docs []any

	for {
		var doc any

		err := dec.DecodeContext(ctx, &doc)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, ErrInvalidDocument.Wrap(err)
		}

		docs = append(docs, doc)
	}

	if len(docs) != 1 {
		return nil, ErrInvalidDocument.
			With(slog.Int("documents", len(docs))).
			Wrap(fmt.Errorf("expected exactly one document, found %d", len(docs)))
	}

	return convert(docs[0])
}

// DecodeBytes is like [Decode] but reads from a byte slice.
func DecodeBytes(ctx context.Context, data []byte) (*Value, error) {
	return Decode(ctx, bytes.NewReader(data))
}

func convert(node any) (*Value, error) {
	switch n := node.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(n), nil
	case string:
		return NewString(n), nil
	case int:
		return NewNumber(float64(n)), nil
	case int64:
		return NewNumber(float64(n)), nil
	case uint64:
		return NewNumber(float64(n)), nil
	case float64:
		return NewNumber(n), nil
	case []any:
		v := NewSequence()
		for _, item := range n {
			c, err := convert(item)
			if err != nil {
				return nil, err
			}
			v.Sequence = append(v.Sequence, c)
		}

		return v, nil
	case yaml.MapSlice:
		v := NewMapping()
		for _, item := range n {
			c, err := convert(item.Value)
			if err != nil {
				return nil, err
			}
			v.Mapping = append(v.Mapping, NewField(keyString(item.Key), c))
		}

		return v, nil
	case map[string]any:
		// Only reachable for documents decoded without ordered maps.
		return nil, ErrInvalidDocument.Wrap(errors.New("unordered mapping"))
	default:
		return nil, ErrInvalidDocument.
			With(slog.String("type", fmt.Sprintf("%T", node))).
			Wrap(errors.New("unsupported YAML value"))
	}
}

func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case bool:
		return strconv.FormatBool(k)
	case float64:
		if math.IsInf(k, 0) || math.IsNaN(k) {
			return fmt.Sprint(k)
		}

		return strconv.FormatFloat(k, 'g', -1, 64)
	default:
		return fmt.Sprint(k)
	}
}
