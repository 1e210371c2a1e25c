// Package canonical implements the deterministic JSON normalization and
// SHA-256 hashing discipline shared by every proof artifact. Two logically
// identical values that differ only in object-key insertion order produce
// identical canonical bytes; array order is always preserved, so callers
// must pre-sort any array whose order is not semantically meaningful before
// hashing.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Version identifies the canonicalization rules in effect. Hashed payloads
// embed this value so a future rule change cannot silently collide with
// historical hashes.
const Version = 1

// Marshal returns the canonical JSON encoding of v: object keys sorted
// ascending, arrays in their original order, numbers in their shortest
// round-trippable form, no insignificant whitespace.
func Marshal(v any) ([]byte, error) {
	input, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal for canonicalization: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()
	var normalized any
	if err := dec.Decode(&normalized); err != nil {
		return nil, fmt.Errorf("decode for canonicalization: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := write(buf, normalized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Normalize returns the canonical in-memory form of v: maps rebuilt with
// sorted keys, slices normalized element-wise, scalars passed through.
// Normalize(Normalize(v)) is equivalent to Normalize(v).
func Normalize(v any) (any, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode normalized form: %w", err)
	}
	return out, nil
}

// Decode parses stored canonical bytes into their generic in-memory form,
// keeping numbers as json.Number so the original representation survives a
// re-encode. Verification paths must use this instead of plain
// json.Unmarshal: decoding through float64 would re-render numbers and a
// hash recomputed from the result could differ on uncorrupted data.
func Decode(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode canonical document: %w", err)
	}
	return out, nil
}

// Hash returns the lowercase hex SHA-256 of the canonical JSON encoding of v.
func Hash(v any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return DigestBytes(data), nil
}

func write(w io.Writer, v any) error {
	switch vv := v.(type) {
	case nil:
		_, err := io.WriteString(w, "null")
		return err
	case bool:
		if vv {
			_, err := io.WriteString(w, "true")
			return err
		}
		_, err := io.WriteString(w, "false")
		return err
	case string:
		b, err := json.Marshal(vv)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case json.Number:
		return writeNumber(w, vv.String())
	case float64:
		return writeNumber(w, strconv.FormatFloat(vv, 'f', -1, 64))
	case []any:
		if _, err := io.WriteString(w, "["); err != nil {
			return err
		}
		for i, item := range vv {
			if i > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			if err := write(w, item); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "]")
		return err
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		if _, err := io.WriteString(w, "{"); err != nil {
			return err
		}
		for i, k := range keys {
			if i > 0 {
				if _, err := io.WriteString(w, ","); err != nil {
					return err
				}
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			if _, err := w.Write(kb); err != nil {
				return err
			}
			if _, err := io.WriteString(w, ":"); err != nil {
				return err
			}
			if err := write(w, vv[k]); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "}")
		return err
	default:
		// Structs and typed slices/maps round-trip through encoding/json
		// into the cases above.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()
		var normalized any
		if err := dec.Decode(&normalized); err != nil {
			return err
		}
		return write(w, normalized)
	}
}

func writeNumber(w io.Writer, n string) error {
	if _, err := strconv.ParseFloat(n, 64); err != nil {
		return fmt.Errorf("invalid number %q: %w", n, err)
	}
	_, err := io.WriteString(w, n)
	return err
}
