package fieldpath

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

var _ json.Marshaler = Value{}
var _ json.Unmarshaler = (*Value)(nil)

// String renders the Value as compact JSON text.
func (v Value) String() string {
	encoded, err := v.MarshalJSON()
	if err != nil {
		return ""
	}

	return string(encoded)
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")

	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))

	case KindNumber:
		buf.WriteString(formatNumber(v))

	case KindString:
		encoded, err := json.Marshal(v.s)
		if err != nil {
			return err
		}

		buf.Write(encoded)

	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')

	case KindObject:
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}

			encoded, err := json.Marshal(key)
			if err != nil {
				return err
			}

			buf.Write(encoded)
			buf.WriteByte(':')

			if err := writeJSON(buf, v.obj[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}

	return nil
}

// formatNumber renders a number Value the way it entered: integers without a
// fractional part, floats in the shortest round-tripping form.
func formatNumber(v Value) string {
	if v.isInt {
		return strconv.FormatInt(v.i, 10)
	}

	return strconv.FormatFloat(v.f, 'g', -1, 64)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	parsed, err := readJSON(dec)
	if err != nil {
		return err
	}

	*v = parsed
	return nil
}

func readJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil

	case bool:
		return Bool(t), nil

	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return Int(i), nil
		}

		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}

		return Float(f), nil

	case string:
		return String(t), nil

	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				item, err := readJSON(dec)
				if err != nil {
					return Value{}, err
				}

				items = append(items, item)
			}

			// consume the closing bracket
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}

			return Array(items...), nil

		case '{':
			obj := Object()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}

				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is not a string: %v", keyTok)
				}

				fv, err := readJSON(dec)
				if err != nil {
					return Value{}, err
				}

				obj.SetField(key, fv)
			}

			// consume the closing brace
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}

			return obj, nil
		}
	}

	return Value{}, fmt.Errorf("unexpected JSON token %v", tok)
}
