package encoding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const indentUnit = "  "

// encodeTOON renders v as indented key/value lines where lists of
// uniform records collapse into a {header}: block with one row per
// record. The input is first normalized through its JSON form, so
// struct field order is preserved and map keys come out sorted.
func encodeTOON(v any) (string, error) {
	node, err := normalize(v)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	switch n := node.(type) {
	case *Document:
		writeFields(&b, n, 0)
	case []any:
		writeArray(&b, "", n, 0)
	default:
		b.WriteString(scalar(n))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// normalize reduces v to *Document / []any / scalar nodes via its JSON
// encoding, keeping object key order as serialized.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeValue(dec)
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		doc := NewDocument()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			doc.Set(key, val)
		}
		if _, err := dec.Token(); err != nil { // closing brace
			return nil, err
		}
		return doc, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil { // closing bracket
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

func writeFields(b *strings.Builder, doc *Document, depth int) {
	for _, f := range doc.Fields() {
		writeField(b, f.Key, f.Value, depth)
	}
}

func writeField(b *strings.Builder, key string, v any, depth int) {
	ind := strings.Repeat(indentUnit, depth)
	switch val := v.(type) {
	case *Document:
		fmt.Fprintf(b, "%s%s:\n", ind, quoteString(key))
		writeFields(b, val, depth+1)
	case []any:
		writeArray(b, key, val, depth)
	default:
		fmt.Fprintf(b, "%s%s: %s\n", ind, quoteString(key), scalar(val))
	}
}

func writeArray(b *strings.Builder, key string, arr []any, depth int) {
	ind := strings.Repeat(indentUnit, depth)
	prefix := ""
	if key != "" {
		prefix = quoteString(key)
	}

	// Uniform record lists render as a header plus value rows.
	if headers, ok := tabular(arr); ok {
		quoted := make([]string, len(headers))
		for i, h := range headers {
			quoted[i] = quoteString(h)
		}
		fmt.Fprintf(b, "%s%s[%d]{%s}:\n", ind, prefix, len(arr), strings.Join(quoted, ","))
		for _, item := range arr {
			doc := item.(*Document)
			row := make([]string, 0, len(headers))
			for _, f := range doc.Fields() {
				row = append(row, scalar(f.Value))
			}
			fmt.Fprintf(b, "%s%s%s\n", ind, indentUnit, strings.Join(row, ","))
		}
		return
	}

	// Scalar lists render inline.
	if allScalars(arr) {
		if len(arr) == 0 {
			fmt.Fprintf(b, "%s%s[0]:\n", ind, prefix)
			return
		}
		vals := make([]string, len(arr))
		for i, item := range arr {
			vals[i] = scalar(item)
		}
		fmt.Fprintf(b, "%s%s[%d]: %s\n", ind, prefix, len(arr), strings.Join(vals, ","))
		return
	}

	// Mixed lists fall back to one item per line.
	fmt.Fprintf(b, "%s%s[%d]:\n", ind, prefix, len(arr))
	childInd := ind + indentUnit
	for _, item := range arr {
		switch it := item.(type) {
		case *Document:
			fmt.Fprintf(b, "%s-\n", childInd)
			writeFields(b, it, depth+2)
		case []any:
			writeArray(b, "-", it, depth+1)
		default:
			fmt.Fprintf(b, "%s- %s\n", childInd, scalar(it))
		}
	}
}

// tabular reports whether arr is a non-empty list of records sharing
// one flat schema, returning the shared headers.
func tabular(arr []any) ([]string, bool) {
	if len(arr) == 0 {
		return nil, false
	}

	first, ok := arr[0].(*Document)
	if !ok {
		return nil, false
	}
	headers := make([]string, 0, first.Len())
	for _, f := range first.Fields() {
		headers = append(headers, f.Key)
	}

	for _, item := range arr {
		doc, ok := item.(*Document)
		if !ok || doc.Len() != len(headers) {
			return nil, false
		}
		for i, f := range doc.Fields() {
			if f.Key != headers[i] || !isScalar(f.Value) {
				return nil, false
			}
		}
	}
	return headers, true
}

func allScalars(arr []any) bool {
	for _, item := range arr {
		if !isScalar(item) {
			return false
		}
	}
	return true
}

func isScalar(v any) bool {
	switch v.(type) {
	case *Document, []any:
		return false
	}
	return true
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case string:
		return quoteString(t)
	}
	return fmt.Sprintf("%v", v)
}

// quoteString quotes only when the raw form would be ambiguous inside
// a row or after a key.
func quoteString(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsAny(s, ",:\"\n[]{}") || s != strings.TrimSpace(s) || looksLikeLiteral(s) {
		return strconv.Quote(s)
	}
	return s
}

func looksLikeLiteral(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
