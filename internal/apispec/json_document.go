// SPDX-License-Identifier: AGPL-3.0-or-later
package apispec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// prettyOptions mirrors a 2-space indented encoder: no single-line arrays,
// keys left in document order.
var prettyOptions = &pretty.Options{Indent: "  "}

// jsonDocument edits the raw bytes so keys and untouched values stay
// exactly as they were in the source.
type jsonDocument struct {
	raw []byte
}

func decodeJSON(data []byte) (*jsonDocument, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !gjson.ValidBytes(data) {
		return nil, &Error{Op: "decode", Kind: ErrMalformedInput, Err: jsonSyntaxError(data)}
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, schemaErrorf("", "document root is %s, want object", jsonKind(root))
	}
	paths := root.Get("paths")
	if !paths.Exists() {
		return nil, schemaErrorf("", "missing paths")
	}
	if !paths.IsObject() {
		return nil, schemaErrorf("", "paths is %s, want object", jsonKind(paths))
	}

	var err error
	paths.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			err = schemaErrorf(key.String(), "path item is %s, want object", jsonKind(value))
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return &jsonDocument{raw: data}, nil
}

func (d *jsonDocument) Format() Format { return FormatJSON }

func (d *jsonDocument) Paths() ([]PathItem, error) {
	var items []PathItem
	gjson.GetBytes(d.raw, "paths").ForEach(func(key, value gjson.Result) bool {
		item := PathItem{Path: key.String(), HasTags: jsonDeclaresTags(value)}
		value.ForEach(func(k, v gjson.Result) bool {
			if v.IsObject() && jsonDeclaresTags(v) {
				item.Operations = append(item.Operations, k.String())
			}
			return true
		})
		items = append(items, item)
		return true
	})
	return items, nil
}

func (d *jsonDocument) Apply(res Result) error {
	var (
		buf bytes.Buffer
		i   int
		err error
	)
	buf.WriteByte('{')
	gjson.GetBytes(d.raw, "paths").ForEach(func(key, value gjson.Result) bool {
		if i >= len(res.Assignments) || res.Assignments[i].Path != key.String() {
			err = fmt.Errorf("tag plan does not cover path %q", key.String())
			return false
		}
		var item []byte
		item, err = retagJSONItem(value, res.Assignments[i])
		if err != nil {
			err = fmt.Errorf("path %q: %w", key.String(), err)
			return false
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(key.Raw)
		buf.WriteByte(':')
		buf.Write(item)
		i++
		return true
	})
	if err != nil {
		return err
	}
	if i != len(res.Assignments) {
		return fmt.Errorf("tag plan has %d paths, document has %d", len(res.Assignments), i)
	}
	buf.WriteByte('}')

	out, err := sjson.SetRawBytes(d.raw, "paths", buf.Bytes())
	if err != nil {
		return fmt.Errorf("setting paths: %w", err)
	}
	catalog, err := marshalJSON(res.Catalog)
	if err != nil {
		return err
	}
	out, err = sjson.SetRawBytes(out, "tags", catalog)
	if err != nil {
		return fmt.Errorf("setting tags: %w", err)
	}
	d.raw = out
	return nil
}

func (d *jsonDocument) Encode() ([]byte, error) {
	return pretty.PrettyOptions(d.raw, prettyOptions), nil
}

// retagJSONItem rebuilds one path item object, replacing the tags of the
// item itself and of every operation listed in a.
func retagJSONItem(value gjson.Result, a Assignment) ([]byte, error) {
	tags, err := marshalJSON([]string{a.Tag})
	if err != nil {
		return nil, err
	}
	ops := make(map[string]bool, len(a.Operations))
	for _, op := range a.Operations {
		ops[op] = true
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	value.ForEach(func(k, v gjson.Result) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(k.Raw)
		buf.WriteByte(':')

		switch name := k.String(); {
		case name == "tags" && a.PathTags:
			buf.Write(tags)
		case ops[name]:
			var op []byte
			op, err = sjson.SetRawBytes([]byte(v.Raw), "tags", tags)
			if err != nil {
				err = fmt.Errorf("operation %q: %w", name, err)
				return false
			}
			buf.Write(op)
		default:
			buf.WriteString(v.Raw)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonDeclaresTags reports whether tags holds a truthy value. null, false,
// "" and 0 count as absent; any array or object counts, even when empty.
func jsonDeclaresTags(v gjson.Result) bool {
	t := v.Get("tags")
	switch t.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return t.Str != ""
	case gjson.Number:
		return t.Num != 0
	}
	return true
}

func jsonKind(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	case r.Type == gjson.True || r.Type == gjson.False:
		return "boolean"
	default:
		return strings.ToLower(r.Type.String())
	}
}

// jsonSyntaxError recovers a positioned error for invalid input.
func jsonSyntaxError(data []byte) error {
	var v json.RawMessage
	if err := json.Unmarshal(data, &v); err != nil {
		var se *json.SyntaxError
		if errors.As(err, &se) {
			line, col := position(data, se.Offset)
			return fmt.Errorf("line %d, column %d: %w", line, col, err)
		}
		return err
	}
	return errors.New("invalid JSON")
}

func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte("\n")) + 1
	col = int(offset) - bytes.LastIndexByte(prefix, '\n')
	return line, col
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
