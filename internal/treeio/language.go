package treeio

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/zac-garby/noteboks/tree"
)

// ParseLanguage builds a language catalog from node-types.json data:
// a JSON array of {"type", "named", "fields"} entries as emitted by
// grammar toolchains. Field specs beyond the field names (child type
// lists, arity) are ignored; the engine only needs the enumeration.
func ParseLanguage(name string, data []byte) (*tree.Language, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("treeio: parse node types: %w", err)
	}
	if v.Type() != fastjson.TypeArray {
		return nil, errors.New("treeio: node types must be a JSON array")
	}

	arr, _ := v.Array()
	types := make([]tree.SymbolInfo, 0, len(arr))
	seen := make(map[string]bool, len(arr))

	for _, tv := range arr {
		typ := string(tv.GetStringBytes("type"))
		if typ == "" {
			return nil, errors.New(`treeio: node type entry missing "type"`)
		}
		named := tv.GetBool("named")

		// Toolchains emit supertype entries that repeat a name; the
		// first occurrence wins.
		key := typeKey(typ, named)
		if seen[key] {
			continue
		}
		seen[key] = true

		info := tree.SymbolInfo{Name: typ, Named: named}
		if fields := tv.GetObject("fields"); fields != nil {
			fields.Visit(func(key []byte, _ *fastjson.Value) {
				info.Fields = append(info.Fields, string(key))
			})
		}
		types = append(types, info)
	}

	return tree.NewLanguage(name, types), nil
}

// ReadLanguage loads a node-types.json file (optionally compressed)
// into a language catalog named after the grammar.
func ReadLanguage(name, path string) (*tree.Language, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	lang, err := ParseLanguage(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lang, nil
}

func typeKey(name string, named bool) string {
	if named {
		return "n:" + name
	}
	return "a:" + name
}
