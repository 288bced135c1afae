package treeio

import (
	"errors"
	"fmt"

	"github.com/valyala/fastjson"

	"github.com/zac-garby/noteboks/tree"
)

var treeParsers fastjson.ParserPool

// ParseTree decodes a parse tree dump against a language catalog. The
// dump is a JSON object {"language", "source", "root"} where each node
// is {"type", "named", "start", "end"} plus an optional "field" (the
// field its parent assigns to it) and "children".
//
// Node types the catalog does not know are interned into an extended
// copy of the language, so foreign dumps stay walkable; such nodes can
// only ever match wildcard patterns. Unknown field names resolve to no
// field at all.
func ParseTree(data []byte, lang *tree.Language) (*tree.Tree, error) {
	if lang == nil {
		return nil, errors.New("treeio: nil language")
	}

	p := treeParsers.Get()
	defer treeParsers.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("treeio: parse tree dump: %w", err)
	}

	if name := string(v.GetStringBytes("language")); name != "" && name != lang.Name() {
		return nil, fmt.Errorf("treeio: dump language %q does not match %q", name, lang.Name())
	}

	rootVal := v.Get("root")
	if rootVal == nil {
		return nil, errors.New(`treeio: dump missing "root"`)
	}

	// The parser arena is reused; the source must outlive it.
	source := append([]byte(nil), v.GetStringBytes("source")...)

	if extra := collectUnknownTypes(rootVal, lang, nil, make(map[string]bool)); len(extra) > 0 {
		lang = lang.WithExtraTypes(extra)
	}

	root, _, err := buildNode(rootVal, lang)
	if err != nil {
		return nil, err
	}
	return tree.NewTree(root, source, lang), nil
}

// ReadTree loads a tree dump file (optionally compressed).
func ReadTree(path string, lang *tree.Language) (*tree.Tree, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := ParseTree(data, lang)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func collectUnknownTypes(v *fastjson.Value, lang *tree.Language, extra []tree.SymbolInfo, seen map[string]bool) []tree.SymbolInfo {
	typ := string(v.GetStringBytes("type"))
	named := v.GetBool("named")

	known := false
	if named {
		_, known = lang.Symbol(typ)
	} else {
		_, known = lang.AnonymousSymbol(typ)
	}
	if !known && typ != "" {
		key := typeKey(typ, named)
		if !seen[key] {
			seen[key] = true
			extra = append(extra, tree.SymbolInfo{Name: typ, Named: named})
		}
	}

	for _, kid := range v.GetArray("children") {
		extra = collectUnknownTypes(kid, lang, extra, seen)
	}
	return extra
}

func buildNode(v *fastjson.Value, lang *tree.Language) (*tree.Node, tree.FieldID, error) {
	typ := string(v.GetStringBytes("type"))
	if typ == "" {
		return nil, 0, errors.New(`treeio: node missing "type"`)
	}
	named := v.GetBool("named")

	var sym tree.Symbol
	var ok bool
	if named {
		sym, ok = lang.Symbol(typ)
	} else {
		sym, ok = lang.AnonymousSymbol(typ)
	}
	if !ok {
		return nil, 0, fmt.Errorf("treeio: unresolved node type %q", typ)
	}

	var fid tree.FieldID
	if f := v.GetStringBytes("field"); len(f) > 0 {
		fid, _ = lang.Field(string(f))
	}

	start, end, err := nodeSpan(v)
	if err != nil {
		return nil, 0, err
	}

	kidVals := v.GetArray("children")
	if len(kidVals) == 0 {
		return tree.NewLeafNode(sym, named, start, end), fid, nil
	}

	kids := make([]*tree.Node, 0, len(kidVals))
	fids := make([]tree.FieldID, 0, len(kidVals))
	for _, kv := range kidVals {
		kid, kfid, err := buildNode(kv, lang)
		if err != nil {
			return nil, 0, err
		}
		kids = append(kids, kid)
		fids = append(fids, kfid)
	}
	return tree.NewParentNodeSpan(sym, named, start, end, kids, fids), fid, nil
}

func nodeSpan(v *fastjson.Value) (uint32, uint32, error) {
	start := v.GetInt("start")
	end := v.GetInt("end")
	if start < 0 || end < start {
		return 0, 0, fmt.Errorf("treeio: bad node span [%d,%d)", start, end)
	}
	return uint32(start), uint32(end), nil
}
