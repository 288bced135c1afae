// Package tree defines the read-only syntax tree view the highlight
// engine matches against: a language catalog of node types and named
// fields, nodes carrying byte spans and ordered children, and the tree
// tying them to their source text.
//
// Trees are produced elsewhere (a grammar's parser, or a serialized
// dump); this package never parses raw text and a tree is never
// mutated after construction.
package tree

// Symbol identifies one node type of a language. Symbol 0 is reserved
// and never names a real type.
type Symbol uint16

// FieldID identifies one named field of a language. FieldID 0 means
// "no field".
type FieldID uint16

// SymbolInfo describes a single node type. Anonymous types (literal
// tokens such as "*" or "[") carry their token text as Name and have
// Named false. Fields lists the field names the type may assign to
// its children.
type SymbolInfo struct {
	Name   string
	Named  bool
	Fields []string
}

// Language is an immutable catalog of the node types and field names a
// grammar can produce. The engine depends only on this enumeration; it
// knows nothing about the grammar's production rules.
type Language struct {
	name       string
	infos      []SymbolInfo // indexed by Symbol, entry 0 unused
	named      map[string]Symbol
	anonymous  map[string]Symbol
	fieldNames []string // indexed by FieldID, entry 0 is ""
	fieldIDs   map[string]FieldID
	typeFields []map[FieldID]bool // indexed by Symbol, nil = no fields
}

// NewLanguage builds a Language from a list of node types. Symbols are
// assigned in list order starting at 1; field IDs in first-appearance
// order starting at 1. Named and anonymous types occupy separate name
// spaces, so a grammar may define both a (string) node and a "string"
// token.
func NewLanguage(name string, types []SymbolInfo) *Language {
	l := &Language{
		name:       name,
		infos:      make([]SymbolInfo, 1, len(types)+1),
		named:      make(map[string]Symbol, len(types)),
		anonymous:  make(map[string]Symbol),
		fieldNames: []string{""},
		fieldIDs:   make(map[string]FieldID),
		typeFields: make([]map[FieldID]bool, 1, len(types)+1),
	}
	for _, info := range types {
		l.addType(info)
	}
	return l
}

func (l *Language) addType(info SymbolInfo) Symbol {
	sym := Symbol(len(l.infos))
	l.infos = append(l.infos, info)
	if info.Named {
		l.named[info.Name] = sym
	} else {
		l.anonymous[info.Name] = sym
	}

	var fields map[FieldID]bool
	if len(info.Fields) > 0 {
		fields = make(map[FieldID]bool, len(info.Fields))
		for _, name := range info.Fields {
			fid, ok := l.fieldIDs[name]
			if !ok {
				fid = FieldID(len(l.fieldNames))
				l.fieldNames = append(l.fieldNames, name)
				l.fieldIDs[name] = fid
			}
			fields[fid] = true
		}
	}
	l.typeFields = append(l.typeFields, fields)
	return sym
}

// WithExtraTypes returns a copy of the language extended with
// additional node types. Existing symbols keep their values and types
// already present are skipped, so patterns compiled against the
// original language still apply to trees built with the extended one.
// Loaders use this for node types a dump mentions but the catalog does
// not: such nodes stay walkable and printable, and no type-keyed
// pattern ever matches them.
func (l *Language) WithExtraTypes(types []SymbolInfo) *Language {
	ext := &Language{
		name:       l.name,
		infos:      append(make([]SymbolInfo, 0, len(l.infos)+len(types)), l.infos...),
		named:      make(map[string]Symbol, len(l.named)+len(types)),
		anonymous:  make(map[string]Symbol, len(l.anonymous)),
		fieldNames: append([]string(nil), l.fieldNames...),
		fieldIDs:   make(map[string]FieldID, len(l.fieldIDs)),
		typeFields: append(make([]map[FieldID]bool, 0, len(l.typeFields)+len(types)), l.typeFields...),
	}
	for name, sym := range l.named {
		ext.named[name] = sym
	}
	for name, sym := range l.anonymous {
		ext.anonymous[name] = sym
	}
	for name, fid := range l.fieldIDs {
		ext.fieldIDs[name] = fid
	}
	for _, info := range types {
		if info.Named {
			if _, ok := ext.named[info.Name]; ok {
				continue
			}
		} else if _, ok := ext.anonymous[info.Name]; ok {
			continue
		}
		ext.addType(info)
	}
	return ext
}

// Name returns the language's name.
func (l *Language) Name() string { return l.name }

// SymbolCount returns the number of node types, excluding the reserved
// zero symbol.
func (l *Language) SymbolCount() int { return len(l.infos) - 1 }

// Symbol resolves a named node type to its symbol.
func (l *Language) Symbol(name string) (Symbol, bool) {
	sym, ok := l.named[name]
	return sym, ok
}

// AnonymousSymbol resolves a literal token to its symbol.
func (l *Language) AnonymousSymbol(text string) (Symbol, bool) {
	sym, ok := l.anonymous[text]
	return sym, ok
}

// SymbolName returns the type name for a symbol, or "" if the symbol
// is out of range.
func (l *Language) SymbolName(sym Symbol) string {
	if int(sym) >= len(l.infos) {
		return ""
	}
	return l.infos[sym].Name
}

// SymbolIsNamed reports whether sym is a named node type.
func (l *Language) SymbolIsNamed(sym Symbol) bool {
	if int(sym) >= len(l.infos) {
		return false
	}
	return l.infos[sym].Named
}

// Field resolves a field name to its ID.
func (l *Language) Field(name string) (FieldID, bool) {
	fid, ok := l.fieldIDs[name]
	return fid, ok
}

// FieldName returns the name for a field ID, or "" for FieldID 0 and
// out-of-range IDs.
func (l *Language) FieldName(fid FieldID) string {
	if int(fid) >= len(l.fieldNames) {
		return ""
	}
	return l.fieldNames[fid]
}

// TypeHasField reports whether the given node type may assign the
// field to one of its children.
func (l *Language) TypeHasField(sym Symbol, fid FieldID) bool {
	if int(sym) >= len(l.typeFields) {
		return false
	}
	fields := l.typeFields[sym]
	return fields != nil && fields[fid]
}
