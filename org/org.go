// Package org ships the built-in Org grammar catalog and the default
// highlight rules. Vaults that dump trees for another grammar point the
// engine at their own node-types.json instead.
package org

import (
	_ "embed"
	"sync"

	"github.com/zac-garby/noteboks/internal/treeio"
	"github.com/zac-garby/noteboks/tree"
)

//go:embed node_types.json
var nodeTypesJSON []byte

//go:embed highlights.scm
var highlightRules string

var (
	langOnce sync.Once
	lang     *tree.Language
)

// Language returns the built-in org catalog. The embedded catalog is
// parsed once; a malformed embed is a build defect and panics.
func Language() *tree.Language {
	langOnce.Do(func() {
		l, err := treeio.ParseLanguage("org", nodeTypesJSON)
		if err != nil {
			panic("org: embedded node types: " + err.Error())
		}
		lang = l
	})
	return lang
}

// HighlightRules returns the default highlight rule source.
func HighlightRules() string {
	return highlightRules
}

// NodeTypes returns a copy of the embedded node-types.json.
func NodeTypes() []byte {
	return append([]byte(nil), nodeTypesJSON...)
}
