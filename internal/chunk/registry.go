package chunk

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// languageSpec holds the grammar and extraction query for one language.
// Queries capture the outer node as @chunk and the identifier as @name.
type languageSpec struct {
	language *sitter.Language
	query    string
}

// specs maps scanner language names to grammar specs.
var specs = map[string]*languageSpec{
	"go": {
		language: golang.GetLanguage(),
		query: `
			(function_declaration name: (identifier) @name) @chunk
			(method_declaration name: (field_identifier) @name) @chunk
			(type_declaration (type_spec name: (type_identifier) @name)) @chunk
			(import_declaration) @chunk
		`,
	},
	"javascript": {
		language: javascript.GetLanguage(),
		query: `
			(function_declaration name: (identifier) @name) @chunk
			(class_declaration name: (identifier) @name) @chunk
			(import_statement) @chunk
		`,
	},
	"typescript": {
		language: typescript.GetLanguage(),
		query: `
			(function_declaration name: (identifier) @name) @chunk
			(class_declaration name: (type_identifier) @name) @chunk
			(interface_declaration name: (type_identifier) @name) @chunk
			(import_statement) @chunk
		`,
	},
	"tsx": {
		language: tsx.GetLanguage(),
		query: `
			(function_declaration name: (identifier) @name) @chunk
			(class_declaration name: (type_identifier) @name) @chunk
			(import_statement) @chunk
		`,
	},
	"python": {
		language: python.GetLanguage(),
		query: `
			(function_definition name: (identifier) @name) @chunk
			(class_definition name: (identifier) @name) @chunk
			(import_statement) @chunk
			(import_from_statement) @chunk
		`,
	},
	"rust": {
		language: rust.GetLanguage(),
		query: `
			(function_item name: (identifier) @name) @chunk
			(struct_item name: (type_identifier) @name) @chunk
			(enum_item name: (type_identifier) @name) @chunk
			(trait_item name: (type_identifier) @name) @chunk
			(use_declaration) @chunk
		`,
	},
}

// lookupSpec returns the grammar spec for a language, or nil.
func lookupSpec(language string) *languageSpec {
	return specs[language]
}

// kindForNode maps a tree-sitter node type to a chunk Kind.
func kindForNode(nodeType string) Kind {
	switch nodeType {
	case "function_declaration", "method_declaration", "function_definition",
		"method_definition", "function_item":
		return KindFunction
	case "type_declaration", "class_declaration", "class_definition",
		"interface_declaration", "struct_item", "enum_item", "trait_item":
		return KindType
	case "import_declaration", "import_statement", "import_from_statement",
		"use_declaration":
		return KindImport
	}
	return KindOther
}
