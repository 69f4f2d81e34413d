// Package rule defines import rules: which sheet to read, which column
// holds the record id and the template id, and how every other column is
// converted and written into the record.
//
// Rules are immutable once built. They are assembled either in Go with
// New(...).Build() or from YAML rule files with Parse and Compile.
// Derive starts a new builder from an existing rule, so variants can
// override single fields without touching the base.
//
// YAML format:
//
//	rules:
//	  - name: items
//	    type: item
//	    source: items.xlsx
//	    sheet: Items
//	    header_row: 1
//	    index: id
//	    template: base
//	    fields:
//	      - column: name
//	        converter: str
//	      - column: hp
//	        path: stats.hp
//	        converter: int
//	        directive: default
//	      - column: fire
//	        converter: str
//	        directive: {as: "tags[]"}
//	  - name: rare_items
//	    extends: items
//	    sheet: Rare
package rule
