// Package erio provides JSON import and export for entity-relationship models.
//
// # Overview
//
// This package serializes an [er.Diagram] to and from a simple JSON format,
// designed for:
//
//   - Inspecting a parsed model without rendering it
//   - Integration with external tools that produce or consume schema data
//   - Round-trip preservation: import, render, export, and re-import identically
//
// # JSON Format
//
//	{
//	  "title": "Order handling",
//	  "entities": [
//	    {
//	      "name": "CUSTOMER",
//	      "alias": "Customer Account",
//	      "attributes": [
//	        {"name": "id", "type": "int", "keys": ["PK"]}
//	      ]
//	    }
//	  ],
//	  "relationships": [
//	    {
//	      "entityA": "CUSTOMER",
//	      "entityB": "ORDER",
//	      "role": "places",
//	      "cardA": "exactly-one",
//	      "cardB": "zero-or-more",
//	      "identification": "identifying"
//	    }
//	  ]
//	}
//
// Cardinalities use the lowercase names produced by [er.Cardinality.String].
// Entity and attribute order in the arrays is the model's insertion order and
// is preserved on import.
//
// # Import and Export
//
// Use [ImportJSON]/[ExportJSON] for file paths, or [ReadJSON]/[WriteJSON] for
// arbitrary readers and writers. Import validates cardinality and
// identification names and reports the offending value.
package erio
