// Package mapping describes how transfer types map onto domain types.
//
// A TypeMapping associates one transfer type with its domain type and holds
// per-field overrides. Mappings are registered in a Catalog, built in code
// with New, read from struct tags on the transfer type, or loaded from YAML.
//
// # Struct tags
//
//	type PersonTO struct {
//	    Name        string
//	    City        string    `tomap:"City,path=Address"`
//	    LastChanged time.Time `tomap:",readonly"`
//	    Comment     string    `tomaptags:"admin,zzz:readonly,*"`
//	    Cache       []byte    `tomap:"-"`
//	}
//
// # Mapping files
//
//	version: "1"
//	mappings:
//	  - transfer: PersonTO
//	    domain: Person
//	    pre: [audit]
//	    ignore: [Cache]
//	    fields:
//	      City:
//	        path: Address
//	      Comment:
//	        tags:
//	          - admin
//	          - zzz:readonly
//	          - tag: ops
//	            target: Remark
//
// Type names in mapping files are resolved through Catalog.Bind; registered
// transfer types are bound automatically.
//
// # Tags
//
// A field with tag rules converts only when a rule matches. The TagAlways
// rule is checked first, then the caller's tags in order; the first match
// decides. A conversion without tags uses TagDefault.
package mapping
