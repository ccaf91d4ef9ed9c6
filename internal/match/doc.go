// Package match pairs names and types for the offline tools: identifier
// normalization, edit-distance similarity, "did you mean" suggestions and a
// go/types judgement of which built-in converter would serve a field pair.
package match
