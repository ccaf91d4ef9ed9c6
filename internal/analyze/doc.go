// Package analyze loads Go packages with go/packages and records the
// exported named types, their fields and the accessor methods of their
// pointer method sets. The offline checker and the scaffolder work on this
// graph instead of reflect, so they can inspect packages that are not
// compiled into the tool.
package analyze
