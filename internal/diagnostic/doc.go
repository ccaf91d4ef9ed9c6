// Package diagnostic holds the findings of the offline mapping checker.
package diagnostic
