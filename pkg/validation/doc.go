// Package validation guards board records before they enter or leave the
// board store. The record shape is a CUE schema embedded from schema.cue; a
// record only needs a numeric boardId, everything else is left open.
package validation
