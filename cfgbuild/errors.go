package cfgbuild

import "github.com/pkg/errors"

// ErrBoundaryMismatch is returned by Reconcile's post-condition check
// when len(starts) != len(ends) after reconciliation. It is fatal: CFG
// construction is skipped for the whole analysis.
var ErrBoundaryMismatch = errors.New("boundary mismatch: len(starts) != len(ends)")

// ErrDanglingSuccessor is returned by the CFG Builder when a successor
// line does not correspond to any reconciled block start and is not the
// NotTaken sentinel. This should not occur for well-formed boundary
// data; it guards against a malformed boundary report reaching graph
// construction.
var ErrDanglingSuccessor = errors.New("cfgbuild: successor line is not a block start")
