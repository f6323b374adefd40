// Package errors provides coded domain errors shared by the dungeon packages.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeNilArgument marks a required square, border, dungeon or position that was absent.
	CodeNilArgument Code = "NIL_ARGUMENT"
	// CodeIllegalArgument marks an argument that is present but unusable, such as an occupied
	// position.
	CodeIllegalArgument Code = "ILLEGAL_ARGUMENT"
	// CodeOutOfRange marks a value outside its configured bounds (temperature, humidity,
	// coordinates).
	CodeOutOfRange Code = "OUT_OF_RANGE"
	// CodeIllegalState marks an operation on a terminated entity or an invalid state transition.
	CodeIllegalState Code = "ILLEGAL_STATE"
	// CodeStructuralViolation marks a border configuration or placement that breaks an invariant.
	CodeStructuralViolation Code = "STRUCTURAL_VIOLATION"
	// CodeMergeBounds marks a merge whose mean temperature falls outside a member's bounds.
	CodeMergeBounds Code = "MERGE_BOUNDS"
	// CodeNotFound marks a lookup of a position that holds no square.
	CodeNotFound Code = "NOT_FOUND"
)

// String returns the code as a string.
func (c Code) String() string {
	return string(c)
}
