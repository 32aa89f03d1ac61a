package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad     Phase = "load"     // input normalization
	PhaseValidate Phase = "validate" // module validation
	PhaseParse    Phase = "parse"    // module metadata parsing
	PhaseDecode   Phase = "decode"   // bytecode to instructions
	PhaseScope    Phase = "scope"    // scope nesting recovery
	PhaseBranch   Phase = "branch"   // branch target resolution
	PhaseEdge     Phase = "edge"     // edge synthesis
	PhaseCall     Phase = "call"     // call graph construction
	PhaseExport   Phase = "export"   // graph export
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData      Kind = "invalid_data"
	KindUnsupported      Kind = "unsupported"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindMalformedScope   Kind = "malformed_scope"
	KindUnresolvedBranch Kind = "unresolved_branch"
	KindMissingSuccessor Kind = "missing_successor"
	KindMalformedOperand Kind = "malformed_operand"
	KindFunctionFailed   Kind = "function_failed"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "/"))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// FuncPath returns a path segment naming a function index.
func FuncPath(funcIdx uint32) string {
	return fmt.Sprintf("func[%d]", funcIdx)
}

// OffsetPath returns a path segment naming a byte offset.
func OffsetPath(offset uint32) string {
	return fmt.Sprintf("0x%x", offset)
}

// Convenience constructors for control-flow recovery

// MalformedScope reports an unbalanced scope stack in a function body.
func MalformedScope(funcIdx, offset uint32, detail string) *Error {
	return &Error{
		Phase:  PhaseScope,
		Kind:   KindMalformedScope,
		Path:   []string{FuncPath(funcIdx), OffsetPath(offset)},
		Detail: detail,
	}
}

// UnresolvedBranch reports a branch whose relative depth matches no
// enclosing scope.
func UnresolvedBranch(funcIdx, offset uint32, mnemonic string, depth uint32) *Error {
	return &Error{
		Phase:  PhaseBranch,
		Kind:   KindUnresolvedBranch,
		Path:   []string{FuncPath(funcIdx), OffsetPath(offset)},
		Detail: fmt.Sprintf("%s %d matches no enclosing scope", mnemonic, depth),
		Value:  depth,
	}
}

// MissingSuccessor reports an edge whose destination block does not exist.
func MissingSuccessor(funcIdx, offset uint32, detail string) *Error {
	return &Error{
		Phase:  PhaseEdge,
		Kind:   KindMissingSuccessor,
		Path:   []string{FuncPath(funcIdx), OffsetPath(offset)},
		Detail: detail,
	}
}

// MalformedOperand reports an operand that does not parse as an index.
func MalformedOperand(phase Phase, path []string, operand string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedOperand,
		Path:   path,
		Detail: fmt.Sprintf("operand %q is not an index", operand),
		Value:  operand,
		Cause:  cause,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// FunctionError marks a whole function as failed, keeping the reason as cause.
func FunctionError(funcIdx uint32, cause error) *Error {
	return &Error{
		Phase:  phaseOf(cause),
		Kind:   KindFunctionFailed,
		Path:   []string{FuncPath(funcIdx)},
		Detail: "function skipped",
		Cause:  cause,
	}
}

func phaseOf(err error) Phase {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Phase
	}
	return PhaseDecode
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates an input loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// Diagnostics collects non-fatal problems found while building graphs.
type Diagnostics []*Error

// Count returns how many diagnostics have the given kind.
func (d Diagnostics) Count(kind Kind) int {
	n := 0
	for _, e := range d {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Err joins the diagnostics into a single error, or returns nil when empty.
func (d Diagnostics) Err() error {
	if len(d) == 0 {
		return nil
	}
	errs := make([]error, len(d))
	for i, e := range d {
		errs[i] = e
	}
	return stderrors.Join(errs...)
}
