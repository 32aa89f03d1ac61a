package export

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/wasm-cfg/cfg"
	"github.com/wippyai/wasm-cfg/errors"
)

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// Snapshot is a serializable copy of a module's recovered graphs.
type Snapshot struct {
	Version     uint32           `cbor:"1,keyasint"`
	ImportCount uint32           `cbor:"2,keyasint"`
	Functions   []FunctionRecord `cbor:"3,keyasint"`
	Nodes       []string         `cbor:"4,keyasint,omitempty"` // call graph nodes
	Calls       []CallRecord     `cbor:"5,keyasint,omitempty"`
}

// FunctionRecord is one function of a Snapshot.
type FunctionRecord struct {
	Index       uint32        `cbor:"1,keyasint"`
	ID          uint32        `cbor:"2,keyasint"`
	Name        string        `cbor:"3,keyasint"`
	Blocks      []BlockRecord `cbor:"4,keyasint,omitempty"`
	Edges       []EdgeRecord  `cbor:"5,keyasint,omitempty"`
	Error       string        `cbor:"6,keyasint,omitempty"`
	Diagnostics []string      `cbor:"7,keyasint,omitempty"`
}

// BlockRecord is a basic block with its instructions rendered as text.
type BlockRecord struct {
	Name         string   `cbor:"1,keyasint"`
	Start        uint32   `cbor:"2,keyasint"`
	End          uint32   `cbor:"3,keyasint"`
	Instructions []string `cbor:"4,keyasint,omitempty"`
}

// EdgeRecord connects two blocks of the same function by start offset.
type EdgeRecord struct {
	From uint32 `cbor:"1,keyasint"`
	To   uint32 `cbor:"2,keyasint"`
	Kind string `cbor:"3,keyasint"`
}

// CallRecord is a call between global function indices.
type CallRecord struct {
	Caller uint32 `cbor:"1,keyasint"`
	Callee uint32 `cbor:"2,keyasint"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("export: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// NewSnapshot captures m. The call graph is included when withCalls is set.
func NewSnapshot(m *cfg.Module, withCalls bool) *Snapshot {
	s := &Snapshot{
		Version:     SnapshotVersion,
		ImportCount: uint32(m.ImportCount),
		Functions:   make([]FunctionRecord, 0, len(m.Functions)),
	}
	for _, f := range m.Functions {
		s.Functions = append(s.Functions, functionRecord(f))
	}
	if withCalls {
		g := m.CallGraph()
		s.Nodes = g.Nodes
		for _, c := range g.Calls {
			s.Calls = append(s.Calls, CallRecord{Caller: c.Caller, Callee: c.Callee})
		}
	}
	return s
}

func functionRecord(f *cfg.Function) FunctionRecord {
	rec := FunctionRecord{Index: f.Index, ID: f.ID, Name: f.Name}
	if f.Err != nil {
		rec.Error = f.Err.Error()
	}
	for _, d := range f.Diagnostics {
		rec.Diagnostics = append(rec.Diagnostics, d.Error())
	}
	for _, b := range f.Blocks {
		br := BlockRecord{Name: b.Name, Start: b.Start, End: b.End}
		for _, in := range b.Instructions {
			br.Instructions = append(br.Instructions, in.String())
		}
		rec.Blocks = append(rec.Blocks, br)
	}
	for _, e := range f.Edges {
		rec.Edges = append(rec.Edges, EdgeRecord{From: e.From.Offset, To: e.To.Offset, Kind: e.Kind.String()})
	}
	return rec
}

// MarshalSnapshot serializes s to canonical CBOR. Equal snapshots encode
// to equal bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	data, err := cborEncMode.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "marshal snapshot")
	}
	return data, nil
}

// UnmarshalSnapshot deserializes a snapshot and checks its version.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "unmarshal snapshot")
	}
	if s.Version != SnapshotVersion {
		return nil, errors.New(errors.PhaseExport, errors.KindUnsupported).
			Value(s.Version).
			Detail("snapshot version %d", s.Version).
			Build()
	}
	return &s, nil
}

// Function returns the record with global index id.
func (s *Snapshot) Function(id uint32) (*FunctionRecord, bool) {
	for i := range s.Functions {
		if s.Functions[i].ID == id {
			return &s.Functions[i], true
		}
	}
	return nil, false
}
