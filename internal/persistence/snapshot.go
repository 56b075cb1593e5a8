package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/MatchsticksReinforcementLearning/internal/agent"
)

// ErrMalformedSnapshot is returned when a stored document cannot be turned
// back into an agent snapshot.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Document field names
const (
	FieldExplorationRate = "exploration_rate"
	FieldLearningRate    = "learning_rate"
	FieldValueTable      = "value_table"
)

var marshalOptions = protojson.MarshalOptions{
	Multiline: true,
	Indent:    "  ",
}

// ToStruct converts a snapshot into its document form
func ToStruct(snap agent.Snapshot) (*structpb.Struct, error) {
	if snap.Table == nil {
		return nil, fmt.Errorf("%w: missing value table", ErrMalformedSnapshot)
	}

	table := make(map[string]interface{}, snap.Table.Len())
	for _, s := range snap.Table.States() {
		table[s.String()] = snap.Table.Value(s)
	}

	doc, err := structpb.NewStruct(map[string]interface{}{
		FieldExplorationRate: snap.ExplorationRate,
		FieldLearningRate:    snap.LearningRate,
		FieldValueTable:      table,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot document: %w", err)
	}
	return doc, nil
}

// FromStruct parses a document. Missing fields, non numeric values and
// unknown keys are reported as ErrMalformedSnapshot with no partial result.
func FromStruct(doc *structpb.Struct) (agent.Snapshot, error) {
	if doc == nil {
		return agent.Snapshot{}, fmt.Errorf("%w: empty document", ErrMalformedSnapshot)
	}
	fields := doc.GetFields()

	exploration, err := numberField(fields, FieldExplorationRate)
	if err != nil {
		return agent.Snapshot{}, err
	}
	learning, err := numberField(fields, FieldLearningRate)
	if err != nil {
		return agent.Snapshot{}, err
	}

	tv, ok := fields[FieldValueTable]
	if !ok {
		return agent.Snapshot{}, fmt.Errorf("%w: missing %s", ErrMalformedSnapshot, FieldValueTable)
	}
	ts, ok := tv.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return agent.Snapshot{}, fmt.Errorf("%w: %s must be an object", ErrMalformedSnapshot, FieldValueTable)
	}

	table := agent.NewEmptyValueTable()
	for key, v := range ts.StructValue.GetFields() {
		s, err := agent.ParseState(key)
		if err != nil {
			return agent.Snapshot{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
		}
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return agent.Snapshot{}, fmt.Errorf("%w: value for %q must be a number", ErrMalformedSnapshot, key)
		}
		table.Set(s, n.NumberValue)
	}

	snap := agent.Snapshot{
		ExplorationRate: exploration,
		LearningRate:    learning,
		Table:           table,
	}
	if err := snap.Validate(); err != nil {
		return agent.Snapshot{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	return snap, nil
}

func numberField(fields map[string]*structpb.Value, name string) (float64, error) {
	v, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedSnapshot, name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", ErrMalformedSnapshot, name)
	}
	return n.NumberValue, nil
}

// Encode renders a snapshot as an indented JSON document
func Encode(snap agent.Snapshot) ([]byte, error) {
	doc, err := ToStruct(snap)
	if err != nil {
		return nil, err
	}
	data, err := marshalOptions.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a JSON document produced by Encode
func Decode(data []byte) (agent.Snapshot, error) {
	doc := &structpb.Struct{}
	if err := protojson.Unmarshal(data, doc); err != nil {
		return agent.Snapshot{}, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}
	return FromStruct(doc)
}

// SaveFile writes the snapshot next to path and renames it into place, so
// readers never see a half written file.
func SaveFile(path string, snap agent.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

// LoadFile reads a snapshot written by SaveFile
func LoadFile(path string) (agent.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return agent.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap, err := Decode(data)
	if err != nil {
		return agent.Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}
