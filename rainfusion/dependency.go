package rainfusion

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/andreyvit/glass"
)

// Dependency names another catalogue entry a mod needs.
//
// Every codec stores it as a two-element array, the id in its hyphenated
// form followed by a ModDependency:
//
//	["2b770fa6-749f-4aee-b49d-7bc4a0fe5dbe",{"name":"...","summary":"...","version":"..."}]
type Dependency struct {
	ID      glass.ID
	Name    string
	Summary string
	Version string
}

// ModDependency is the second element of a stored Dependency.
type ModDependency struct {
	Name    string `json:"name" yaml:"name" msgpack:"name" cbor:"name"`
	Summary string `json:"summary" yaml:"summary" msgpack:"summary" cbor:"summary"`
	Version string `json:"version" yaml:"version" msgpack:"version" cbor:"version"`
}

var errDependencyShape = errors.New("dependency must be an [id, {name, summary, version}] pair")

func (d Dependency) Info() ModDependency {
	return ModDependency{Name: d.Name, Summary: d.Summary, Version: d.Version}
}

func (d Dependency) pairID() string {
	return d.ID.UUID().String()
}

func (d *Dependency) set(id string, info ModDependency) error {
	v, err := glass.ParseID(id)
	if err != nil {
		return fmt.Errorf("dependency: %w", err)
	}
	*d = Dependency{ID: v, Name: info.Name, Summary: info.Summary, Version: info.Version}
	return nil
}

func (d Dependency) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{d.pairID(), d.Info()})
}

func (d *Dependency) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return errDependencyShape
	}
	var id string
	var info ModDependency
	if err := json.Unmarshal(pair[0], &id); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[1], &info); err != nil {
		return err
	}
	return d.set(id, info)
}

func (d Dependency) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeString(d.pairID()); err != nil {
		return err
	}
	return enc.Encode(d.Info())
}

func (d *Dependency) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return errDependencyShape
	}
	id, err := dec.DecodeString()
	if err != nil {
		return err
	}
	var info ModDependency
	if err := dec.Decode(&info); err != nil {
		return err
	}
	return d.set(id, info)
}

func (d Dependency) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal([]any{d.pairID(), d.Info()})
}

func (d *Dependency) UnmarshalCBOR(data []byte) error {
	var pair []cbor.RawMessage
	if err := cbor.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return errDependencyShape
	}
	var id string
	var info ModDependency
	if err := cbor.Unmarshal(pair[0], &id); err != nil {
		return err
	}
	if err := cbor.Unmarshal(pair[1], &info); err != nil {
		return err
	}
	return d.set(id, info)
}

func (d Dependency) MarshalYAML() (any, error) {
	return []any{d.pairID(), d.Info()}, nil
}

func (d *Dependency) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode || len(node.Content) != 2 {
		return errDependencyShape
	}
	var id string
	var info ModDependency
	if err := node.Content[0].Decode(&id); err != nil {
		return err
	}
	if err := node.Content[1].Decode(&info); err != nil {
		return err
	}
	return d.set(id, info)
}
