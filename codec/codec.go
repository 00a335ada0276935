// Package codec encodes the JSON documents a run persists next to its
// result blocks, such as the run manifest.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Codec marshals run documents. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// JSON encodes documents as JSON. Indent produces two-space indented
// output terminated by a newline.
type JSON struct {
	Indent bool
	// Strict rejects fields the target type does not declare.
	Strict bool
}

// Default is the codec used for manifests: indented for reading in a
// bucket browser, lenient so older readers accept newer fields.
var Default Codec = JSON{Indent: true}

func (c JSON) Marshal(v any) ([]byte, error) {
	if !c.Indent {
		return json.Marshal(v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (c JSON) Unmarshal(data []byte, v any) error {
	if !c.Strict {
		return json.Unmarshal(data, v)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("codec: trailing data after %s document", c.Name())
	}
	return nil
}

func (c JSON) Name() string {
	switch {
	case c.Indent && c.Strict:
		return "json-indent-strict"
	case c.Indent:
		return "json-indent"
	case c.Strict:
		return "json-strict"
	}
	return "json"
}
