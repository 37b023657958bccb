package lineage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ID is a workflow id as it appears in stored or exported lineage. Schedulers
// emit integer ids, hand-written documents often use strings; both decode to
// the decimal string used everywhere else in the package.
type ID string

// UnmarshalJSON accepts a JSON string or an integer.
func (id *ID) UnmarshalJSON(data []byte) error {
	s, err := jsonScalar(data)
	if err != nil {
		return fmt.Errorf("workflow id: %w", err)
	}
	*id = ID(s)
	return nil
}

// UnmarshalBSONValue accepts a BSON string, int32 or int64.
func (id *ID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	s, err := bsonScalar(t, data)
	if err != nil {
		return fmt.Errorf("workflow id: %w", err)
	}
	*id = ID(s)
	return nil
}

// UnmarshalJSON accepts the status code as a string or an integer.
func (s *Status) UnmarshalJSON(data []byte) error {
	v, err := jsonScalar(data)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	*s = Status(v)
	return nil
}

// UnmarshalBSONValue accepts the status code as a string, int32 or int64.
func (s *Status) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v, err := bsonScalar(t, data)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	*s = Status(v)
	return nil
}

// UnmarshalJSON decodes a node whose id may be numeric.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	var aux struct {
		plain
		ID ID `json:"id"`
	}
	aux.plain = plain(*n)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*n = Node(aux.plain)
	n.ID = string(aux.ID)
	return nil
}

// UnmarshalJSON decodes an edge whose endpoints may be numeric.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var aux struct {
		Source ID `json:"source"`
		Target ID `json:"target"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Source, e.Target = string(aux.Source), string(aux.Target)
	return nil
}

// UnmarshalJSON decodes a relation whose workflow ids may be numeric.
func (r *Relation) UnmarshalJSON(data []byte) error {
	var aux struct {
		Source ID `json:"sourceWorkFlowId"`
		Target ID `json:"targetWorkFlowId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.SourceWorkFlowID, r.TargetWorkFlowID = string(aux.Source), string(aux.Target)
	return nil
}

// jsonScalar returns a JSON string's value or an integer's decimal form.
// null decodes to "".
func jsonScalar(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		return "", nil
	case len(data) > 0 && data[0] == '"':
		var s string
		err := json.Unmarshal(data, &s)
		return s, err
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return "", fmt.Errorf("want string or integer, got %s", data)
	}
	return strconv.FormatInt(v, 10), nil
}

func bsonScalar(t bsontype.Type, data []byte) (string, error) {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		return raw.StringValue(), nil
	case bsontype.Int32:
		return strconv.FormatInt(int64(raw.Int32()), 10), nil
	case bsontype.Int64:
		return strconv.FormatInt(raw.Int64(), 10), nil
	case bsontype.Null, bsontype.Undefined:
		return "", nil
	}
	return "", fmt.Errorf("want string or integer, got BSON %s", t)
}
