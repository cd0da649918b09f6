package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON stores schemaless JSON documents in a MySQL json column.
type JSON json.RawMessage

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = JSON("{}")
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("invalid scan source")
	}
	*j = JSON(bytes)
	return nil
}

// MarshalJSON implements the json.Marshaler interface
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = JSON(data)
	return nil
}

// JSONFrom marshals v into a JSON column value. Marshal errors collapse to "{}"
// because every caller hands in map/struct types that cannot fail.
func JSONFrom(v interface{}) JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return JSON("{}")
	}
	return JSON(data)
}

// AsMap decodes the document into a generic map. Empty documents decode to an
// empty map, never nil.
func (j JSON) AsMap() map[string]interface{} {
	out := map[string]interface{}{}
	if len(j) == 0 {
		return out
	}
	_ = json.Unmarshal(j, &out)
	return out
}
