package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

const identitySchemaName = "identity.json"

// identityDocument rejects identities the view router could not place on a panel.
const identityDocument = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "username", "role"],
  "properties": {
    "id": {"type": "integer", "minimum": 1},
    "username": {"type": "string", "minLength": 1},
    "full_name": {"type": ["string", "null"]},
    "email": {"type": ["string", "null"]},
    "student_id": {"type": ["string", "null"]},
    "role": {"enum": ["student", "teacher", "admin"]}
  }
}`

type identitySchema struct {
	schema *jsonschema.Schema
}

func newIdentitySchema() (*identitySchema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(identitySchemaName, bytes.NewReader([]byte(identityDocument))); err != nil {
		return nil, fmt.Errorf("api: load identity schema: %w", err)
	}
	schema, err := compiler.Compile(identitySchemaName)
	if err != nil {
		return nil, fmt.Errorf("api: compile identity schema: %w", err)
	}
	return &identitySchema{schema: schema}, nil
}

// decode validates raw against the identity schema before decoding it. A
// payload that fails is reported like an unusable response.
func (s *identitySchema) decode(op string, raw json.RawMessage) (attendance.User, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return attendance.User{}, &attendance.NetworkError{Op: op + ": identity", Err: errors.New("empty identity payload")}
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return attendance.User{}, &attendance.NetworkError{Op: op + ": identity", Err: err}
	}
	if err := s.schema.Validate(doc); err != nil {
		return attendance.User{}, &attendance.NetworkError{Op: op + ": identity", Err: err}
	}
	var user attendance.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return attendance.User{}, &attendance.NetworkError{Op: op + ": identity", Err: err}
	}
	return user, nil
}
