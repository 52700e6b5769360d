package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Bool decodes the upstream's truthy flags: true/false, 0/1 and their
// string forms. Anything else decodes as false.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*b = true
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		*b = false
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "si", "yes":
			*b = true
		default:
			*b = false
		}
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		*b = Bool(err == nil && n != 0)
	}
	return nil
}

// LooseString decodes a JSON string. Numbers keep their literal text; any
// other value (false, null, objects, arrays) decodes as empty.
type LooseString string

func (l *LooseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = LooseString(s)
	case len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')):
		*l = LooseString(data)
	default:
		*l = ""
	}
	return nil
}

// Envelope is the common {success, message, error} part of every response.
type Envelope struct {
	Success Bool        `json:"success"`
	Message LooseString `json:"message"`
	Mensaje LooseString `json:"mensaje"`
	Error   LooseString `json:"error"`
}

// Text returns the first non-empty human-readable field.
func (e Envelope) Text() string {
	for _, v := range []LooseString{e.Message, e.Mensaje} {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}
