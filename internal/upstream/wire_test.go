package upstream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoolDecoding(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`null`, false},
		{`1`, true},
		{`0`, false},
		{`"1"`, true},
		{`"true"`, true},
		{`"no"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var out struct {
				Success Bool `json:"success"`
			}
			require.NoError(t, json.Unmarshal([]byte(`{"success":`+tt.in+`}`), &out))
			assert.Equal(t, tt.want, bool(out.Success))
		})
	}
}

func TestEnvelopeText(t *testing.T) {
	assert.Equal(t, "hola", Envelope{Mensaje: "hola"}.Text())
	assert.Equal(t, "done", Envelope{Message: " done ", Mensaje: "hola"}.Text())
	assert.Equal(t, "", Envelope{Error: "x"}.Text())
}

func TestEnvelopeToleratesNonStringFields(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantText    string
		wantError   LooseString
		wantSuccess bool
	}{
		{"error false", `{"success":true,"message":"Reunion agendada","error":false}`, "Reunion agendada", "", true},
		{"null message", `{"success":true,"message":null,"mensaje":"ok"}`, "ok", "", true},
		{"object error", `{"success":false,"error":{"code":3}}`, "", "", false},
		{"array message", `{"success":false,"message":[],"error":"sin cupo"}`, "", "sin cupo", false},
		{"numeric error", `{"success":false,"error":42}`, "", "42", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env Envelope
			require.NoError(t, json.Unmarshal([]byte(tt.body), &env))
			assert.Equal(t, tt.wantSuccess, bool(env.Success))
			assert.Equal(t, tt.wantText, env.Text())
			assert.Equal(t, tt.wantError, env.Error)
		})
	}
}
