package bill

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnits_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{name: "Number", body: `{"units":120.5}`, want: 120.5},
		{name: "NumericString", body: `{"units":" 42 "}`, want: 42},
		{name: "Text", body: `{"units":"abc"}`, want: 0},
		{name: "Null", body: `{"units":null}`, want: 0},
		{name: "Absent", body: `{}`, want: 0},
		{name: "Negative", body: `{"units":-5}`, want: 0},
		{name: "Object", body: `{"units":{"v":1}}`, want: 0},
		{name: "Bool", body: `{"units":true}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req createBillRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, float64(req.Units))
		})
	}
}
