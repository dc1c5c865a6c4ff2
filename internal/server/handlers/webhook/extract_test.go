package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOrderID(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		wantOK bool
	}{
		{
			name:   "direct numeric id",
			body:   `{"id": 5678901234, "name": "#3403"}`,
			want:   "5678901234",
			wantOK: true,
		},
		{
			name:   "direct string id",
			body:   `{"id": "5678901234"}`,
			want:   "5678901234",
			wantOK: true,
		},
		{
			name:   "nested order_id",
			body:   `{"order_id": 5678901234, "kind": "refund"}`,
			want:   "5678901234",
			wantOK: true,
		},
		{
			name:   "graphql gid",
			body:   `{"admin_graphql_api_id": "gid://shopify/Order/5678901234"}`,
			want:   "5678901234",
			wantOK: true,
		},
		{
			name:   "direct id wins over gid",
			body:   `{"id": 111, "admin_graphql_api_id": "gid://shopify/Order/222"}`,
			want:   "111",
			wantOK: true,
		},
		{
			name:   "foreign gid ignored",
			body:   `{"admin_graphql_api_id": "gid://shopify/Product/5678901234"}`,
			wantOK: false,
		},
		{
			name:   "no identifier",
			body:   `{"note": "hello"}`,
			wantOK: false,
		},
		{
			name:   "not json",
			body:   `not json at all`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractOrderID([]byte(tt.body))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
