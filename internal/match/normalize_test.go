package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"OrderID", "orderid"},
		{"order_id", "orderid"},
		{"order-id", "orderid"},
		{"ORDERID", "orderid"},
		{"XMLParser", "xmlparser"},
		{"UserV1ToUserV2", "userv1touserv2"},
		{"user_v1_to_user_v2", "userv1touserv2"},
		{"pkg.UserV2", "pkguserv2"},
		{"order_item-ID", "orderitemid"},
		{"", ""},
		{"A", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIdent(tt.input))
		})
	}
}

func TestTokenizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"UserV1ToUserV2", []string{"user", "v1", "to", "user", "v2"}},
		{"ProductToProductV3", []string{"product", "to", "product", "v3"}},
		{"XMLParser", []string{"xml", "parser"}},
		{"getHTTPResponse", []string{"get", "http", "response"}},
		{"price_cents", []string{"price", "cents"}},
		{"__x__", []string{"x"}},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, TokenizeIdent(tt.input))
		})
	}
}
