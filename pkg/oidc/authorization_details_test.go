package oidc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationDetail_UnmarshalJSON(t *testing.T) {
	var d AuthorizationDetail
	err := json.Unmarshal([]byte(`{
		"type": "payment_initiation",
		"locations": ["https://bank.example.com/payments"],
		"actions": ["initiate"],
		"instructedAmount": {"currency": "EUR", "amount": "123.50"}
	}`), &d)
	require.NoError(t, err)
	assert.Equal(t, "payment_initiation", d.Type)
	assert.Equal(t, []string{"https://bank.example.com/payments"}, d.Locations)
	assert.Equal(t, []string{"initiate"}, d.Actions)
	require.Contains(t, d.Custom, "instructedAmount")

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"instructedAmount"`)
	assert.Contains(t, string(data), `"type":"payment_initiation"`)
}

func TestAuthorizationDetail_Similar(t *testing.T) {
	base := &AuthorizationDetail{
		Type:      "account_information",
		Locations: []string{"https://a.example.com", "https://b.example.com"},
		Actions:   []string{"read", "list"},
	}
	tests := []struct {
		name  string
		other *AuthorizationDetail
		want  bool
	}{
		{
			name:  "nil other",
			other: nil,
		},
		{
			name: "same in different order",
			other: &AuthorizationDetail{
				Type:      "account_information",
				Locations: []string{"https://b.example.com", "https://a.example.com"},
				Actions:   []string{"list", "read"},
			},
			want: true,
		},
		{
			name: "different type",
			other: &AuthorizationDetail{
				Type:      "payment_initiation",
				Locations: []string{"https://a.example.com", "https://b.example.com"},
				Actions:   []string{"read", "list"},
			},
		},
		{
			name: "missing action",
			other: &AuthorizationDetail{
				Type:      "account_information",
				Locations: []string{"https://a.example.com", "https://b.example.com"},
				Actions:   []string{"read"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Similar(tt.other))
		})
	}
	t.Run("nil receiver", func(t *testing.T) {
		var d *AuthorizationDetail
		assert.True(t, d.Similar(nil))
		assert.False(t, d.Similar(base))
	})
}

func TestAuthorizationDetails_Similar(t *testing.T) {
	a := AuthorizationDetails{
		{Type: "account_information", Actions: []string{"read"}},
		{Type: "payment_initiation", Actions: []string{"initiate"}},
	}
	reordered := AuthorizationDetails{
		{Type: "payment_initiation", Actions: []string{"initiate"}},
		{Type: "account_information", Actions: []string{"read"}},
	}
	assert.True(t, a.Similar(reordered))
	assert.False(t, a.Similar(a[:1]))
	assert.False(t, a.Similar(AuthorizationDetails{
		{Type: "account_information", Actions: []string{"read"}},
		{Type: "payment_initiation", Actions: []string{"cancel"}},
	}))
}

func TestAuthorizationDetails_UnmarshalText(t *testing.T) {
	var a AuthorizationDetails
	require.NoError(t, a.UnmarshalText(nil))
	assert.Nil(t, a)

	require.NoError(t, a.UnmarshalText([]byte(`[{"type":"account_information"}]`)))
	require.Len(t, a, 1)
	assert.Equal(t, "account_information", a[0].Type)
	assert.Equal(t, []string{"account_information"}, a.Types())

	assert.Error(t, a.UnmarshalText([]byte(`{not json`)))
}
