package oidc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestAudience_UnmarshalJSON(t *testing.T) {
	type dst struct {
		Audience Audience `json:"aud"`
	}
	tests := []struct {
		name    string
		json    string
		want    Audience
		wantErr bool
	}{
		{
			name:    "invalid json",
			json:    `{"aud": {"a": }}`,
			wantErr: true,
		},
		{
			name: "single audience",
			json: `{"aud": "single"}`,
			want: Audience{"single"},
		},
		{
			name: "multiple audiences",
			json: `{"aud": ["multiple", "audiences"]}`,
			want: Audience{"multiple", "audiences"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d dst
			err := json.Unmarshal([]byte(tt.json), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Audience)
		})
	}
}

func TestSpaceDelimitedArray_JSON(t *testing.T) {
	scopes := SpaceDelimitedArray{"openid", "profile", "email"}
	data, err := json.Marshal(scopes)
	require.NoError(t, err)
	assert.Equal(t, `"openid profile email"`, string(data))

	var got SpaceDelimitedArray
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, scopes, got)

	require.NoError(t, json.Unmarshal([]byte(`""`), &got))
	assert.Nil(t, got)
}

func TestSpaceDelimitedArray_Scan(t *testing.T) {
	var s SpaceDelimitedArray

	require.NoError(t, s.Scan(nil))
	assert.Nil(t, []string(s))

	require.NoError(t, s.Scan("openid profile"))
	assert.Equal(t, SpaceDelimitedArray{"openid", "profile"}, s)

	require.NoError(t, s.Scan([]byte("openid")))
	assert.Equal(t, SpaceDelimitedArray{"openid"}, s)

	assert.Error(t, s.Scan(42))
}

func TestLocales_UnmarshalText(t *testing.T) {
	var l Locales
	require.NoError(t, l.UnmarshalText([]byte("de-CH en nonsense~~~")))
	assert.Equal(t, Locales{language.MustParse("de-CH"), language.English}, l)
}

func TestResponseMode_Unsupported(t *testing.T) {
	assert.False(t, ResponseMode("").Unsupported())
	assert.False(t, ResponseModeQuery.Unsupported())
	assert.False(t, ResponseModeFragment.Unsupported())
	assert.False(t, ResponseModeFormPost.Unsupported())
	assert.True(t, ResponseMode("jwt").Unsupported())
}

func TestTime_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    Time
		wantErr bool
	}{
		{
			name: "unix timestamp",
			json: `1700000000`,
			want: Time(1700000000),
		},
		{
			name: "RFC3339 string",
			json: `"2023-11-14T22:13:20Z"`,
			want: Time(1700000000),
		},
		{
			name: "null",
			json: `null`,
			want: 0,
		},
		{
			name:    "unparsable string",
			json:    `"yesterday"`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			json:    `["array"]`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Time
			err := json.Unmarshal([]byte(tt.json), &ts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ts)
		})
	}
}

func TestTime_AsTime(t *testing.T) {
	assert.True(t, Time(0).AsTime().IsZero())
	assert.Equal(t, time.Unix(1700000000, 0), Time(1700000000).AsTime())
	assert.Equal(t, Time(0), FromTime(time.Time{}))
}
