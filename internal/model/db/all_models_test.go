package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListValue(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = StringList{"/img/a.png", "/img/b.png"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["/img/a.png","/img/b.png"]`, v)
}

func TestStringListScan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    StringList
		wantErr bool
	}{
		{"null", nil, nil, false},
		{"json bytes", []byte(`["/img/a.png"]`), StringList{"/img/a.png"}, false},
		{"json string", `["a","b"]`, StringList{"a", "b"}, false},
		{"legacy bare path", "/img/old.png", StringList{"/img/old.png"}, false},
		{"empty", "  ", nil, false},
		{"null literal", "null", nil, false},
		{"broken json", ` ["a" `, StringList{`["a"`}, false},
		{"unsupported", 12, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := StringList{"stale"}
			err := list.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, list)
		})
	}
}

func TestParseStringListRejectsBrokenJSON(t *testing.T) {
	_, err := ParseStringList(`["a"`)
	assert.Error(t, err)

	list, err := ParseStringList("/img/old.png")
	require.NoError(t, err)
	assert.Equal(t, StringList{"/img/old.png"}, list)
}

func TestStringListFirst(t *testing.T) {
	assert.Equal(t, "", StringList(nil).First())
	assert.Equal(t, "a", StringList{"a", "b"}.First())
}

func TestStaffTableName(t *testing.T) {
	assert.Equal(t, "staff", Staff{}.TableName())
	assert.Len(t, AllModels(), 8)
}
