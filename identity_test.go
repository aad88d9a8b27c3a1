package pagecursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type tTagged struct {
	Key      string `json:"uuid"`
	Title    string
	internal int
}

type tBase struct {
	UUID string `json:"uuid"`
}

type tEmbedded struct {
	tBase
	Name string `json:"name"`
}

type tModel struct {
	gorm.Model
	Name string `json:"name"`
}

func Test_identityOf(t *testing.T) {
	getters := Getters[tTagged]{
		"id": func(v tTagged) any { return v.Key + "!" },
	}
	rec := tTagged{Key: "k1", Title: "t", internal: 3}

	tests := []struct {
		name      string
		field     string
		getters   Getters[tTagged]
		want      any
		wantFound bool
	}{
		{"getter wins", "id", getters, "k1!", true},
		{"json tag", "uuid", nil, "k1", true},
		{"field name, any case", "title", nil, "t", true},
		{"unexported", "internal", nil, nil, false},
		{"missing", "id", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := identityOf(rec, tt.field, tt.getters)
			require.Equal(t, tt.wantFound, found)
			require.Equal(t, tt.want, got)
		})
	}

	t.Run("embedded struct", func(t *testing.T) {
		got, found := identityOf(tEmbedded{tBase: tBase{UUID: "u1"}, Name: "n"}, "uuid", nil)
		require.True(t, found)
		require.Equal(t, "u1", got)

		got, found = identityOf(&tModel{Model: gorm.Model{ID: 9}, Name: "n"}, "id", nil)
		require.True(t, found)
		require.Equal(t, uint(9), got)
		require.True(t, sameIdentity(got, 9))
	})

	t.Run("map record", func(t *testing.T) {
		got, found := identityOf(map[string]any{"id": 7}, "id", nil)
		require.True(t, found)
		require.Equal(t, 7, got)

		_, found = identityOf(map[string]any{"ID": 7}, "id", nil)
		require.False(t, found)
	})
}

func Test_sameIdentity(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int and json number", 7, float64(7), true},
		{"int and string", 7, "7", true},
		{"int64 and uint", int64(7), uint(7), true},
		{"different", 7, 8, false},
		{"nil", nil, nil, false},
		{"nil pointer", (*int)(nil), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sameIdentity(tt.a, tt.b))
		})
	}
}

func Test_validateID(t *testing.T) {
	tests := []struct {
		name    string
		id      any
		wantErr bool
	}{
		{"int", 1, false},
		{"string", "abc", false},
		{"nil", nil, true},
		{"zero", 0, true},
		{"empty string", "", true},
		{"nil pointer", (*int)(nil), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateID(tt.id); (err != nil) != tt.wantErr {
				t.Errorf("validateID(%v) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func Test_validatePayload(t *testing.T) {
	var nilMap map[string]any
	var nilRecord *tRecord

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"struct", validatePayload(tRecord{}), false},
		{"struct pointer", validatePayload(&tRecord{}), false},
		{"map", validatePayload(map[string]any{}), false},
		{"nil map", validatePayload(nilMap), true},
		{"nil pointer", validatePayload(nilRecord), true},
		{"scalar", validatePayload(42), true},
		{"slice", validatePayload([]int{1}), true},
		{"nil interface", validatePayload[any](nil), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantErr {
				t.Errorf("validatePayload error = %v, wantErr %v", tt.err, tt.wantErr)
			}
		})
	}
}

func Test_DefaultComparator(t *testing.T) {
	cmpTagged := DefaultComparator[tTagged]()
	require.True(t, cmpTagged(tTagged{Key: "a", internal: 1}, tTagged{Key: "a", internal: 1}))
	require.False(t, cmpTagged(tTagged{Key: "a", internal: 1}, tTagged{Key: "a", internal: 2}))

	cmpMap := DefaultComparator[map[string]any]()
	require.True(t, cmpMap(map[string]any{"a": []int{1}}, map[string]any{"a": []int{1}}))
	require.False(t, cmpMap(map[string]any{"a": 1}, map[string]any{"a": 1, "b": nil}))
	require.False(t, cmpMap(nil, map[string]any{}))
}

func Test_DefaultCloner(t *testing.T) {
	cloneMap := DefaultCloner[map[string]any]()
	src := map[string]any{"a": []any{1}, "b": map[string]any{"c": "d"}, "n": nil}
	cp := cloneMap(src)
	require.Equal(t, src, cp)

	src["a"].([]any)[0] = 2
	src["b"].(map[string]any)["c"] = "e"
	require.Equal(t, []any{1}, cp["a"])
	require.Equal(t, map[string]any{"c": "d"}, cp["b"])
	require.Nil(t, cp["n"])

	require.Nil(t, cloneMap(nil))

	clonePtr := DefaultCloner[*tTagged]()
	rec := &tTagged{Key: "a", internal: 1}
	recCopy := clonePtr(rec)
	require.NotSame(t, rec, recCopy)
	require.True(t, DefaultComparator[*tTagged]()(rec, recCopy))

	rec.Key = "b"
	require.Equal(t, "a", recCopy.Key)
}
