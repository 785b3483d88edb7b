package strategy

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeInsertLookup(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.Insert([]string{"cps_state", "position", "x"}, 3))
	require.NoError(t, tree.Insert([]string{"cps_state", "vel"}, 7))
	require.NoError(t, tree.Insert([]string{IndexedKey("obs_state", 2), "acc"}, -1))

	n, ok := tree.Lookup("cps_state")
	require.True(t, ok)
	assert.False(t, n.IsLeaf())
	assert.Equal(t, []string{"position", "vel"}, n.Keys())

	assert.Equal(t, -1, tree.Int(0, "obs_state[2]", "acc"))
	assert.Equal(t, 42, tree.Int(42, "cps_state", "head"))
	assert.Equal(t, 42, tree.Int(42, "cps_state"), "mapping is not an integer")

	err := tree.Insert([]string{"cps_state", "vel", "x"}, 1)
	assert.Error(t, err)
	assert.Error(t, tree.Insert(nil, 1))
}

func TestTreeEqualIgnoresOrder(t *testing.T) {
	a := NewTree()
	b := NewTree()
	require.NoError(t, a.Insert([]string{"x"}, 1))
	require.NoError(t, a.Insert([]string{"y", "z"}, 2))
	require.NoError(t, b.Insert([]string{"y", "z"}, 2))
	require.NoError(t, b.Insert([]string{"x"}, 1))

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.Equal(t, "{x:1,y:{z:2}}", a.Canonical())

	require.NoError(t, b.Insert([]string{"y", "z"}, 3))
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Canonical(), b.Canonical())
}

func TestIntPrefix(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr error
	}{
		{"42", 42, nil},
		{"-7abc", -7, nil},
		{"0x10", 0, nil},
		{strconv.Itoa(math.MaxInt), math.MaxInt, nil},
		{strconv.Itoa(math.MinInt), math.MinInt, nil},
		{"18446744073709551621", 0, strconv.ErrRange},
		{"-99999999999999999999", 0, strconv.ErrRange},
		{"-", 0, ErrNoInteger},
		{"abc", 0, ErrNoInteger},
		{"", 0, ErrNoInteger},
	}

	for _, tt := range tests {
		got, err := IntPrefix(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("IntPrefix(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("IntPrefix(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
