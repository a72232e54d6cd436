package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip_Memory(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var got []string
	ok, err := GetJSON(ctx, s, "absent", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, s, "ids", []string{"a-mock-1", "a-mock-2"}))
	ok, err = GetJSON(ctx, s, "ids", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"a-mock-1", "a-mock-2"}, got)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'x'

	out, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
}

func TestGetJSON_CorruptValueIsFault(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "k", []byte("{not json")))

	var v map[string]int
	_, err := GetJSON(ctx, s, "k", &v)

	assert.ErrorIs(t, err, ErrUnavailable)
	var fe *FaultError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "decode", fe.Op)
}
