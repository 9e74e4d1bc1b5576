package app

import (
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinResults(t *testing.T) {
	models := []lockswap.Model{
		lockswap.Pair([]byte("a"), []byte("1")),
		lockswap.Pair([]byte("b"), []byte("2")),
	}
	joined, err := JoinResults(ResultsFromKeys(models), ResultsFromValues(models))
	require.NoError(t, err)
	assert.Equal(t, models, joined)

	_, err = JoinResults(ResultsFromKeys(models), ResultsFromValues(models[:1]))
	assert.True(t, errors.ErrInvalidState.Is(err))
}

func TestUnmarshalOneResult(t *testing.T) {
	inner, err := proto.Marshal(&ResultSet{Results: [][]byte{[]byte("x")}})
	require.NoError(t, err)
	raw, err := proto.Marshal(&ResultSet{Results: [][]byte{inner}})
	require.NoError(t, err)

	var got ResultSet
	require.NoError(t, UnmarshalOneResult(raw, &got))
	assert.Equal(t, [][]byte{[]byte("x")}, got.Results)

	empty, err := proto.Marshal(&ResultSet{})
	require.NoError(t, err)
	err = UnmarshalOneResult(empty, &got)
	assert.True(t, errors.ErrNotFound.Is(err))
}
