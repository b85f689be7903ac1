package apiconnect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/pkg/api"
)

func TestJSONCodec(t *testing.T) {
	codec := jsonCodec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&api.SplitInput{UserID: 3, Percentage: "33.33"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":3,"percentage":"33.33"}`, string(data))

	var in api.AddExpenseRequest
	require.NoError(t, codec.Unmarshal([]byte(`{"groupId":1,"paidById":2,"amount":"10.00","splitType":"EQUAL","splits":[{"userId":2}]}`), &in))
	assert.Equal(t, int64(1), in.GroupID)
	assert.Equal(t, "10.00", in.Amount)
	require.Len(t, in.Splits, 1)
	assert.Equal(t, int64(2), in.Splits[0].UserID)

	var empty api.ListGroupsRequest
	assert.NoError(t, codec.Unmarshal(nil, &empty))
	assert.Error(t, codec.Unmarshal([]byte(`{"groupId":"x"}`), &in))
}
