package kafka_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerowaste/payment-service/internal/platform/kafka"
)

func TestNewMessage(t *testing.T) {
	msg, err := kafka.NewMessage("payments_exchange", "payment.result", map[string]string{"orderId": "o1"})
	require.NoError(t, err)

	assert.Equal(t, "payments_exchange", msg.Topic)
	assert.Equal(t, []byte("payment.result"), msg.Key)

	var body map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "o1", body["orderId"])

	require.NotEmpty(t, msg.Headers)
	assert.Equal(t, kafka.RoutingKeyHeader, msg.Headers[0].Key)
	assert.Equal(t, []byte("payment.result"), msg.Headers[0].Value)
}

func TestNewMessage_Unencodable(t *testing.T) {
	_, err := kafka.NewMessage("t", "k", make(chan int))
	assert.Error(t, err)
}
