package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendToUserReachesEveryConnection(t *testing.T) {
	m := NewManager()
	a := NewClient("u1", nil)
	b := NewClient("u1", nil)
	other := NewClient("u2", nil)
	m.Register(a)
	m.Register(b)
	m.Register(other)

	assert.Equal(t, 2, m.SendToUser("u1", []byte("hello")))
	assert.Equal(t, "hello", string(<-a.Send))
	assert.Equal(t, "hello", string(<-b.Send))
	assert.Len(t, other.Send, 0)

	m.Unregister(a)
	assert.Equal(t, 1, m.ConnectionCount("u1"))
	_, open := <-a.Send
	assert.False(t, open)
}

func TestSlowClientIsDropped(t *testing.T) {
	m := NewManager()
	c := NewClient("u1", nil)
	m.Register(c)

	for i := 0; i < sendBuffer; i++ {
		m.SendToUser("u1", []byte("x"))
	}
	assert.Equal(t, 0, m.SendToUser("u1", []byte("overflow")))
	assert.Equal(t, 0, m.ConnectionCount("u1"))

	m.Unregister(c)
}

func TestHandleMessagePing(t *testing.T) {
	reply := HandleMessage([]byte(`{"type":"ping"}`))
	require.NotNil(t, reply)

	var msg WSMessage
	require.NoError(t, json.Unmarshal(reply, &msg))
	assert.Equal(t, MessageTypePong, msg.Type)

	assert.Nil(t, HandleMessage([]byte(`{"type":"subscribe"}`)))
	assert.Nil(t, HandleMessage([]byte(`not json`)))
}
