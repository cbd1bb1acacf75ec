package alerts

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type doneToken struct {
	mqtt.Token
	err error
}

func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Error() error                   { return t.err }

type fakeClient struct {
	mqtt.Client
	topic   string
	qos     byte
	payload []byte
	err     error
}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.topic = topic
	c.qos = qos
	c.payload = payload.([]byte)
	return &doneToken{err: c.err}
}

func TestPublish(t *testing.T) {
	client := &fakeClient{}
	e := NewMQTTEmitter(client, "vds/alerts", zap.NewNop())

	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, e.Publish(Alert{
		Username:       "user1",
		Filename:       "clip.mp4",
		ViolenceCount:  3,
		BestConfidence: 0.8,
		BestTimestamp:  "00:12",
		At:             at,
	}))

	assert.Equal(t, "vds/alerts", client.topic)
	assert.Equal(t, byte(1), client.qos)

	var got map[string]any
	require.NoError(t, json.Unmarshal(client.payload, &got))
	assert.Equal(t, "clip.mp4", got["filename"])
	assert.Equal(t, float64(3), got["violence_count"])
	assert.NotContains(t, got, "best_frame")
}

func TestPublishError(t *testing.T) {
	e := NewMQTTEmitter(&fakeClient{err: errors.New("not authorized")}, "vds/alerts", zap.NewNop())
	assert.ErrorContains(t, e.Publish(Alert{}), "not authorized")
}
