package mykafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FallsBackToNop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		brokers []string
		topic   string
		nop     bool
	}{
		{name: "no brokers", brokers: nil, topic: "checkout_events", nop: true},
		{name: "no topic", brokers: []string{"localhost:9092"}, topic: "", nop: true},
		{name: "configured", brokers: []string{"localhost:9092"}, topic: "checkout_events", nop: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := New(tt.brokers, tt.topic)
			defer p.Close()

			_, isNop := p.(Nop)
			assert.Equal(t, tt.nop, isNop)
		})
	}
}

func TestNop_PublishEvent(t *testing.T) {
	t.Parallel()

	require.NoError(t, Nop{}.PublishEvent(context.Background(), "1", map[string]int{"orderId": 1}))
}

func TestProducer_RejectsUnencodableEvent(t *testing.T) {
	t.Parallel()

	p := NewProducer([]string{"localhost:9092"}, "checkout_events")
	defer p.Close()

	err := p.PublishEvent(context.Background(), "1", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json.Marshal")
}
