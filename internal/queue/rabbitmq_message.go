package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is one delivered diary job plus the channel state needed to
// settle it. The worker must Ack after persisting the diary content or
// Nack(false) to dead-letter the job; leaving it unsettled holds a
// prefetch slot.
type Message struct {
	Job         *Job
	DeliveryTag uint64
	Channel     *amqp.Channel
}

// Ack marks the job as processed.
func (m *Message) Ack() error {
	return m.Channel.Ack(m.DeliveryTag, false)
}

// Nack rejects the job; with requeue false it moves to the DLQ.
func (m *Message) Nack(requeue bool) error {
	return m.Channel.Nack(m.DeliveryTag, false, requeue)
}

// GetJob returns the wrapped job.
func (m *Message) GetJob() *Job {
	return m.Job
}
