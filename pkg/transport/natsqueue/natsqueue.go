// Package natsqueue implements the script-job work queue the queen uses to
// hand chunks of a tick's scripts to drones, and the reply channel drones
// use to return results. Grounded on original_source's
// executor/mp_executor/queen.rs enqueue_job/JOB_RESULTS_LIST handling,
// reworked against github.com/nats-io/nats.go as the message-queue
// transport in place of the original's lapin/AMQP client.
package natsqueue

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// Subjects used by the job queue; chunk jobs are published once per chunk
// (and again each time the queen re-enqueues an unanswered chunk) and
// consumed by whichever drone's subscription wins the queue group,
// giving at-most-one-drone-per-job delivery the way the original's Redis
// LPUSH/RPOP job list did.
const (
	JobSubject    = "sim.jobs"
	ResultSubject = "sim.job_results"
	queueGroup    = "sim-drones"
)

// Queue wraps a NATS connection with the publish/subscribe shape the
// queen/drone protocol needs.
type Queue struct {
	nc *nats.Conn
}

// Connect dials url (SPEC_FULL.md's SIM_NATS_URL).
func Connect(url string) (*Queue, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("natsqueue: connect: %w", err)
	}
	return &Queue{nc: nc}, nil
}

// Close drains and closes the underlying connection.
func (q *Queue) Close() { q.nc.Drain() }

// EnqueueJob publishes one script-batch job's payload for a drone to pick
// up. The queen calls this once per chunk after chunk 0 has been reserved
// for local execution (see pkg/distributed).
func (q *Queue) EnqueueJob(payload []byte) error {
	return q.nc.Publish(JobSubject, payload)
}

// SubscribeJobs registers handler on the shared queue group so each
// published job is delivered to exactly one subscribed drone.
func (q *Queue) SubscribeJobs(handler func([]byte)) (*nats.Subscription, error) {
	return q.nc.QueueSubscribe(JobSubject, queueGroup, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// PublishResult sends a completed job's result back to the queen.
func (q *Queue) PublishResult(payload []byte) error {
	return q.nc.Publish(ResultSubject, payload)
}

// SubscribeResults registers handler to receive every published result; the
// queen uses this to drain JOB_RESULTS_LIST-equivalent replies against its
// per-chunk pending map (see pkg/distributed).
func (q *Queue) SubscribeResults(handler func([]byte)) (*nats.Subscription, error) {
	return q.nc.Subscribe(ResultSubject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// Flush blocks until every pending publish on the connection has been
// acknowledged by the server, or ctx is done.
func (q *Queue) Flush(ctx context.Context) error {
	return q.nc.FlushWithContext(ctx)
}
