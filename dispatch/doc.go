// Package dispatch implements the asynchronous dispatch core behind the
// client SDK's event submission path: a bounded, retrying, flushable work
// pool that executes Task.Run with per-task backoff, shutdown-safe
// admission control, and an externally observable flush barrier.
//
// The core is deliberately narrow. It knows nothing about DSNs, HTTP
// transports, or event serialization — those are the surrounding SDK's
// concern. It consumes a Task and emits retry decisions.
//
// Basic usage:
//
//	exec := dispatch.NewExecutor(dispatch.WithCorePoolSize(2), dispatch.WithMaxRetries(3))
//	defer exec.Shutdown()
//
//	exec.Submit(myTask)
//
//	handle := exec.Flush(5 * time.Second)
//	handle.Wait()
package dispatch
