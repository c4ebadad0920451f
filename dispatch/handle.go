package dispatch

import "sync/atomic"

// CompletionHandle is returned by Submit. Its contract is cancel, done, and
// the reason a canceled handle was canceled — per §6/§9, a handle cannot
// usefully expose a task's result because a retry produces a brand-new
// envelope and a result is never part of the core's model to begin with.
type CompletionHandle struct {
	canceled atomic.Bool
	done     atomic.Bool
	err      atomic.Pointer[error]
}

func newCompletionHandle() *CompletionHandle {
	return &CompletionHandle{}
}

// canceledHandle returns an already-canceled, already-done handle reporting
// err, used for admission-rejected and shutdown-rejected submissions (§7).
func canceledHandle(err error) *CompletionHandle {
	h := newCompletionHandle()
	h.cancelWithErr(err)
	h.markDone()
	return h
}

// Cancel marks the handle canceled, reporting ErrCanceled through Err. It
// cannot revoke a run already in progress — cancellation of completion
// handles is preemptive only in the sense that the handle stops reporting
// future state (§5).
func (h *CompletionHandle) Cancel() {
	h.cancelWithErr(ErrCanceled)
}

// cancelWithErr marks the handle canceled with a specific reason, used by
// rejection paths that know why the handle was never going to run.
func (h *CompletionHandle) cancelWithErr(err error) {
	if h.canceled.CompareAndSwap(false, true) {
		h.err.Store(&err)
	}
}

// Err reports why the handle was canceled (ErrCanceled after Cancel, or the
// rejection reason), or nil if it was not canceled.
func (h *CompletionHandle) Err() error {
	if p := h.err.Load(); p != nil {
		return *p
	}
	return nil
}

// IsCanceled reports whether the handle has been canceled, by Cancel or by
// a rejection path.
func (h *CompletionHandle) IsCanceled() bool {
	return h.canceled.Load()
}

// IsDone reports whether the envelope this handle was issued for has
// finished its single run (successfully, by failing, whether or not a
// retry was scheduled, or by being canceled/rejected). It does not reflect
// whether a *rescheduled*
// envelope — which has its own handle — has finished.
func (h *CompletionHandle) IsDone() bool {
	return h.done.Load()
}

func (h *CompletionHandle) markDone() {
	h.done.Store(true)
}
