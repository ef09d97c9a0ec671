package tradelog

// heldTx is a transaction rejected by the open trade, waiting for a retry.
type heldTx struct {
	tx     Transaction
	holds  int   // number of retry passes seen
	reason error // last rejection
}

// heldQueue is the FIFO of held transactions of one partition.
type heldQueue struct {
	items []heldTx
}

func (q *heldQueue) push(tx Transaction, reason error) {
	q.items = append(q.items, heldTx{tx: tx, reason: reason})
}

func (q *heldQueue) len() int { return len(q.items) }

// sweep makes exactly one pass over the queue in FIFO order. Each entry has
// its hold count incremented and is retried with try; accepted entries are
// removed and handed to resolved, the others stay in place with their new
// rejection reason.
//
// The queue is rebuilt rather than edited in place, so try may not observe
// a partially updated queue.
func (q *heldQueue) sweep(try func(Transaction) error, resolved func(heldTx)) {
	if len(q.items) == 0 {
		return
	}
	kept := make([]heldTx, 0, len(q.items))
	for _, h := range q.items {
		h.holds++
		if err := try(h.tx); err != nil {
			h.reason = err
			kept = append(kept, h)
			continue
		}
		resolved(h)
	}
	q.items = kept
}
