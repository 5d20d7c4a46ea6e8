package service

import "context"

// The dashboard store is a cache over remote state, and every mutation
// picks one of two named update strategies. Which one applies is part of
// each operation's contract, not an implementation detail.

// confirmThenApply performs the durable write first and folds the change
// into the local store only after the write is confirmed. Used where a
// phantom local change would be worse than a stale read, e.g. expense
// approval.
func confirmThenApply(ctx context.Context, write func(context.Context) error, apply func()) error {
	if err := write(ctx); err != nil {
		return err
	}
	apply()
	return nil
}

// optimisticWithCompensation applies the local change first for immediate
// reads, then performs the durable write, and undoes the local change when
// the write fails. Used where UI responsiveness wins, e.g. team member
// addition.
func optimisticWithCompensation(ctx context.Context, apply func(), write func(context.Context) error, compensate func()) error {
	apply()
	if err := write(ctx); err != nil {
		compensate()
		return err
	}
	return nil
}
