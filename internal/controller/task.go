package controller

import "context"

// Task tracks one in-flight translation. Done is closed once the outcome
// has been applied to the controller's state.
type Task struct {
	done chan struct{}
	err  error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) complete(err error) {
	t.err = err
	close(t.done)
}

// Done returns a channel closed when the translation has finished
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the translation has finished or ctx is done. It
// returns ctx.Err() in the latter case; the translation keeps running.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the translation error once Done is closed, nil before that
// or on success
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}
