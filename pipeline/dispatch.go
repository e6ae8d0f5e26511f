package pipeline

// Dispatcher schedules background pipeline runs, fire-and-forget. There is
// no return channel; callers observe the outcome by re-reading the record.
type Dispatcher interface {
	Submit(run func())
}

// GoDispatcher runs every submitted unit in its own goroutine. Unbounded:
// at mindmap volumes a worker pool has not been worth it so far.
type GoDispatcher struct{}

func NewGoDispatcher() *GoDispatcher {
	return &GoDispatcher{}
}

func (d *GoDispatcher) Submit(run func()) {
	go run()
}
