package gen

var (
	// DefaultRuntimeName is used if RuntimeOptions.Name is empty
	DefaultRuntimeName = "lwproc"

	// DefaultPoolQueueSize is the input queue capacity of every Pool worker.
	// A task dispatched to a full queue runs on its own goroutine.
	DefaultPoolQueueSize = 12800
)

const (
	LicenseMIT string = "MIT"
)
