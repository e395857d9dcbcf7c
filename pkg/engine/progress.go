package engine

// Progress receives a notification after each chunk completes, whether it
// was served from cache or fetched.
type Progress interface {
	Notify(completed, total int)
}

// ProgressFunc adapts a plain function to the Progress interface.
type ProgressFunc func(completed, total int)

// Notify implements Progress.
func (f ProgressFunc) Notify(completed, total int) {
	f(completed, total)
}
