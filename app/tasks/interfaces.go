package tasks

// TaskSchedulerInterface defines the interface for background task scheduling.
// Used by the main application and the API server to manage the refresh
// pipeline: periodic enqueueing, worker pool control and on-demand refreshes.
// Example usage:
//
//	scheduler := NewScheduler(feedConfig, gateway, analyzer, holder)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewRefreshPipelineTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
