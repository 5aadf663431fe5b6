package commands

import "time"

type CondArgs struct {
	*RootArgs
	workers      *int
	workDuration *time.Duration
	shutdown     *string
	tui          *bool
}

func NewCondArgs(rootArgs *RootArgs) *CondArgs {
	return &CondArgs{
		RootArgs:     rootArgs,
		workers:      new(int),
		workDuration: new(time.Duration),
		shutdown:     new(string),
		tui:          new(bool),
	}
}

func (a *CondArgs) GetWorkers() int {
	return *a.workers
}

func (a *CondArgs) GetWorkDuration() time.Duration {
	return *a.workDuration
}

func (a *CondArgs) GetShutdown() string {
	return *a.shutdown
}

func (a *CondArgs) GetTUI() bool {
	return *a.tui
}
