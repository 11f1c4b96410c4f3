package domain

// Stage names the pipeline step a run was in when it finished or failed.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageFetching   Stage = "fetching"
	StageParsing    Stage = "parsing"
	StageFiltering  Stage = "filtering"
	StageDiffing    Stage = "diffing"
	StageNotifying  Stage = "notifying"
	StageArchiving  Stage = "archiving"
	StagePersisting Stage = "persisting"
	StageDone       Stage = "done"
)

// ErrorKind classifies a run failure for exit-code mapping.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindConfig
	KindNetwork
	KindParse
	KindNotify
	KindIO
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfig:
		return "config"
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindNotify:
		return "notify"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// ExitCode maps an error kind to a distinct process exit code so a
// scheduler wrapper can tell failure modes apart.
func (k ErrorKind) ExitCode() int {
	switch k {
	case KindNone:
		return 0
	case KindConfig:
		return 2
	case KindNetwork:
		return 3
	case KindParse:
		return 4
	case KindNotify:
		return 5
	case KindIO:
		return 6
	default:
		return 1
	}
}

// RunResult is the outcome of one pipeline run.
type RunResult struct {
	NewJobs  []JobRecord
	Warnings []string
	Stage    Stage
	Kind     ErrorKind
	Err      error
}

func (r RunResult) Failed() bool { return r.Err != nil }
