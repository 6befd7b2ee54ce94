package bootstrap

// Stage names one step of the run, in execution order.
type Stage string

const (
	StageDetect       Stage = "detect"
	StageCoreTools    Stage = "core tools"
	StageShell        Stage = "shell"
	StageEditor       Stage = "editor"
	StageTerminal     Stage = "terminal"
	StageRuntime      Stage = "runtime"
	StageHelper       Stage = "package manager helper"
	StageConfigs      Stage = "configs"
	StageIntegration  Stage = "shell integration"
	StageDefaultShell Stage = "default shell"
)

// Kind classifies an Effect.
type Kind string

const (
	Detected       Kind = "detected"
	Installed      Kind = "installed"
	AlreadyPresent Kind = "already present"
	SkippedAsset   Kind = "skipped: no matching asset"
	Cloned         Kind = "cloned"
	Updated        Kind = "updated"
	Unchanged      Kind = "unchanged"
	Linked         Kind = "linked"
	AlreadyLinked  Kind = "already linked"
	BackedUp       Kind = "backed up and linked"
	Relinked       Kind = "replaced dangling link"
	LinesAdded     Kind = "lines added"
	ShellChanged   Kind = "shell changed"
	ShellCurrent   Kind = "shell already default"
)

// Effect is one observable outcome of a run.
type Effect struct {
	Stage   Stage
	Subject string
	Kind    Kind
}

// changes reports whether kind modified the machine.
func (k Kind) changes() bool {
	switch k {
	case Installed, Cloned, Updated, Linked, BackedUp, Relinked, LinesAdded, ShellChanged:
		return true
	}
	return false
}
