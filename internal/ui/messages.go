package ui

import "bookfoundry/internal/progress"

type jobUpdateMsg struct {
	U progress.Update
}

type jobResultMsg struct {
	R progress.Result
}

type allDoneMsg struct{}
