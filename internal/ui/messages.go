package ui

import (
	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/fixer"
)

// FilesFoundMsg is sent when markdown files have been discovered.
type FilesFoundMsg struct {
	Err   error
	Files []string
}

// FileConvertedMsg is sent when a single file has been converted.
type FileConvertedMsg struct {
	Result batch.Result
}

// AllConvertedMsg is sent when every file has been converted.
type AllConvertedMsg struct{}

// FilesWrittenMsg is sent when normalized content has been written back.
type FilesWrittenMsg struct {
	Results []fixer.FixResult
}
