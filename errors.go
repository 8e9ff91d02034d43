package splice

import "errors"

var (
	// ErrAssetDecode reports an overlay image or vector mask that could not be
	// decoded. It is fatal to export start and surfaces before any frame.
	ErrAssetDecode = errors.New("splice: asset decode failure")
	// ErrSeek reports a source that could not seek to the requested time.
	// The export run aborts rather than substituting a frame.
	ErrSeek = errors.New("splice: seek failure")
	// ErrUnsupportedOutputFormat reports an export format the sink cannot write.
	ErrUnsupportedOutputFormat = errors.New("splice: unsupported output format")
	// ErrEngineBusy is returned by preview rendering while an export holds the sources.
	ErrEngineBusy = errors.New("splice: engine busy")
	// ErrExportRunning is returned when Start is called on a non-idle exporter.
	ErrExportRunning = errors.New("splice: export already running")
	// ErrInvalidClip reports a clip whose trim window or settings are out of range.
	ErrInvalidClip = errors.New("splice: invalid clip")
	// ErrTimelineFull is returned when adding a third clip.
	ErrTimelineFull = errors.New("splice: timeline already holds two clips")
	// ErrNotFound is returned for unknown clip indexes and overlay ids.
	ErrNotFound = errors.New("splice: not found")
)
