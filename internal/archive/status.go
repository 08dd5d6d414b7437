package archive

// StatusSink receives human-readable status messages and download progress.
// It is a capability the fetcher consumes, not a protocol it defines: any
// logger or progress bar works. Implementations must not block.
type StatusSink interface {
	// Msg reports a status line.
	Msg(msg string)

	// Progress reports bytes written so far against the declared total.
	// total is UnknownTotal when the server declared no content length.
	Progress(written, total int64)
}

// UnknownTotal marks a download whose total size is undeclared.
const UnknownTotal int64 = -1

// nopSink discards all status output. Default when no sink is provided.
type nopSink struct{}

func (nopSink) Msg(string)            {}
func (nopSink) Progress(int64, int64) {}
