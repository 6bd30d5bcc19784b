package model

// Session holds the cross-session resumption flags. They are written
// on every active-project swap and read once at startup to decide
// whether to reload a persisted project or restore a fresh default.
type Session struct {
	// LastActiveProjectID is the store id of the project that was
	// active when the process last ran; empty for an ephemeral one.
	LastActiveProjectID string

	// WasUnsaved records that the last active project was ephemeral.
	WasUnsaved bool
}
