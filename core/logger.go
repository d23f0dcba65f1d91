package core

// Logger is any leveled logging service. Extra args carry error values and
// context objects for the backing service to report alongside the message.
type Logger interface {
	// Enable turns remote reporting on or off; local output is unaffected.
	Enable(enabled bool)

	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
