package cli

import (
	"go.uber.org/zap/zapcore"
)

// registrationLogEntry captures a registry diagnostic emitted before the
// configured logger exists.
type registrationLogEntry struct {
	entry  zapcore.Entry
	fields []zapcore.Field
}

// registrationLogCore buffers module registration diagnostics on the
// application so they can be replayed once configuration produces the real
// logger. Module registration runs at construction time, before any
// configuration or logger is available.
type registrationLogCore struct {
	application *Application
	fields      []zapcore.Field
}

var _ zapcore.Core = (*registrationLogCore)(nil)

func (core *registrationLogCore) Enabled(zapcore.Level) bool {
	return true
}

func (core *registrationLogCore) With(fields []zapcore.Field) zapcore.Core {
	combinedFields := make([]zapcore.Field, 0, len(core.fields)+len(fields))
	combinedFields = append(combinedFields, core.fields...)
	combinedFields = append(combinedFields, fields...)
	return &registrationLogCore{application: core.application, fields: combinedFields}
}

func (core *registrationLogCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return checkedEntry.AddCore(entry, core)
}

func (core *registrationLogCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	bufferedFields := make([]zapcore.Field, 0, len(core.fields)+len(fields))
	bufferedFields = append(bufferedFields, core.fields...)
	bufferedFields = append(bufferedFields, fields...)
	core.application.registrationLogEntries = append(core.application.registrationLogEntries, registrationLogEntry{
		entry:  entry,
		fields: bufferedFields,
	})
	return nil
}

func (core *registrationLogCore) Sync() error {
	return nil
}

// replayRegistrationDiagnostics forwards buffered registration diagnostics to
// the configured logger and drains the buffer.
func (application *Application) replayRegistrationDiagnostics() {
	if application.logger == nil {
		return
	}
	for _, bufferedEntry := range application.registrationLogEntries {
		application.logger.Log(bufferedEntry.entry.Level, bufferedEntry.entry.Message, bufferedEntry.fields...)
	}
	application.registrationLogEntries = nil
}
