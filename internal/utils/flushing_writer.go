package utils

import "io"

// Flusher describes writers that buffer output until flushed.
type Flusher interface {
	Flush() error
}

type flushingWriter struct {
	destination io.Writer
}

// NewFlushingWriter wraps the destination so every write is flushed immediately when supported.
func NewFlushingWriter(destination io.Writer) io.Writer {
	return flushingWriter{destination: destination}
}

// Write forwards the payload and flushes flush-capable destinations.
func (writer flushingWriter) Write(payload []byte) (int, error) {
	writtenBytes, writeError := writer.destination.Write(payload)
	if writeError != nil {
		return writtenBytes, writeError
	}

	if flusher, flushable := writer.destination.(Flusher); flushable {
		if flushError := flusher.Flush(); flushError != nil {
			return writtenBytes, flushError
		}
	}

	return writtenBytes, nil
}
