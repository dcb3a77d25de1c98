package utils_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wasmforge/forgectl/internal/utils"
)

type recordingFlushWriter struct {
	buffer     bytes.Buffer
	flushError error
	flushCount int
}

func (writer *recordingFlushWriter) Write(data []byte) (int, error) {
	return writer.buffer.Write(data)
}

func (writer *recordingFlushWriter) Flush() error {
	writer.flushCount++
	return writer.flushError
}

func TestNewFlushingWriterFlushesAfterWrite(testInstance *testing.T) {
	flushWriter := &recordingFlushWriter{}
	wrappedWriter := utils.NewFlushingWriter(flushWriter)

	writtenBytes, writeError := wrappedWriter.Write([]byte("data"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 4, writtenBytes)
	require.Equal(testInstance, "data", flushWriter.buffer.String())
	require.Equal(testInstance, 1, flushWriter.flushCount)
}

func TestNewFlushingWriterPropagatesFlushError(testInstance *testing.T) {
	expectedError := errors.New("flush failed")
	flushWriter := &recordingFlushWriter{flushError: expectedError}
	wrappedWriter := utils.NewFlushingWriter(flushWriter)

	_, writeError := wrappedWriter.Write([]byte("data"))
	require.ErrorIs(testInstance, writeError, expectedError)
}

func TestNewFlushingWriterPassesThroughPlainWriters(testInstance *testing.T) {
	plainBuffer := &bytes.Buffer{}
	wrappedWriter := utils.NewFlushingWriter(plainBuffer)

	_, writeError := wrappedWriter.Write([]byte("plain"))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, "plain", plainBuffer.String())
}
