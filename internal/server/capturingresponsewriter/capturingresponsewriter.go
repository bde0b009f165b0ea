package capturingresponsewriter

import (
	"bytes"
	"net/http"
)

// CapturingResponseWriter records the status code and tees the body bytes
// written through it, so that the cache middleware can store exactly what
// the client received.
type CapturingResponseWriter struct {
	statusCode int
	body       bytes.Buffer

	http.ResponseWriter
}

func Wrap(writer http.ResponseWriter) *CapturingResponseWriter {
	return &CapturingResponseWriter{
		// Implicit status when the handler never calls WriteHeader()
		statusCode: http.StatusOK,

		ResponseWriter: writer,
	}
}

func (writer *CapturingResponseWriter) StatusCode() int {
	return writer.statusCode
}

func (writer *CapturingResponseWriter) Body() []byte {
	return writer.body.Bytes()
}

// Unwrap enables interoperation with *http.ResponseController.
func (writer *CapturingResponseWriter) Unwrap() http.ResponseWriter {
	return writer.ResponseWriter
}

func (writer *CapturingResponseWriter) Header() http.Header {
	return writer.ResponseWriter.Header()
}

func (writer *CapturingResponseWriter) Write(bytes []byte) (int, error) {
	writer.body.Write(bytes)

	return writer.ResponseWriter.Write(bytes)
}

func (writer *CapturingResponseWriter) WriteHeader(statusCode int) {
	writer.statusCode = statusCode

	writer.ResponseWriter.WriteHeader(statusCode)
}
