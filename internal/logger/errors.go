package logger

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")
)

var writeErrors = promauto.NewCounter(prometheus.CounterOpts{ //nolint:gochecknoglobals
	Name: "log_write_errors_total",
	Help: "Number of log events that could not be written.",
})

// errorOutput receives the reports of failed log writes.
var errorOutput io.Writer = os.Stderr //nolint:gochecknoglobals

// WriteErrorHandler is installed as zerolog.ErrorHandler by Init.
func WriteErrorHandler(err error) {
	writeErrors.Inc()

	_, _ = fmt.Fprintf(errorOutput, "zerolog: could not write event: %v\n", err)
}
