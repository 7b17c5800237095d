package orion

import (
	"fmt"
	"log/slog"
	"os"
)

// Handle logs the error and exits the process if err is not nil.
func Handle(err error, desc string, args ...any) {
	if err != nil {
		text := fmt.Sprintf(desc, args...)
		slog.Error(text, slog.Any("err", err))
		os.Exit(1)
	}
}
