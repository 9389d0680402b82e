package download

import (
	"fmt"
	"io"

	"github.com/hpcloud/tail"
)

// WatchLog follows the transfer log and echoes appended lines to w until the
// returned stop function is called. Used in debug mode to surface curl's
// progress output on the console.
func WatchLog(path string, w io.Writer) (stop func(), err error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow: true,
		ReOpen: true,
		Logger: tail.DiscardingLogger,
	})
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for line := range t.Lines {
			if line.Err != nil {
				continue
			}
			fmt.Fprintln(w, line.Text)
		}
	}()

	return func() {
		t.Stop()
		t.Cleanup()
		<-done
	}, nil
}
