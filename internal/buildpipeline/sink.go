package buildpipeline

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// WriterSink prints one status line per finished or failed module.
type WriterSink struct {
	mu sync.Mutex
	W  io.Writer
}

var (
	doneColor  = color.New(color.FgGreen, color.Bold)
	skipColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

func (s *WriterSink) OnEvent(evt Event) {
	if s == nil || s.W == nil || evt.Module == "" {
		return
	}
	var label string
	switch evt.Status {
	case StatusDone:
		label = doneColor.Sprintf("%-8s", evt.Stage)
	case StatusSkipped:
		label = skipColor.Sprintf("%-8s", "skipped")
	case StatusError:
		label = errorColor.Sprintf("%-8s", "failed")
	default:
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if evt.Err != nil {
		fmt.Fprintf(s.W, "%s %s: %v\n", label, evt.Module, evt.Err)
		return
	}
	if evt.Elapsed > 0 {
		fmt.Fprintf(s.W, "%s %s (%s)\n", label, evt.Module, evt.Elapsed.Round(time.Millisecond))
		return
	}
	fmt.Fprintf(s.W, "%s %s\n", label, evt.Module)
}
