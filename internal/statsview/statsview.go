// Package statsview serves runtime statistics (goroutines, heap, GC) as
// web charts while the emulator runs.
package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const DefaultAddress = "localhost:12600"
const url = "/debug/statsview"

// Launch starts the viewer on its own goroutine.
func Launch(output io.Writer, address string) {
	if address == "" {
		address = DefaultAddress
	}
	viewer.SetConfiguration(viewer.WithAddr(address))
	go func() {
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(output, "stats server available at http://%s%s\n", address, url)
}
