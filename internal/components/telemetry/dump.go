package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"sfvotes/internal/components/assert"

	"github.com/go-resty/resty/v2"
)

// FilesystemOutput writes files into a directory that is emptied when it is created.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	assert.NotEmptyStr(dir, "dump directory")
	err := os.RemoveAll(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(name string, contents []byte) {
	err := os.WriteFile(filepath.Join(o.directory, name), contents, 0600)
	if err != nil {
		slog.Warn("failed to write dump file", "name", name, "err", err)
	}
}

// DumpResponses writes every response body the client receives to the output, files are
// numbered in the order the responses arrived.
func DumpResponses(client *resty.Client, output FilesystemOutput) {
	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		n := atomic.AddUint64(&counter, 1)
		name := fmt.Sprintf("%04d-%s.html", n, res.Request.Method)
		header := fmt.Sprintf("<!-- %s %s: %s -->\n", res.Request.Method, res.Request.URL, res.Status())
		output.Write(name, append([]byte(header), res.Body()...))
		return nil
	})
}
