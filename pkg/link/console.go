package link

import (
	"context"
	"io"

	"github.com/golang/glog"
)

// Console logs whatever arrives on a secondary console stream.
// It's informational only, nothing read here is decoded.
type Console struct {
	Reader      io.Reader
	Prefix      string
	ReadTimeout bool
}

// Run implements Runnable.
func (c *Console) Run(ctx context.Context) error {
	buf := make([]byte, ReadChunkSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := c.Reader.Read(buf)
		if n > 0 {
			if text := TrimLine(string(buf[:n])); text != "" {
				glog.Infof("%s%s", c.Prefix, text)
			}
		}
		if err != nil {
			if c.ReadTimeout && isReadTimeout(err) {
				continue
			}
			return err
		}
	}
}
