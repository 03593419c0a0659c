package custody

import (
	"context"
	"time"
)

// SetSleep 替换轮询的等待函数
func SetSleep(c *Client, fn func(ctx context.Context, d time.Duration) error) {
	c.sleep = fn
}
