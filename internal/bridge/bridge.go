// Package bridge 在独立 goroutine 上执行阻塞操作，通过一次性 channel 取回结果
package bridge

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	// ErrTimeout 超时前没有拿到结果，工作 goroutine 不会被取消
	ErrTimeout = errors.New("bridge: timed out waiting for blocking operation")
	// ErrChannelClosed channel 关闭但没有结果，且工作 goroutine 并未 panic
	ErrChannelClosed = errors.New("bridge: result channel closed without a value")
	// ErrSingleWorker 调度器只有一个工作线程，不能在调用方 goroutine 上阻塞
	ErrSingleWorker = errors.New("bridge: refusing to block the only scheduler worker")
)

// PanicError 工作 goroutine 发生 panic
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("bridge: blocking operation panicked: %v", e.Value)
}

type result[T any] struct {
	value T
	err   error
}

// handle 工作 goroutine 的句柄，done 关闭后 panicked 可读
type handle struct {
	done     chan struct{}
	panicked *PanicError
}

// join 等待工作 goroutine 退出并返回其 panic 信息
func (h *handle) join() *PanicError {
	<-h.done
	return h.panicked
}

// SingleWorker 当前进程是否只有一个调度工作线程
func SingleWorker() bool {
	return runtime.GOMAXPROCS(0) == 1
}

// Run 在独立 goroutine 上执行 fn，并在 timeout 内等待结果
//
// timeout 独立于 fn 内部自己的截止时间。超时或 ctx 取消后立即返回，
// 工作 goroutine 继续运行直到自行结束。
func Run[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	var zero T

	ch := make(chan result[T], 1)
	h := &handle{done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				h.panicked = &PanicError{Value: r, Stack: debug.Stack()}
				log.Error().Interface("panic", r).Msg("Blocking operation panicked")
			}
		}()

		v, err := fn()
		ch <- result[T]{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r, ok := <-ch:
		if !ok {
			if p := h.join(); p != nil {
				return zero, p
			}
			return zero, ErrChannelClosed
		}
		return r.value, r.err
	case <-timer.C:
		log.Warn().Dur("timeout", timeout).Msg("Blocking operation did not finish in time")
		return zero, errors.Wrapf(ErrTimeout, "after %s", timeout)
	case <-ctx.Done():
		return zero, errors.Wrap(ctx.Err(), "bridge: waiting for blocking operation")
	}
}

// RunInline 在调用方 goroutine 上执行 fn
// 只有一个调度工作线程时拒绝执行并返回 ErrSingleWorker，调用方应改用 Run
func RunInline[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T

	if SingleWorker() {
		return zero, ErrSingleWorker
	}

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	return fn()
}
