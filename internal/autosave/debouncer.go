// Package autosave 提供可取消的延迟任务：每次写入重新计时，静默期结束后执行一次。
package autosave

import (
	"sync"
	"time"
)

// DefaultDelay 是编辑停止后触发保存的静默期。
const DefaultDelay = 1500 * time.Millisecond

// Debouncer 在最后一次 Trigger 之后 delay 执行 fn。
// 静默期内的再次 Trigger 会重新计时；Cancel/Stop 丢弃尚未触发的调用。
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

func New(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger 安排（或重新安排）一次调用。Stop 之后调用无效。
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire 只执行最新一代的计时器；已被 Stop 但回调已经开始排队的旧计时器在这里被丢弃。
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}

// Cancel 丢弃待执行的调用，之后仍可再次 Trigger。返回是否确实有待执行的调用。
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}

// Stop 取消待执行的调用并永久停用。
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

// Pending 报告是否有尚未触发的调用。
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
