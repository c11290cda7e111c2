// Package stats provides compile-time-gated counters for kernel events,
// grounded on the teacher's own stats package (Counter_t/Stats2String):
// the same pattern of a const-false Stats switch that a profiling build
// flips on, kept to the counter half only — this kernel has no cycle
// timer collaborator to ground Cycles_t/Rdtsc on, so those are dropped.
package stats

import (
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"unsafe"
)

// Stats gates every counter increment to a single branch when disabled,
// so a non-profiling build pays nothing beyond the check.
const Stats = false

// Counter_t is a statistical counter, incremented only when Stats is
// true. Named to match the teacher's convention for this exact type.
type Counter_t int64

// Inc increments the counter.
func (c *Counter_t) Inc() {
	if Stats {
		atomic.AddInt64((*int64)(unsafe.Pointer(c)), 1)
	}
}

// Counters tallies the kernel events spec.md's trap and syscall
// pipelines distinguish: one field per InterruptHandler branch plus a
// total syscall count. A single package-level instance is shared across
// every hart, the same global-counters posture original_source takes
// with its lazy_static TICK counter.
var Counters struct {
	ExternalInterrupts Counter_t
	SoftwareInterrupts Counter_t
	Syscalls           Counter_t
}

// String renders every non-zero-named Counter_t field in Counters,
// grounded on the teacher's Stats2String reflecting over a caller-
// supplied struct; here it always reflects over the package's own
// singleton rather than taking one as a parameter, since this kernel has
// exactly one counters struct to report on.
func String() string {
	if !Stats {
		return ""
	}
	v := reflect.ValueOf(Counters)
	var s strings.Builder
	for i := 0; i < v.NumField(); i++ {
		if !strings.HasSuffix(v.Field(i).Type().String(), "Counter_t") {
			continue
		}
		n := v.Field(i).Interface().(Counter_t)
		s.WriteString("\n\t#" + v.Type().Field(i).Name + ": " + strconv.FormatInt(int64(n), 10))
	}
	s.WriteByte('\n')
	return s.String()
}
