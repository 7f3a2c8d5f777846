// Package binding calls the arithmetic probe across the wasm boundary.
package binding

import (
	"context"
	"fmt"

	"github.com/pixuli/pixuli-wasm/internal/wasm"
	"github.com/pixuli/pixuli-wasm/pkg/abi"
	"github.com/pixuli/pixuli-wasm/pkg/probe"
	"github.com/tetratelabs/wazero/api"
)

var i32 = []api.ValueType{api.ValueTypeI32}

// Caller is the subset of *wasm.Instance the probe needs.
type Caller interface {
	CheckSignature(name string, params, results []api.ValueType) error
	CallUint32(ctx context.Context, name string, arg uint32) (uint32, error)
}

var _ Caller = (*wasm.Instance)(nil)

// Probe is a typed handle on an instance's plus_100 export.
type Probe struct {
	caller Caller
}

// NewProbe checks that plus_100 is exported as (i32) -> i32.
func NewProbe(caller Caller) (*Probe, error) {
	if err := caller.CheckSignature(abi.ExportPlus100, i32, i32); err != nil {
		return nil, err
	}
	return &Probe{caller: caller}, nil
}

// Plus100 calls plus_100 in the guest. Overflow wraps; errors only come from
// the runtime (trap, timeout, closed instance).
func (p *Probe) Plus100(ctx context.Context, input uint32) (uint32, error) {
	out, err := p.caller.CallUint32(ctx, abi.ExportPlus100, input)
	if err != nil {
		return 0, fmt.Errorf("plus_100(%d): %w", input, err)
	}
	return out, nil
}

// Check is one input/output comparison against probe.Plus100.
type Check struct {
	Input    uint32 `json:"input"`
	Want     uint32 `json:"want"`
	Got      uint32 `json:"got"`
	Wrapped  bool   `json:"wrapped"`
	Passed   bool   `json:"passed"`
	Repeated bool   `json:"repeated,omitempty"`
}

// Report is the outcome of Verify.
type Report struct {
	Checks []Check `json:"checks"`
	Passed bool    `json:"passed"`
}

// Failed returns the checks that did not match.
func (r *Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// VerifyInputs are the inputs Verify sends through the boundary:
// the zero value, a small value, the last non-wrapping value, the first
// wrapping value and the maximum.
var VerifyInputs = []uint32{0, 50, 4294967195, 4294967196, 4294967295}

// Verify runs VerifyInputs through the guest, then repeats them to check
// determinism. A mismatch is reported as a failed Check, not an error.
func (p *Probe) Verify(ctx context.Context) (*Report, error) {
	report := &Report{Passed: true}

	for _, repeated := range []bool{false, true} {
		for _, in := range VerifyInputs {
			got, err := p.Plus100(ctx, in)
			if err != nil {
				return nil, err
			}
			c := Check{
				Input:    in,
				Want:     probe.Plus100(in),
				Got:      got,
				Wrapped:  probe.Overflows(in),
				Repeated: repeated,
			}
			c.Passed = c.Got == c.Want
			report.Passed = report.Passed && c.Passed
			report.Checks = append(report.Checks, c)
		}
	}

	return report, nil
}
