package wasm

import (
	"github.com/pixuli/pixuli-wasm/pkg/abi"
	"github.com/tetratelabs/wazero/api"
)

// Memory provides bounds-checked reads of a module's linear memory.
//
// Slices returned by ReadBytes are views into guest memory and are only valid
// until the guest runs again. Copy them if they must outlive the call.
type Memory struct {
	mem api.Memory
}

// NewMemory creates a helper over the module's exported "memory". Modules
// without it yield a helper whose reads always fail.
func NewMemory(module api.Module) *Memory {
	return &Memory{mem: module.ExportedMemory(abi.ExportMemory)}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

// ReadBytes reads raw bytes from Wasm memory.
func (m *Memory) ReadBytes(ptr uint32, length uint32) ([]byte, bool) {
	if m.mem == nil {
		return nil, false
	}
	return m.mem.Read(ptr, length)
}

// Read is ReadBytes with a typed error.
func (m *Memory) Read(ptr uint32, length uint32) ([]byte, error) {
	buf, ok := m.ReadBytes(ptr, length)
	if !ok {
		return nil, &MemoryAccessError{
			Operation: "read",
			Address:   ptr,
			Length:    length,
			Err:       errOutOfRange,
		}
	}
	return buf, nil
}
