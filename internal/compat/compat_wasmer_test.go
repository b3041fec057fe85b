//go:build wasmer
// +build wasmer

package compat

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmerio/wasmer-go/wasmer"
)

// TestWasmerEngine_LoadsMinimalModule is the Wasmer side of the
// cross-runtime conformance check: a module the Wasmer verdict rule calls
// compatible must actually compile under a real Wasmer engine.
func TestWasmerEngine_LoadsMinimalModule(t *testing.T) {
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	header := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	_, err := wasmer.NewModule(store, header)
	require.NoError(t, err)
}

// TestWasmerEngine_RejectsSharedMemoryWithoutThreads exercises the
// wasmerVerdict "threads" requirement: a module declaring a shared memory
// should fail to compile against a default Wasmer engine, matching the
// verdict's RequiredFeatures assertion that threads must be opted into.
func TestWasmerEngine_RejectsSharedMemoryWithoutThreads(t *testing.T) {
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	sharedMemoryModule := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x05, 0x04, 0x01, 0x03, 0x01, 0x01, // memory section: 1 memory, shared, min=1 max=1
	}
	_, err := wasmer.NewModule(store, sharedMemoryModule)
	require.Error(t, err)
}
