//go:build wasmtime
// +build wasmtime

package compat

import (
	"testing"

	"github.com/bytecodealliance/wasmtime-go/v23"
	"github.com/stretchr/testify/require"
)

// requiredFeatureSetters maps every RequiredFeatures string this package's
// verdict rules can produce to the wasmtime.Config method that toggles the
// matching proposal. If wasmtime ever drops or renames one of these, the
// rule table is advertising a feature name the runtime it claims to cover
// no longer recognizes.
var requiredFeatureSetters = map[string]func(*wasmtime.Config){
	"threads":      func(c *wasmtime.Config) { c.SetWasmThreads(true) },
	"multi-memory": func(c *wasmtime.Config) { c.SetWasmMultiMemory(true) },
}

func TestWasmtimeConfig_SupportsEveryAdvertisedFeature(t *testing.T) {
	for _, v := range []Verdict{
		wasmtimeVerdict(true, true),
	} {
		for _, feature := range v.RequiredFeatures {
			setter, ok := requiredFeatureSetters[feature]
			require.Truef(t, ok, "no wasmtime.Config setter registered for advertised feature %q", feature)

			config := wasmtime.NewConfig()
			setter(config)
			engine := wasmtime.NewEngineWithConfig(config)
			require.NotNil(t, engine)
		}
	}
}

func TestWasmtimeConfig_LoadsMinimalModule(t *testing.T) {
	engine := wasmtime.NewEngine()
	store := wasmtime.NewStore(engine)
	header := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	_, err := wasmtime.NewModule(store.Engine, header)
	require.NoError(t, err)
}
