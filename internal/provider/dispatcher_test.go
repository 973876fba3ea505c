package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name      string
	available bool
}

func (f *fakeProvider) Generate(context.Context, string, Params) ([]byte, error) {
	return []byte(f.name), nil
}
func (f *fakeProvider) Available() bool           { return f.available }
func (f *fakeProvider) Name() string              { return f.name }
func (f *fakeProvider) MaxDimensions() Dimensions { return Dimensions{Width: 1024, Height: 1024} }

func regs(gw, fp, sp, mock *fakeProvider) []Registration {
	var out []Registration
	if gw != nil {
		out = append(out, Registration{Class: ClassGateway, Provider: gw})
	}
	if fp != nil {
		out = append(out, Registration{Class: ClassFirstParty, Provider: fp})
	}
	if sp != nil {
		out = append(out, Registration{Class: ClassSecondParty, Provider: sp})
	}
	if mock != nil {
		out = append(out, Registration{Class: ClassMock, Provider: mock})
	}
	return out
}

func TestDispatcherGatewayWinsAllSlots(t *testing.T) {
	gw := &fakeProvider{name: "gateway", available: true}
	fp := &fakeProvider{name: "openai", available: true}
	sp := &fakeProvider{name: "stability", available: true}
	mock := &fakeProvider{name: "mock", available: true}

	d := NewDispatcher(regs(gw, fp, sp, mock))

	for _, id := range []int{ModelDallE3, ModelDallE2, ModelSD35, ModelSD35Fast} {
		assert.Same(t, gw, d.Resolve(id), "model %d", id)
	}
	assert.Same(t, mock, d.Resolve(ModelMock), "mock keeps the test slot even with a gateway")
	assert.Same(t, gw, d.Default())
	assert.True(t, d.HasLiveRealProvider())
}

func TestDispatcherSplitSlotsWithoutGateway(t *testing.T) {
	fp := &fakeProvider{name: "openai", available: true}
	sp := &fakeProvider{name: "stability", available: false}
	mock := &fakeProvider{name: "mock", available: true}

	d := NewDispatcher(regs(nil, fp, sp, mock))

	assert.Same(t, fp, d.Resolve(ModelDallE3))
	assert.Same(t, fp, d.Resolve(ModelDallE2))
	assert.Same(t, mock, d.Resolve(ModelSD35), "unavailable second-party falls back to mock")
	assert.Same(t, mock, d.Resolve(ModelSD35Fast))
	assert.Same(t, mock, d.Resolve(ModelMock))
	assert.True(t, d.HasLiveRealProvider())
}

func TestDispatcherUnavailableGatewayIsIgnored(t *testing.T) {
	gw := &fakeProvider{name: "gateway", available: false}
	fp := &fakeProvider{name: "openai", available: true}
	mock := &fakeProvider{name: "mock", available: true}

	d := NewDispatcher(regs(gw, fp, nil, mock))

	assert.Same(t, fp, d.Resolve(ModelDallE3))
	assert.Same(t, mock, d.Default(), "mock outranks first-party for the default slot")
}

func TestDispatcherMockOnlyFallback(t *testing.T) {
	gw := &fakeProvider{name: "gateway", available: false}
	fp := &fakeProvider{name: "openai", available: false}
	sp := &fakeProvider{name: "stability", available: false}
	mock := &fakeProvider{name: "mock", available: true}

	d := NewDispatcher(regs(gw, fp, sp, mock))

	for _, id := range []int{1, 2, 3, 4, 999, 0, -7, 123456} {
		assert.Same(t, mock, d.Resolve(id), "model %d", id)
	}
	assert.False(t, d.HasLiveRealProvider())
}

func TestDispatcherUnknownModelIDNeverFails(t *testing.T) {
	mock := &fakeProvider{name: "mock", available: true}
	d := NewDispatcher(regs(nil, nil, nil, mock))

	p := d.Resolve(123456)
	require.NotNil(t, p)
	assert.Same(t, mock, p)
}

func TestDispatcherFirstAvailableIsLiveCheck(t *testing.T) {
	fp := &fakeProvider{name: "openai", available: true}
	mock := &fakeProvider{name: "mock", available: true}

	d := NewDispatcher(regs(nil, fp, nil, mock))

	// First-party was healthy at startup but has since gone down; the
	// live scan must skip it while Resolve keeps dispatching to it.
	fp.available = false
	assert.Same(t, fp, d.Resolve(ModelDallE3), "static binding is not rerouted")
	assert.Same(t, mock, d.FirstAvailable())
	assert.False(t, d.HasLiveRealProvider())
}

func TestDispatcherDefaultWithoutMock(t *testing.T) {
	fp := &fakeProvider{name: "openai", available: false}
	d := NewDispatcher(regs(nil, fp, nil, nil))

	assert.Same(t, fp, d.Default(), "first-party is the default when no gateway or mock exists")
	assert.Same(t, fp, d.Resolve(999))
}
