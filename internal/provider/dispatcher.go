package provider

import (
	"github.com/rs/zerolog/log"
)

// Class tags a registered provider with its role in model binding. The
// tag is declared at registration, so the dispatcher never inspects
// concrete types to decide what a provider is.
type Class string

const (
	ClassGateway     Class = "gateway"
	ClassFirstParty  Class = "firstparty"
	ClassSecondParty Class = "secondparty"
	ClassMock        Class = "mock"
)

// Well-known logical model IDs. 1-4 are the production slots; 999 is the
// mock/testing slot.
const (
	ModelDallE3   = 1
	ModelDallE2   = 2
	ModelSD35     = 3
	ModelSD35Fast = 4
	ModelMock     = 999
)

// Registration pairs a provider with its class for dispatcher construction.
type Registration struct {
	Class    Class
	Provider Provider
}

type binding struct {
	class Class
	prov  Provider
}

// Dispatcher maps logical model IDs to providers. The mapping is computed
// once at construction from an availability probe and is read-only
// afterwards: a provider that goes down later is still dispatched to and
// fails per request instead of being rerouted.
type Dispatcher struct {
	bindings map[int]binding
	def      Provider
	defClass Class
}

// NewDispatcher probes the registered providers and builds the static
// model binding. An available gateway wins every production slot; without
// one, first- and second-party providers get their historical slots with
// the mock as fallback. The mock always owns the test slot.
func NewDispatcher(regs []Registration) *Dispatcher {
	var gateway, firstParty, secondParty, mock Provider
	for _, r := range regs {
		if r.Provider == nil {
			continue
		}
		log.Info().
			Str("class", string(r.Class)).
			Str("provider", r.Provider.Name()).
			Bool("available", r.Provider.Available()).
			Msg("registered AI provider")
		switch r.Class {
		case ClassGateway:
			if gateway == nil {
				gateway = r.Provider
			}
		case ClassFirstParty:
			if firstParty == nil {
				firstParty = r.Provider
			}
		case ClassSecondParty:
			if secondParty == nil {
				secondParty = r.Provider
			}
		case ClassMock:
			if mock == nil {
				mock = r.Provider
			}
		}
	}

	d := &Dispatcher{bindings: make(map[int]binding)}

	gatewayUp := gateway != nil && gateway.Available()
	if gatewayUp {
		log.Info().Str("provider", gateway.Name()).Msg("gateway available, binding all production model IDs")
		for _, id := range []int{ModelDallE3, ModelDallE2, ModelSD35, ModelSD35Fast} {
			d.bindings[id] = binding{class: ClassGateway, prov: gateway}
		}
	} else {
		if firstParty != nil && firstParty.Available() {
			log.Info().Str("provider", firstParty.Name()).Msg("first-party provider available for model IDs 1-2")
			d.bindings[ModelDallE3] = binding{class: ClassFirstParty, prov: firstParty}
			d.bindings[ModelDallE2] = binding{class: ClassFirstParty, prov: firstParty}
		} else if mock != nil {
			log.Warn().Msg("first-party provider unavailable, mock bound to model IDs 1-2")
			d.bindings[ModelDallE3] = binding{class: ClassMock, prov: mock}
			d.bindings[ModelDallE2] = binding{class: ClassMock, prov: mock}
		}

		if secondParty != nil && secondParty.Available() {
			log.Info().Str("provider", secondParty.Name()).Msg("second-party provider available for model IDs 3-4")
			d.bindings[ModelSD35] = binding{class: ClassSecondParty, prov: secondParty}
			d.bindings[ModelSD35Fast] = binding{class: ClassSecondParty, prov: secondParty}
		} else if mock != nil {
			log.Warn().Msg("second-party provider unavailable, mock bound to model IDs 3-4")
			d.bindings[ModelSD35] = binding{class: ClassMock, prov: mock}
			d.bindings[ModelSD35Fast] = binding{class: ClassMock, prov: mock}
		}
	}

	if mock != nil {
		d.bindings[ModelMock] = binding{class: ClassMock, prov: mock}
	}

	switch {
	case gatewayUp:
		d.def, d.defClass = gateway, ClassGateway
	case mock != nil:
		d.def, d.defClass = mock, ClassMock
	case firstParty != nil:
		d.def, d.defClass = firstParty, ClassFirstParty
	default:
		for _, r := range regs {
			if r.Provider != nil {
				d.def, d.defClass = r.Provider, r.Class
				break
			}
		}
	}

	if d.def != nil {
		log.Info().Str("provider", d.def.Name()).Msg("default AI provider selected")
	}
	return d
}

// Resolve returns the provider bound to the model ID, or the default for
// unknown IDs. A pure map lookup: it never fails and never re-probes.
func (d *Dispatcher) Resolve(modelID int) Provider {
	if b, ok := d.bindings[modelID]; ok {
		return b.prov
	}
	return d.def
}

// FirstAvailable returns any bound provider whose availability check
// passes right now (a live re-check, not the startup snapshot), falling
// back to the default when none do.
func (d *Dispatcher) FirstAvailable() Provider {
	for _, b := range d.bindings {
		if b.prov.Available() {
			return b.prov
		}
	}
	return d.def
}

// HasLiveRealProvider reports whether any bound non-mock provider is
// currently available. Callers use it to warn when the system is running
// entirely on synthetic images.
func (d *Dispatcher) HasLiveRealProvider() bool {
	for _, b := range d.bindings {
		if b.class != ClassMock && b.prov.Available() {
			return true
		}
	}
	return false
}

// Bindings returns a snapshot of the model binding for diagnostics.
func (d *Dispatcher) Bindings() map[int]Provider {
	out := make(map[int]Provider, len(d.bindings))
	for id, b := range d.bindings {
		out[id] = b.prov
	}
	return out
}

// Default returns the fallback provider used for unknown model IDs.
func (d *Dispatcher) Default() Provider { return d.def }
