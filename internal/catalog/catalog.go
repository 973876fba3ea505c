package catalog

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// Model describes a logical AI model offered to users. The ID is the
// stable integer callers send with generation requests; which concrete
// provider serves it is decided by the dispatcher, not here.
type Model struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Catalog is the read-only set of well-known models, seeded at startup.
type Catalog struct {
	models map[int]Model
}

// Seed builds the catalog with the platform's well-known models.
func Seed() *Catalog {
	c := &Catalog{models: make(map[int]Model)}
	for _, m := range []Model{
		{ID: 1, Name: "DALL-E 3", Active: true},
		{ID: 2, Name: "DALL-E 2", Active: true},
		{ID: 3, Name: "Stable Diffusion 3.5", Active: true},
		{ID: 4, Name: "Stable Diffusion 3.5 Flash", Active: true},
		{ID: 999, Name: "Mock AI Service", Active: true},
	} {
		c.models[m.ID] = m
	}
	log.Info().Int("models", len(c.models)).Msg("AI model catalog seeded")
	return c
}

// Get looks up a model by ID.
func (c *Catalog) Get(id int) (Model, bool) {
	m, ok := c.models[id]
	return m, ok
}

// List returns all models ordered by ID.
func (c *Catalog) List() []Model {
	out := make([]Model, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
