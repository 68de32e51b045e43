// Package sample generates the substitute payloads served when live data
// is unavailable. Shapes are fixed; values are random.
package sample

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/tinytelemetry/fleetlens/internal/model"
)

const (
	// ServerCount is the size of the /api/servers-sample payload.
	ServerCount = 120
	// SessionDays is the number of points in the fallback sessions series.
	SessionDays = 30
	// SignupCount is the number of rows in the fallback signups table.
	SignupCount = 3
)

var (
	OSReleases  = []string{"Windows", "Linux", "AIX", "Ubuntu"}
	ServerTypes = []string{"VM", "Physical", "Container", "Cloud"}
	Departments = []string{"Finance", "HR", "IT", "Sales", "Ops"}
	Regions     = []string{"APAC", "EMEA", "AMER", "India"}

	signupNames = []string{"Alice J", "Ben K", "Cara S", "Dev P", "Elif O", "Femi A", "Gus T", "Hana M"}
	plans       = []string{"Basic", "Pro", "Enterprise"}
)

// Generator produces fallback payloads from a random source.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// New returns a generator seeded from the runtime's random source.
func New() *Generator {
	return NewSeeded(rand.Uint64(), rand.Uint64())
}

// NewSeeded returns a deterministic generator, mainly for tests.
func NewSeeded(seed1, seed2 uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed1, seed2)),
		now: time.Now,
	}
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.IntN(len(values))]
}

// Server returns one random record without an id.
func (g *Generator) Server() model.ServerRecord {
	return model.ServerRecord{
		OSRelease:  g.pick(OSReleases),
		ServerType: g.pick(ServerTypes),
		Department: g.pick(Departments),
		Region:     g.pick(Regions),
	}
}

// Servers returns n random records with ids 1..n.
func (g *Generator) Servers(n int) []model.ServerRecord {
	out := make([]model.ServerRecord, n)
	for i := range out {
		out[i] = g.Server()
		out[i].ID = int64(i + 1)
	}
	return out
}

// Sessions returns days points labelled "Day 1".."Day N" with values in [400,1000).
func (g *Generator) Sessions(days int) []model.Session {
	out := make([]model.Session, days)
	for i := range out {
		out[i] = model.Session{
			Label: fmt.Sprintf("Day %d", i+1),
			Value: int64(400 + g.rng.IntN(600)),
		}
	}
	return out
}

// Signups returns n signups dated on consecutive days ending today.
func (g *Generator) Signups(n int) []model.Signup {
	out := make([]model.Signup, n)
	start := g.now().AddDate(0, 0, -(n - 1))
	for i := range out {
		name := g.pick(signupNames)
		out[i] = model.Signup{
			Name:  name,
			Email: emailFor(name, i),
			Plan:  g.pick(plans),
			Date:  start.AddDate(0, 0, i).Format("2006-01-02"),
		}
	}
	return out
}

// SessionsPage wraps a generated sessions series in the pagination envelope.
func (g *Generator) SessionsPage() model.Page[model.Session] {
	data := g.Sessions(SessionDays)
	return model.Page[model.Session]{Page: 1, PageSize: len(data), Total: int64(len(data)), Data: data}
}

// SignupsPage wraps generated signups in the pagination envelope.
func (g *Generator) SignupsPage() model.Page[model.Signup] {
	data := g.Signups(SignupCount)
	return model.Page[model.Signup]{Page: 1, PageSize: len(data), Total: int64(len(data)), Data: data}
}

func emailFor(name string, i int) string {
	local := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			local = append(local, r+('a'-'A'))
		case r >= 'a' && r <= 'z':
			local = append(local, r)
		}
	}
	return fmt.Sprintf("%s%d@example.com", string(local), i+1)
}
