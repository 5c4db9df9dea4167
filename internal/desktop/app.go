package desktop

import (
	"fmt"
	"strings"

	"github.com/1broseidon/deskshell/internal/geometry"
)

// AppID identifies an application window. The set of ids is closed and fixed
// when a Desktop is constructed.
type AppID string

// NoApp is the zero AppID, used wherever "none" is a valid answer.
const NoApp AppID = ""

// Built-in application ids.
const (
	AppAbout      AppID = "about"
	AppExperience AppID = "experience"
	AppSkills     AppID = "skills"
	AppContact    AppID = "contact"
	AppProjects   AppID = "projects"
	AppHandbook   AppID = "handbook"
	AppTerminal   AppID = "terminal"
)

// AppSpec describes one application: its title and the frame its window
// starts with.
type AppSpec struct {
	ID    AppID
	Title string
	Frame geometry.Rect
}

// Catalog is the ordered set of known applications. Order drives icon layout,
// dock contents and snapshot ordering.
type Catalog []AppSpec

// DefaultCatalog returns the built-in application set.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: AppAbout, Title: "About.me", Frame: geometry.Rect{Top: 72, Left: 72, Width: 640, Height: 470}},
		{ID: AppExperience, Title: "Experience.log", Frame: geometry.Rect{Top: 120, Left: 420, Width: 700, Height: 520}},
		{ID: AppSkills, Title: "Skills.matrix", Frame: geometry.Rect{Top: 210, Left: 120, Width: 620, Height: 430}},
		{ID: AppContact, Title: "Contact.link", Frame: geometry.Rect{Top: 180, Left: 710, Width: 540, Height: 390}},
		{ID: AppProjects, Title: "Projects.dir", Frame: geometry.Rect{Top: 72, Left: 740, Width: 520, Height: 390}},
		{ID: AppHandbook, Title: "Attack-Handbook", Frame: geometry.Rect{Top: 440, Left: 80, Width: 580, Height: 390}},
		{ID: AppTerminal, Title: "Security-Terminal", Frame: geometry.Rect{Top: 100, Left: 220, Width: 760, Height: 530}},
	}
}

// Lookup returns the spec for id.
func (c Catalog) Lookup(id AppID) (AppSpec, bool) {
	for _, app := range c {
		if app.ID == id {
			return app, true
		}
	}
	return AppSpec{}, false
}

// Has reports whether id belongs to the catalog.
func (c Catalog) Has(id AppID) bool {
	_, ok := c.Lookup(id)
	return ok
}

// IDs returns the catalog ids in order.
func (c Catalog) IDs() []AppID {
	ids := make([]AppID, len(c))
	for i, app := range c {
		ids[i] = app.ID
	}
	return ids
}

// Parse validates a user-supplied application name against the catalog.
func (c Catalog) Parse(name string) (AppID, error) {
	id := AppID(strings.ToLower(strings.TrimSpace(name)))
	if id == NoApp {
		return NoApp, fmt.Errorf("application id is required")
	}
	if !c.Has(id) {
		return NoApp, fmt.Errorf("unknown application %q (known: %s)", name, c.joinIDs())
	}
	return id, nil
}

func (c Catalog) joinIDs() string {
	names := make([]string, len(c))
	for i, app := range c {
		names[i] = string(app.ID)
	}
	return strings.Join(names, ", ")
}
