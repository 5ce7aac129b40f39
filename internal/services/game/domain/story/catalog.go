package story

import (
	"strings"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
)

// Catalog resolves story and component ids to their definitions.
type Catalog struct {
	stories    []Definition
	components []Component
	byStory    map[string]int
	byComp     map[string]int
}

// NewCatalog builds a catalog from explicit content.
func NewCatalog(stories []Definition, components []Component) *Catalog {
	c := &Catalog{
		stories:    stories,
		components: components,
		byStory:    make(map[string]int, len(stories)),
		byComp:     make(map[string]int, len(components)),
	}
	for i, s := range stories {
		c.byStory[s.ID] = i
	}
	for i, comp := range components {
		c.byComp[comp.ID] = i
	}
	return c
}

// DefaultCatalog returns the built-in stories and components.
func DefaultCatalog() *Catalog {
	return NewCatalog(builtinStories, builtinComponents)
}

// Story returns the story definition for id.
func (c *Catalog) Story(id string) (Definition, error) {
	id = strings.TrimSpace(id)
	if idx, ok := c.byStory[id]; ok {
		return c.stories[idx], nil
	}
	return Definition{}, apperrors.WithMetadata(apperrors.CodeStoryNotFound, "story not found: "+id, map[string]string{"StoryID": id})
}

// Component returns the component definition for id.
func (c *Catalog) Component(id string) (Component, error) {
	id = strings.TrimSpace(id)
	if idx, ok := c.byComp[id]; ok {
		return c.components[idx], nil
	}
	return Component{}, apperrors.WithMetadata(apperrors.CodeComponentNotFound, "component not found: "+id, map[string]string{"ComponentID": id})
}

// Stories lists all story definitions.
func (c *Catalog) Stories() []Definition {
	out := make([]Definition, len(c.stories))
	copy(out, c.stories)
	return out
}

// Components lists all component definitions.
func (c *Catalog) Components() []Component {
	out := make([]Component, len(c.components))
	copy(out, c.components)
	return out
}

// ComponentsByPhase lists components belonging to one phase.
func (c *Catalog) ComponentsByPhase(phase Phase) []Component {
	var out []Component
	for _, comp := range c.components {
		if comp.Phase == phase {
			out = append(out, comp)
		}
	}
	return out
}
