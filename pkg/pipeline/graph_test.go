package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphDependents(t *testing.T) {
	g := NewGraph()
	g.Add("css/site.css", []string{"css/base.css", "img/logo.png"})
	g.Add("css/base.css", []string{"css/reset.css"})
	g.Add("css/print.css", []string{"css/reset.css"})

	assert.Equal(t, []string{"css/base.css", "css/print.css", "css/site.css"}, g.Dependents("css/reset.css"))
	assert.Equal(t, []string{"css/site.css"}, g.Dependents("img/logo.png"))
	assert.Empty(t, g.Dependents("css/site.css"))
	assert.Equal(t, []string{"css/base.css", "img/logo.png"}, g.Dependencies("css/site.css"))
	assert.Equal(t, 3, g.Len())
}

func TestGraphAddReplacesEdges(t *testing.T) {
	g := NewGraph()
	g.Add("a", []string{"b", "c"})
	g.Add("a", []string{"c", "a"})

	assert.Empty(t, g.Dependents("b"))
	assert.Equal(t, []string{"a"}, g.Dependents("c"))
	assert.Equal(t, []string{"c"}, g.Dependencies("a"))

	g.Add("a", nil)
	assert.Empty(t, g.Dependents("c"))
	assert.Equal(t, 0, g.Len())
}

func TestGraphCycles(t *testing.T) {
	g := NewGraph()
	g.Add("a", []string{"b"})
	g.Add("b", []string{"a"})

	assert.Equal(t, []string{"b"}, g.Dependents("a"))
	assert.Equal(t, []string{"a"}, g.Dependents("b"))
}

func TestGraphRetainAndRemove(t *testing.T) {
	g := NewGraph()
	g.Add("a", []string{"shared"})
	g.Add("b", []string{"shared"})
	g.Add("c", []string{"shared"})

	g.Retain([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, g.Dependents("shared"))

	g.Remove("a")
	assert.Equal(t, []string{"b"}, g.Dependents("shared"))
}

func TestGraphConcurrentAdd(t *testing.T) {
	g := NewGraph()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g.Add(string(rune('a'+i%26))+"-file", []string{"dep"})
		}(i)
	}
	wg.Wait()
	assert.Len(t, g.Dependents("dep"), 26)
}
