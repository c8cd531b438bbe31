package simulation

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"

	"github.com/PancakeLord3000/Boid-Simulation/pkg/behavior"
)

// regroup partitions the flock into visual neighbor groups: two boids are
// connected when they are closer than the template's close distance, and
// every connected component of two or more boids forms a group. Singleton
// boids revert to the default color. Group ids are assigned 0,1,2... in
// order of each group's first member, so the id (and therefore the color) of
// an unchanged group is stable across ticks.
//
// Returns the number of groups found.
func (f *Flock) regroup() int {
	n := len(f.boids)
	uf := newUnionFind(n)
	closeDist := f.settings.CloseDistance()

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if f.boids[i].Position.DistanceTo(f.boids[j].Position) < closeDist {
				uf.union(i, j)
			}
		}
	}

	sizes := make(map[int]int, n)
	for i := 0; i < n; i++ {
		sizes[uf.find(i)]++
	}

	ids := make(map[int]int)
	for i, b := range f.boids {
		root := uf.find(i)
		if sizes[root] < 2 {
			b.Group = behavior.NoGroup
			b.Color = behavior.DefaultColor
			continue
		}
		id, ok := ids[root]
		if !ok {
			id = len(ids)
			ids[root] = id
		}
		b.Group = id
		b.Color = f.colors.color(id)
	}
	return len(ids)
}

// groupPalette derives and caches one color per group id. The color is a
// hash of the id mapped into [0.15, 0.95] per channel, so it can never
// collide with the black default boid or the near-white background.
type groupPalette struct {
	colors map[int]behavior.Color
}

func newGroupPalette() *groupPalette {
	return &groupPalette{colors: make(map[int]behavior.Color)}
}

func (p *groupPalette) color(id int) behavior.Color {
	if c, ok := p.colors[id]; ok {
		return c
	}
	sum := md5.Sum([]byte(strconv.Itoa(id)))
	h := hex.EncodeToString(sum[:])
	c := behavior.Color{
		R: channelFromHex(h[0:2]),
		G: channelFromHex(h[2:4]),
		B: channelFromHex(h[4:6]),
	}
	p.colors[id] = c
	return c
}

// channelFromHex maps one hash byte onto [0.15, 0.95]: 255/318.75 = 0.8.
func channelFromHex(pair string) float64 {
	v, _ := strconv.ParseUint(pair, 16, 8)
	return float64(v)/318.75 + 0.15
}

// unionFind is a disjoint-set over boid indices, used to compute the
// connected components of the close-distance graph.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]] // path halving
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}
