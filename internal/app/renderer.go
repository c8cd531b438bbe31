package app

import (
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/PancakeLord3000/Boid-Simulation/pkg/geometry"
	"github.com/PancakeLord3000/Boid-Simulation/pkg/simulation"
)

const (
	fovDegrees = 90.0
	nearPlane  = 0.1
)

var (
	backgroundColor = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	cubeEdgeColor   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// Renderer projects world space through a perspective camera and draws the
// observation cube and the boid triangles. It consumes snapshots only and
// feeds nothing back into the simulation.
type Renderer struct {
	width, height float64
	focal         float64
	white         *ebiten.Image
}

func NewRenderer(width, height int) *Renderer {
	white := ebiten.NewImage(3, 3)
	white.Fill(color.White)
	return &Renderer{
		width:  float64(width),
		height: float64(height),
		focal:  float64(height) / 2 / math.Tan(fovDegrees/2*math.Pi/180),
		white:  white,
	}
}

// project maps a world point to screen coordinates plus its view depth.
// Points behind the near plane report ok=false and must not be drawn.
func (r *Renderer) project(eye, right, up, forward, p geometry.Vec3) (sx, sy, depth float64, ok bool) {
	d := p.Sub(eye)
	z := d.Dot(forward)
	if z < nearPlane {
		return 0, 0, 0, false
	}
	sx = d.Dot(right)/z*r.focal + r.width/2
	sy = -d.Dot(up)/z*r.focal + r.height/2
	return sx, sy, z, true
}

// DrawScene renders one snapshot: the cube first, then the boids back to
// front so nearer boids paint over farther ones.
func (r *Renderer) DrawScene(screen *ebiten.Image, snap simulation.Snapshot, cam *Camera) {
	eye, right, up, forward := cam.view()
	r.drawCube(screen, snap.Settings.CubeSize, eye, right, up, forward)

	type projected struct {
		x, y, depth float64
		angle       float64
		scale       float64
		color       [3]float32
	}

	boids := make([]projected, 0, len(snap.Boids))
	for _, b := range snap.Boids {
		x, y, depth, ok := r.project(eye, right, up, forward, b.Position)
		if !ok {
			continue
		}

		// Project a point one heading-length ahead to get the on-screen
		// orientation.
		angle := 0.0
		head := b.Position.Add(b.Velocity.Normalize().Mul(snap.Settings.Size))
		if hx, hy, _, headOK := r.project(eye, right, up, forward, head); headOK {
			angle = math.Atan2(hy-y, hx-x)
		}

		boids = append(boids, projected{
			x: x, y: y, depth: depth,
			angle: angle,
			scale: snap.Settings.Size * r.focal / depth,
			color: [3]float32{float32(b.Color.R), float32(b.Color.G), float32(b.Color.B)},
		})
	}

	sort.Slice(boids, func(i, j int) bool { return boids[i].depth > boids[j].depth })

	for _, b := range boids {
		r.drawBoid(screen, b.x, b.y, b.angle, b.scale, b.color)
	}
}

// DrawCube renders just the empty cube, for the idle scene before a run.
func (r *Renderer) DrawCube(screen *ebiten.Image, cubeSize float64, cam *Camera) {
	eye, right, up, forward := cam.view()
	r.drawCube(screen, cubeSize, eye, right, up, forward)
}

func (r *Renderer) drawCube(screen *ebiten.Image, cubeSize float64, eye, right, up, forward geometry.Vec3) {
	h := cubeSize / 2
	vertices := [8]geometry.Vec3{
		{X: -h, Y: -h, Z: -h},
		{X: h, Y: -h, Z: -h},
		{X: h, Y: h, Z: -h},
		{X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h},
		{X: h, Y: -h, Z: h},
		{X: h, Y: h, Z: h},
		{X: -h, Y: h, Z: h},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // bottom face
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // top face
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // connecting edges
	}

	for _, e := range edges {
		x0, y0, _, ok0 := r.project(eye, right, up, forward, vertices[e[0]])
		x1, y1, _, ok1 := r.project(eye, right, up, forward, vertices[e[1]])
		if !ok0 || !ok1 {
			continue
		}
		vector.StrokeLine(screen,
			float32(x0), float32(y0),
			float32(x1), float32(y1),
			1.5, cubeEdgeColor, true)
	}
}

// drawBoid renders one boid as a triangle pointing along its on-screen
// heading, sized by its projected scale.
func (r *Renderer) drawBoid(screen *ebiten.Image, x, y, angle, scale float64, clr [3]float32) {
	tip := 0.8 * scale
	wing := 0.6 * scale

	points := [3][2]float64{
		{x + math.Cos(angle)*tip, y + math.Sin(angle)*tip},
		{x + math.Cos(angle+2.5)*wing, y + math.Sin(angle+2.5)*wing},
		{x + math.Cos(angle-2.5)*wing, y + math.Sin(angle-2.5)*wing},
	}

	vertices := make([]ebiten.Vertex, 3)
	for i, p := range points {
		vertices[i] = ebiten.Vertex{
			DstX: float32(p[0]),
			DstY: float32(p[1]),
			SrcX: 1, SrcY: 1,
			ColorR: clr[0], ColorG: clr[1], ColorB: clr[2], ColorA: 1,
		}
	}
	indices := []uint16{0, 1, 2}

	screen.DrawTriangles(vertices, indices, r.white, &ebiten.DrawTrianglesOptions{})
}
