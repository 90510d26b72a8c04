package convex

import (
	"math"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_CELL_SIZE = 2.0
	DEFAULT_CELLS     = 1024
)

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bodies overlapping it
type Cell struct {
	bodyIndices []int
}

// Pair of bodies whose bounding boxes overlap
type Pair struct {
	BodyA *Body
	BodyB *Body
}

// SpatialGrid is a hashed uniform grid used to find candidate pairs
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// NewSpatialGrid creates a grid; numCells is rounded up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = DEFAULT_CELL_SIZE
	}
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Insert registers the body in every cell its AABB touches.
// Distinct cells can hash to the same slot, queries filter the repeated indices.
func (sg *SpatialGrid) Insert(bodyIndex int, body *Body) {
	aabb := body.GetAABB()
	if aabb.IsEmpty() {
		return
	}
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				indices := sg.cells[cellIdx].bodyIndices
				if len(indices) > 0 && indices[len(indices)-1] == bodyIndex {
					continue
				}
				sg.cells[cellIdx].bodyIndices = append(indices, bodyIndex)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
}

// SortCells makes the pair order deterministic
func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			sort.Ints(sg.cells[i].bodyIndices)
		}
	}
}

// FindPairs returns every candidate pair once, with BodyA's index lower than BodyB's
func (sg *SpatialGrid) FindPairs(bodies []*Body) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	seen := make([]bool, len(bodies))

	for bodyIdx := range bodies {
		clear(seen)
		sg.visitCandidates(bodies, bodyIdx, seen, func(pair Pair) {
			pairs = append(pairs, pair)
		})
	}

	return pairs
}

// FindPairsParallel splits the bodies between workers and streams pairs on a channel
// closed once every worker is done
func (sg *SpatialGrid) FindPairsParallel(bodies []*Body, numWorkers int) <-chan Pair {
	numWorkers = max(DEFAULT_WORKERS, numWorkers)

	var wg sync.WaitGroup
	pairsChan := make(chan Pair, numWorkers*10)

	bodiesPerWorker := len(bodies) / numWorkers
	if bodiesPerWorker == 0 {
		bodiesPerWorker = 1
	}

	for w := 0; w < numWorkers; w++ {
		startIdx := w * bodiesPerWorker
		if startIdx >= len(bodies) {
			break
		}
		endIdx := startIdx + bodiesPerWorker
		if w == numWorkers-1 {
			endIdx = len(bodies)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			seen := make([]bool, len(bodies))
			for bodyIdx := start; bodyIdx < end; bodyIdx++ {
				clear(seen)
				sg.visitCandidates(bodies, bodyIdx, seen, func(pair Pair) {
					pairsChan <- pair
				})
			}
		}(startIdx, endIdx)
	}

	go func() {
		wg.Wait()
		close(pairsChan)
	}()

	return pairsChan
}

func (sg *SpatialGrid) visitCandidates(bodies []*Body, bodyIdx int, seen []bool, emit func(Pair)) {
	bodyA := bodies[bodyIdx]
	aabbA := bodyA.GetAABB()
	if aabbA.IsEmpty() {
		return
	}
	minCell := sg.worldToCell(aabbA.Min)
	maxCell := sg.worldToCell(aabbA.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})

				for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
					// Avoid (A,B) and (B,A) duplicates
					if otherIdx <= bodyIdx || seen[otherIdx] {
						continue
					}
					seen[otherIdx] = true

					bodyB := bodies[otherIdx]
					if bodyA.Static && bodyB.Static {
						continue
					}
					if aabbA.Overlaps(bodyB.GetAABB()) {
						emit(Pair{BodyA: bodyA, BodyB: bodyB})
					}
				}
			}
		}
	}
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
