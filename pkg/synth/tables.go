package synth

import "github.com/chewxy/math32"

// TableSize is the number of cells in the built-in wavetables.
const TableSize = 256

// Built-in single-cycle wavetables, full scale -128..127.
var (
	Sin256      = makeTable(func(x float32) float32 { return math32.Sin(2 * math32.Pi * x) })
	Triangle256 = makeTable(func(x float32) float32 { return 1 - 4*math32.Abs(x-0.5) })
	Saw256      = makeTable(func(x float32) float32 { return 2*x - 1 })
	Square256   = makeTable(func(x float32) float32 {
		if x < 0.5 {
			return 1
		}
		return -1
	})
)

// Table returns a built-in wavetable by name. Unknown names return Sin256
// and false.
func Table(name string) ([]int8, bool) {
	switch name {
	case "sin", "sine":
		return Sin256[:], true
	case "triangle":
		return Triangle256[:], true
	case "saw":
		return Saw256[:], true
	case "square":
		return Square256[:], true
	default:
		return Sin256[:], false
	}
}

// makeTable samples f over one cycle, x in [0, 1), and scales -1..1 to int8.
func makeTable(f func(x float32) float32) [TableSize]int8 {
	var t [TableSize]int8
	for i := range t {
		v := math32.Round(127 * f(float32(i)/TableSize))
		t[i] = int8(math32.Max(-128, math32.Min(127, v)))
	}
	return t
}
