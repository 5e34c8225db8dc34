package replay

import (
	"fmt"
	"sort"
)

// Batches groups the instructions whose seq falls in [from, to] into runs of
// at most size instructions. log must be ordered by seq. Gaps in the seq
// numbering do not produce empty batches.
func Batches(log []Instruction, from, to, size uint64) ([][]Instruction, error) {
	if size == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to seq %d before from seq %d", to, from)
	}

	start := sort.Search(len(log), func(i int) bool { return log[i].Seq >= from })
	var out [][]Instruction
	for i := start; i < len(log) && log[i].Seq <= to; {
		end := i
		for end < len(log) && log[end].Seq <= to && uint64(end-i) < size {
			end++
		}
		out = append(out, log[i:end])
		i = end
	}
	return out, nil
}
