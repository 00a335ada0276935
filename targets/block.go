package targets

// Block is a contiguous run (by rank) of a Set.
type Block struct {
	Seq     int   // 0-based position of the block in the partition
	Targets []int // ascending row indices
}

// First returns the first target of the block.
func (b Block) First() int { return b.Targets[0] }

// Last returns the last target of the block.
func (b Block) Last() int { return b.Targets[len(b.Targets)-1] }

// Len returns the number of targets in the block.
func (b Block) Len() int { return len(b.Targets) }

// Partition splits s into at most n blocks of ascending targets. Block sizes
// differ by at most one and earlier blocks are never smaller than later ones.
// Empty blocks are not returned.
func (s *Set) Partition(n int) []Block {
	idx := s.Indices()
	if len(idx) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	if n > len(idx) {
		n = len(idx)
	}

	size, extra := len(idx)/n, len(idx)%n
	blocks := make([]Block, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < extra {
			end++
		}
		blocks = append(blocks, Block{Seq: i, Targets: idx[start:end]})
		start = end
	}
	return blocks
}

// Chunks splits s into blocks of at most size targets.
func (s *Set) Chunks(size int) []Block {
	idx := s.Indices()
	if len(idx) == 0 {
		return nil
	}
	if size < 1 {
		size = len(idx)
	}
	blocks := make([]Block, 0, (len(idx)+size-1)/size)
	for start, seq := 0, 0; start < len(idx); start, seq = start+size, seq+1 {
		end := min(start+size, len(idx))
		blocks = append(blocks, Block{Seq: seq, Targets: idx[start:end]})
	}
	return blocks
}
