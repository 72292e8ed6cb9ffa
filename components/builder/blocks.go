package builder

// BlockList is the ordered collection of blocks. It is not safe for
// concurrent use; Service serialises access and persists after mutations.
//
// Each block carries an insertion sequence independent of its position, so
// "most recently added" survives a reorder. Bulk loads sequence by position.
type BlockList struct {
	blocks []Block
	seq    map[string]uint64
	next   uint64
	gen    IDGenerator
}

// NewBlockList builds a list from blocks, renumbering their order.
func NewBlockList(blocks []Block, gen IDGenerator) *BlockList {
	if gen == nil {
		gen = NewID
	}
	list := &BlockList{gen: gen}
	list.ReplaceAll(blocks)
	return list
}

// Clone returns an independent copy, insertion sequence included.
func (l *BlockList) Clone() *BlockList {
	out := &BlockList{
		blocks: cloneBlocks(l.blocks),
		seq:    make(map[string]uint64, len(l.seq)),
		next:   l.next,
		gen:    l.gen,
	}
	for id, n := range l.seq {
		out.seq[id] = n
	}
	return out
}

// Len returns the number of blocks.
func (l *BlockList) Len() int {
	return len(l.blocks)
}

// Blocks returns a deep copy of the current list.
func (l *BlockList) Blocks() []Block {
	out := cloneBlocks(l.blocks)
	if out == nil {
		return []Block{}
	}
	return out
}

// Get returns a copy of the block with id.
func (l *BlockList) Get(id string) (Block, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Block{}, false
	}
	block := l.blocks[idx]
	block.Data = CloneMap(block.Data)
	return block, true
}

// Add appends a block of kind with data and returns it.
func (l *BlockList) Add(kind WidgetKind, data map[string]any) Block {
	if data == nil {
		data = map[string]any{}
	}
	block := Block{
		ID:    l.gen(),
		Type:  kind,
		Order: len(l.blocks) + 1,
		Data:  CloneMap(data),
	}
	l.blocks = append(l.blocks, block)
	l.stamp(block.ID)
	return Block{ID: block.ID, Type: block.Type, Order: block.Order, Data: CloneMap(block.Data)}
}

// Remove drops the block with id and renumbers. Absent ids are a no-op.
func (l *BlockList) Remove(id string) (Block, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		return Block{}, false
	}
	removed := l.blocks[idx]
	l.blocks = append(l.blocks[:idx:idx], l.blocks[idx+1:]...)
	delete(l.seq, id)
	l.renumber()
	return removed, true
}

// Reorder moves activeID to overID's position with splice semantics.
// Missing or equal ids are a no-op.
func (l *BlockList) Reorder(activeID, overID string) bool {
	if activeID == overID {
		return false
	}
	from := l.indexOf(activeID)
	to := l.indexOf(overID)
	if from < 0 || to < 0 {
		return false
	}
	moved := l.blocks[from]
	rest := make([]Block, 0, len(l.blocks))
	rest = append(rest, l.blocks[:from]...)
	rest = append(rest, l.blocks[from+1:]...)

	out := make([]Block, 0, len(l.blocks))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	l.blocks = out
	l.renumber()
	return true
}

// ReplaceAll bulk-sets the list.
func (l *BlockList) ReplaceAll(blocks []Block) {
	l.blocks = cloneBlocks(blocks)
	l.seq = make(map[string]uint64, len(l.blocks))
	l.next = 0
	for i := range l.blocks {
		if l.blocks[i].Data == nil {
			l.blocks[i].Data = map[string]any{}
		}
		l.stamp(l.blocks[i].ID)
	}
	l.renumber()
}

// SetData replaces the data of the block with id.
func (l *BlockList) SetData(id string, data map[string]any) bool {
	idx := l.indexOf(id)
	if idx < 0 {
		return false
	}
	l.blocks[idx].Data = CloneMap(data)
	return true
}

// CollapseBackground keeps only the most recently added background block,
// whatever its position. It returns the removed blocks.
func (l *BlockList) CollapseBackground() []Block {
	last := l.latestBackground()
	if last < 0 {
		return nil
	}
	var removed []Block
	kept := make([]Block, 0, len(l.blocks))
	for i, block := range l.blocks {
		if block.Type == KindBackground && i != last {
			removed = append(removed, block)
			continue
		}
		kept = append(kept, block)
	}
	if len(removed) == 0 {
		return nil
	}
	l.blocks = kept
	l.renumber()
	return removed
}

// Background returns the authoritative background block, if any.
func (l *BlockList) Background() (Block, bool) {
	idx := l.latestBackground()
	if idx < 0 {
		return Block{}, false
	}
	return l.Get(l.blocks[idx].ID)
}

func (l *BlockList) latestBackground() int {
	idx := -1
	var best uint64
	for i, block := range l.blocks {
		if block.Type != KindBackground {
			continue
		}
		if n := l.seq[block.ID]; idx < 0 || n >= best {
			idx, best = i, n
		}
	}
	return idx
}

func (l *BlockList) stamp(id string) {
	if l.seq == nil {
		l.seq = map[string]uint64{}
	}
	l.next++
	l.seq[id] = l.next
}

func (l *BlockList) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, block := range l.blocks {
		if block.ID == id {
			return i
		}
	}
	return -1
}

func (l *BlockList) renumber() {
	for i := range l.blocks {
		l.blocks[i].Order = i + 1
	}
}
