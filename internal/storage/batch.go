package storage

import "collectibleAMM/internal/model"

// OpKind is the kind of a batched write.
type OpKind uint8

const (
	OpPutPool OpKind = iota + 1
	OpDeletePool
	OpPutSellState
	OpDeleteSellState
	OpPutEscrow
	OpDeleteEscrow
	OpPutDynamicAllowlist
)

// Op is one write. Only the field matching Kind is set; deletes carry keys.
type Op struct {
	Kind      OpKind
	Pool      model.Pool
	SellState model.SellState
	Escrow    model.Escrow
	Dynamic   model.DynamicAllowlist

	PoolKey  model.Pubkey
	AssetKey model.Pubkey
}

// Batch collects the writes of one instruction in order.
type Batch struct {
	Ops []Op
}

func (b *Batch) PutPool(p model.Pool) {
	b.Ops = append(b.Ops, Op{Kind: OpPutPool, Pool: p})
}

func (b *Batch) DeletePool(addr model.Pubkey) {
	b.Ops = append(b.Ops, Op{Kind: OpDeletePool, PoolKey: addr})
}

func (b *Batch) PutSellState(s model.SellState) {
	b.Ops = append(b.Ops, Op{Kind: OpPutSellState, SellState: s})
}

func (b *Batch) DeleteSellState(pool, asset model.Pubkey) {
	b.Ops = append(b.Ops, Op{Kind: OpDeleteSellState, PoolKey: pool, AssetKey: asset})
}

func (b *Batch) PutEscrow(e model.Escrow) {
	b.Ops = append(b.Ops, Op{Kind: OpPutEscrow, Escrow: e})
}

func (b *Batch) DeleteEscrow(pool model.Pubkey) {
	b.Ops = append(b.Ops, Op{Kind: OpDeleteEscrow, PoolKey: pool})
}

func (b *Batch) PutDynamicAllowlist(d model.DynamicAllowlist) {
	b.Ops = append(b.Ops, Op{Kind: OpPutDynamicAllowlist, Dynamic: d})
}

// Len returns the number of queued writes.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Ops)
}
