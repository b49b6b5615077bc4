package movement

// IdleGenerator sits at the bottom of every motion stack and never finishes.
type IdleGenerator[H any] struct{}

func (IdleGenerator[H]) Initialize(H)          {}
func (IdleGenerator[H]) Reset(H)               {}
func (IdleGenerator[H]) Update(H, uint32) bool { return true }
func (IdleGenerator[H]) Finalize(H)            {}
func (IdleGenerator[H]) Kind() Kind            { return KindIdle }
