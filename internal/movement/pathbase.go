package movement

// pathBase holds the path a generator follows and the index of its current node.
// Waypoint generators bind a shared *model.WaypointPath, flight generators
// keep their own model.TaxiPath copy.
type pathBase[P any] struct {
	path        P
	currentNode uint32
}

// CurrentNode returns the index of the node the generator is moving to or sits at.
func (b *pathBase[P]) CurrentNode() uint32 {
	return b.currentNode
}
