// Package linkage solves planar mechanical linkages step by step.
//
// A Linkage is an ordered arena of joints. Each step it asks every joint, in
// the order given at construction, to compute its position from the already
// updated positions of the joints it references. Four joint kinds exist:
//
//   - Fixed: an anchor that never moves.
//   - Crank: rotates at a fixed arm length around a center by a constant
//     angular step per tick.
//   - Pivot: sits at fixed distances from two anchors, on one of the two
//     intersection points of the corresponding circles; the point nearer to
//     its previous position is kept.
//   - Rigid: sits at a fixed distance and angle relative to the direction
//     between two joints, like a coupler point.
//
// The solve order is supplied by the caller and validated, never inferred.
// A joint belongs to the Linkage it was first built into; building it into
// another fails.
// A step either commits a consistent frame for every joint or fails with a
// *types.StepError and leaves all joints as they were.
//
// Example:
//
//	crank := linkage.NewCrank("B", linkage.At(types.Pt(0, 0)), 1, 0.31)
//	crank.SetAngle(math.Pi / 2)
//	pin := linkage.NewPivot("C", linkage.On(crank), linkage.At(types.Pt(3, 0)), 3, 1)
//	pin.Seed(types.Pt(3, 2))
//	l, err := linkage.New("four-bar", crank, pin)
//	if err != nil {
//		return err
//	}
//	for frame, err := range l.Run(200) {
//		...
//	}
package linkage
