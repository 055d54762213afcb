// Package physics provides the gesture physics for a wheel column.
//
// Three pieces cooperate to turn raw pointer input into motion:
//
//   - [VelocityTracker]: regression-based release velocity estimation
//     over a short window of drag samples
//   - [SnapPhysics]: hysteresis snap zones that pull a slow drag toward
//     item centers without fighting a fast one
//   - [Momentum]: friction decay after release, handing off to a
//     critically damped spring for the final settle
//
// All positions are in pixels, velocities in pixels per second. The
// animator is advanced from the owner's frame loop via [Momentum.Tick];
// nothing here owns a goroutine.
package physics
