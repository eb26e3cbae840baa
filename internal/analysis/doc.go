// Package analysis summarizes evaluator output.
//
//   - [Compute]: interior fraction and escape-time histogram of a grid
//   - [InteriorProfile]: how the interior estimate settles as steps accumulate
//   - [Plot]: terminal chart of any series
//
// # Area Estimate
//
// The interior fraction times the viewport area approximates the area of the
// set inside the viewport. For the home view it converges slowly toward 1.506:
//
//	st := analysis.Compute(ev.Output(), maxLife, 32)
//	area := st.Area(ev.Viewport())
package analysis
