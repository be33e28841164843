// Package types defines the value types, interfaces and standard errors
// shared by the linkage solver, the trajectory recorder and the trajectory
// store: Point, Frame, Sink, Store, Run, LinkageSpec and Config.
package types
