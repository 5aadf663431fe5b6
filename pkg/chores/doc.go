// Package chores runs a crew of workers that consume units of work ("chores")
// from a shared [syncs.Backlog], fed by a dispatcher reading quantities from
// a [QuantitySource].
//
// Workers sleep on the backlog's condition variable while there is nothing
// to do. The dispatcher adds work and broadcasts, or closes the backlog and
// broadcasts to shut the crew down. Simulated work is performed outside the
// lock so that workers make progress in parallel.
//
// Progress is published as typed events (see [EventChoreTaken] and friends)
// to subscribers registered with [Crew.Subscribe].
package chores
