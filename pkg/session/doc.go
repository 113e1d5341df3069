/*
Package session owns a running solver engine and exposes typed operations on
its loaded tree.

A Session serializes commands over one protocol.Conn and tracks the engine's
state with an explicit state machine:

	Fresh -> TreeLoaded -> AllNodesLoaded
	  any live state -> Degraded (unframed response, timeout)
	  any state      -> Closed

Operations that are not allowed in the current state fail with a
*domain.PreconditionError before anything is written to the engine. A degraded
session refuses every command except Close.

A Session is not safe for concurrent use. Use a Pool to share engines between
workers; each checked out session belongs to exactly one worker.
*/
package session
